package main

import (
	"fmt"

	"ecg-academy/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Oracle schema migrations",
		Long: `Apply the embedded up-migrations that are not yet recorded in schema_migrations.

Examples:
  ecgctl migrate
  ecgctl migrate --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := database.LoadMigrations()
			if err != nil {
				return err
			}
			if list {
				for _, m := range migrations {
					fmt.Fprintf(cmd.OutOrStdout(), "%d_%s\n", m.Version, m.Name)
				}
				return nil
			}
			if cfg.Store.Driver == "memory" {
				return fmt.Errorf("store.driver is memory, nothing to migrate")
			}

			db, err := database.NewSQLXOracleDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.RunMigrations(cmd.Context(), db, migrations)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d of %d migrations\n", applied, len(migrations))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list embedded migrations without connecting")
	return cmd
}
