// Command ecgctl is the ECG Academy admin CLI: schema migrations, clinical imports and research exports.
package main

import (
	"fmt"
	"os"

	"ecg-academy/internal/config"
	"ecg-academy/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           "ecgctl",
		Short:         "ecgctl - ECG Academy administration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return logger.Initialize(cfg.Logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importClinicalCmd())
	rootCmd.AddCommand(exportLinkedCmd())
	rootCmd.AddCommand(exportCollectionCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
