package main

import (
	"fmt"

	"ecg-academy/internal/database"
	"ecg-academy/internal/importer"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/service"

	"github.com/spf13/cobra"
)

func importClinicalCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-clinical",
		Short: "Import clinical outcome rows from a CSV or XLSX file",
		Long: `Import clinical outcome rows. The file is sent to the importer in chunks of
import.max_rows; each chunk is committed on its own and reports its own row errors.

Examples:
  ecgctl import-clinical --file outcomes.xlsx
  ecgctl import-clinical --file outcomes.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := importer.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			store, closeStore, err := database.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := service.NewClinicalImportService(store, cfg.Import.MaxRows, cfg.ImportLocation(), logger.Get())
			out := cmd.OutOrStdout()
			imported := 0
			for start := 0; start < len(rows); start += cfg.Import.MaxRows {
				end := min(start+cfg.Import.MaxRows, len(rows))
				resp, err := svc.Import(cmd.Context(), rows[start:end])
				if err != nil {
					return fmt.Errorf("file rows %d-%d: %w", start+1, end, err)
				}
				imported += resp.Count
				for _, msg := range resp.Errors {
					// row numbers in msg are relative to the chunk
					fmt.Fprintf(out, "file rows %d-%d: %s\n", start+1, end, msg)
				}
			}
			fmt.Fprintf(out, "Imported %d of %d rows\n", imported, len(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV or XLSX file (first sheet)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
