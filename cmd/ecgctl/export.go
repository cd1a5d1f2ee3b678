package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ecg-academy/internal/database"
	"ecg-academy/internal/logger"
	"ecg-academy/internal/service"

	"github.com/spf13/cobra"
)

func exportLinkedCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-linked",
		Short: "Write the exposure-linkage research table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := database.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := service.NewLinkedExportService(store, cfg.Export.ChunkSize, cfg.Export.FetchConcurrency, logger.Get())
			resp, err := svc.GenerateLinkedExport(cmd.Context())
			if err != nil {
				return err
			}
			if resp.NoData {
				fmt.Fprintln(cmd.ErrOrStderr(), resp.CSV)
				return nil
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				_, err := io.WriteString(w, resp.CSV+"\n")
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func exportCollectionCmd() *cobra.Command {
	var (
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export-collection [collection]",
		Short: "Export every document of a collection as JSON or CSV",
		Long: `Export every document of a collection.

Collections: users, events, attempts, clinicalEvents, userStats, caseStats, pointsStats, cases, papers

Examples:
  ecgctl export-collection users --format csv -o users.csv
  ecgctl export-collection clinicalEvents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unsupported format %q, use json or csv", format)
			}
			store, closeStore, err := database.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := service.NewCollectionExportService(store, logger.Get())
			if format == "csv" {
				body, err := svc.ExportCSV(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, func(w io.Writer) error {
					_, err := io.WriteString(w, body)
					return err
				})
			}

			resp, err := svc.ExportJSON(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "json or csv")
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
