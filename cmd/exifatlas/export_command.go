package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
	"exifatlas/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var byDay, byLocation, toStdout bool
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to CSV",
		Long: `Export every photo record, or grouped summaries, to CSV.

Without --output the file is named photo_export[_mode]_YYYYMMDD_HHMMSS.csv
and written to paths.export_dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mode := export.ModeFor(byDay, byLocation)
			return ctx.withStore("", func(store *catalog.Store) error {
				if toStdout {
					_, err := export.Write(cmd.Context(), store, mode, cmd.OutOrStdout())
					return err
				}
				target := output
				if target != "" {
					if target, err = config.ExpandPath(target); err != nil {
						return fmt.Errorf("resolve output path: %w", err)
					}
				}
				result, err := export.ToFile(cmd.Context(), store, mode, target, cfg.Paths.ExportDir, time.Now())
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s rows (%s) to %s\n", humanize.Comma(int64(result.Rows)), result.Mode, result.Path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byDay, "group-by-day", false, "One row per capture day")
	cmd.Flags().BoolVar(&byLocation, "group-by-location", false, "One row per resolved location")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination CSV file")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write CSV to stdout instead of a file")
	cmd.MarkFlagsMutuallyExclusive("output", "stdout")
	return cmd
}
