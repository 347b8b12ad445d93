package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"exifatlas/internal/api"
	"exifatlas/internal/catalog"
	"exifatlas/internal/preflight"
)

const defaultFailureLimit = 50

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var check, failed, jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog counts, health, or failed files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore("", func(store *catalog.Store) error {
				svc := api.NewCatalogService(store, cfg.Browse.ExcludeYears)
				switch {
				case check:
					return runStatusCheck(cmd, store, preflight.RunAll(cfg, flagValue(ctx.folderFlag)))
				case failed:
					failures, err := svc.Failures(cmd.Context(), limit)
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd, failures)
					}
					printFailures(cmd, failures)
					return nil
				default:
					stats, err := svc.Stats(cmd.Context())
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd, stats)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Catalog: %s\n", store.Path())
					fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
					return nil
				}
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Run database and environment health checks")
	cmd.Flags().BoolVar(&failed, "failed", false, "List files that failed processing")
	cmd.Flags().IntVar(&limit, "limit", defaultFailureLimit, "Maximum failures to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of tables")
	cmd.MarkFlagsMutuallyExclusive("check", "failed")
	return cmd
}

func renderStats(stats api.Stats) string {
	rows := make([][]string, 0, len(stats.Counts)+3)
	for _, status := range catalog.AllStatuses() {
		rows = append(rows, []string{titleStatus(string(status)), humanize.Comma(int64(stats.Counts[string(status)]))})
	}
	rows = append(rows,
		[]string{"With GPS", humanize.Comma(int64(stats.WithGPS))},
		[]string{"Located", humanize.Comma(int64(stats.Located))},
		[]string{"Gazetteer places", humanize.Comma(int64(stats.Places))},
	)
	return tableSpec{
		Headers: []string{"Status", "Count"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight},
		Footer:  []string{"Total", humanize.Comma(int64(stats.Total))},
	}.render()
}

func titleStatus(status string) string {
	if status == "" {
		return status
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

func runStatusCheck(cmd *cobra.Command, store *catalog.Store, checks []preflight.Result) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	health, healthErr := store.CheckHealth(cmd.Context())
	lines := renderSectionHeader("Database", colorize)
	lines = append(lines, healthLines(health, colorize)...)
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Environment", colorize)...)
	lines = append(lines, preflightLines(checks, colorize)...)
	fmt.Fprintln(out, strings.Join(lines, "\n"))

	if healthErr != nil {
		return fmt.Errorf("database health: %w", healthErr)
	}
	if !health.IntegrityCheck || len(health.MissingColumns) > 0 {
		return fmt.Errorf("database health check failed for %s", health.DBPath)
	}
	if blocking := preflight.Blocking(checks); len(blocking) > 0 {
		return preflightError(blocking)
	}
	return nil
}

func printFailures(cmd *cobra.Command, failures []api.Photo) {
	out := cmd.OutOrStdout()
	if len(failures) == 0 {
		fmt.Fprintln(out, "No failed files")
		return
	}
	rows := make([][]string, 0, len(failures))
	for _, p := range failures {
		rows = append(rows, []string{p.Path, valueOrDash(p.ErrorKind), truncate(p.ErrorMessage, 80)})
	}
	fmt.Fprintln(out, renderTable([]string{"Path", "Kind", "Error"}, rows, nil))
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
