package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"exifatlas/internal/api"
	"exifatlas/internal/catalog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore("", func(store *catalog.Store) error {
				runs, err := api.NewCatalogService(store, nil).Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.RunListResponse{Runs: runs})
				}
				printRuns(cmd, runs)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []api.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No ingest runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		state := "complete"
		switch {
		case r.ErrorMessage != "":
			state = "error"
		case r.Interrupted:
			state = "interrupted"
		case r.FinishedAt == "":
			state = "running"
		}
		rows = append(rows, []string{
			r.StartedAt,
			r.Root,
			strconv.Itoa(r.Seen),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Failed),
			humanize.Bytes(uint64(r.BytesHashed)),
			state,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Started", "Root", "Seen", "Skipped", "Processed", "Failed", "Hashed", "State"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}
