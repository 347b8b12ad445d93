package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"exifatlas/internal/api"
	"exifatlas/internal/catalog"
	"exifatlas/internal/services"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var day, location, search string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Browse located photos by day and place",
		Long: `List capture days grouped by resolved location, oldest first.

With --day and --location, list the photos of that one entry instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(location) != "" && strings.TrimSpace(day) == "" {
				return services.Wrap(services.ErrValidation, "cli", "timeline", "--location requires --day", nil)
			}
			return ctx.withStore("", func(store *catalog.Store) error {
				svc := api.NewCatalogService(store, cfg.Browse.ExcludeYears)
				if strings.TrimSpace(location) != "" {
					photos, err := svc.DayPhotos(cmd.Context(), day, location)
					if err != nil {
						return err
					}
					if jsonOut {
						return writeJSON(cmd, api.PhotoListResponse{Day: day, Location: location, Photos: photos})
					}
					printDayPhotos(cmd, photos)
					return nil
				}

				entries, err := svc.Timeline(cmd.Context(), search)
				if err != nil {
					return err
				}
				if strings.TrimSpace(day) != "" {
					parsed, err := api.ParseDay(day)
					if err != nil {
						return services.Wrap(services.ErrValidation, "cli", "timeline", "", err)
					}
					entries = entriesForDay(entries, parsed)
				}
				if jsonOut {
					return writeJSON(cmd, api.TimelineResponse{Entries: entries})
				}
				printTimeline(cmd, entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Capture day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&location, "location", "", "Resolved location; requires --day")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive location filter")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	return cmd
}

func entriesForDay(entries []api.TimelineEntry, day string) []api.TimelineEntry {
	out := make([]api.TimelineEntry, 0, len(entries))
	for _, e := range entries {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out
}

func printTimeline(cmd *cobra.Command, entries []api.TimelineEntry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No located photos")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Day,
			e.Location,
			strconv.Itoa(e.PhotoCount),
			strconv.FormatFloat(e.Latitude, 'f', 4, 64),
			strconv.FormatFloat(e.Longitude, 'f', 4, 64),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Day", "Location", "Photos", "Lat", "Lon"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "%d entries across %d days\n", len(entries), len(api.TimelineDays(entries)))
}

func printDayPhotos(cmd *cobra.Command, photos []api.Photo) {
	out := cmd.OutOrStdout()
	if len(photos) == 0 {
		fmt.Fprintln(out, "No photos for that day and location")
		return
	}
	rows := make([][]string, 0, len(photos))
	for _, p := range photos {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			valueOrDash(p.CaptureTime),
			p.Filename,
			valueOrDash(p.CameraModel),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Captured", "File", "Camera"},
		rows,
		[]columnAlignment{alignRight},
	))
}
