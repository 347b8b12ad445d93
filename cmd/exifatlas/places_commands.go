package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
	"exifatlas/internal/gazetteer"
	"exifatlas/internal/services"
)

func newPlacesCommand(ctx *commandContext) *cobra.Command {
	placesCmd := &cobra.Command{
		Use:   "places",
		Short: "Manage the offline gazetteer",
	}
	placesCmd.AddCommand(newPlacesImportCommand(ctx))
	placesCmd.AddCommand(newPlacesLookupCommand(ctx))
	return placesCmd
}

func newPlacesImportCommand(ctx *commandContext) *cobra.Command {
	var file string
	var force bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a GeoNames cities file into the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := cfg.Paths.GazetteerFile
			if strings.TrimSpace(file) != "" {
				if source, err = config.ExpandPath(file); err != nil {
					return fmt.Errorf("resolve gazetteer file: %w", err)
				}
			}
			if strings.TrimSpace(source) == "" {
				return services.Wrap(services.ErrConfiguration, "cli", "places import", "no gazetteer file configured; pass --file", nil)
			}

			dbPath, err := ctx.dbPath("")
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("create catalog directory: %w", err)
			}
			lock, err := catalog.AcquireWriterLock(dbPath)
			if err != nil {
				return err
			}
			defer lock.Release()

			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			return ctx.withStore("", func(store *catalog.Store) error {
				result, err := gazetteer.Import(cmd.Context(), store, source, gazetteer.ImportOptions{Force: force, Logger: logger})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.AlreadyImported {
					fmt.Fprintf(out, "Gazetteer already imported from %s (%s places); use --force to re-import\n",
						result.Source, humanize.Comma(int64(result.Rows)))
					return nil
				}
				fmt.Fprintf(out, "Imported %s places from %s", humanize.Comma(int64(result.Rows)), result.Source)
				if result.Skipped > 0 {
					fmt.Fprintf(out, " (%s malformed rows skipped)", humanize.Comma(int64(result.Skipped)))
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "GeoNames file (default paths.gazetteer_file)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing import")
	return cmd
}

func newPlacesLookupCommand(ctx *commandContext) *cobra.Command {
	var maxDistance float64

	cmd := &cobra.Command{
		Use:   "lookup <lat> <lon>",
		Short: "Resolve a coordinate to the nearest place",
		Long: `Resolve a coordinate to the nearest gazetteer place within the search radius.

Use -- before a negative latitude: exifatlas places lookup -- -33.86 151.21`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lat, lon, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			opts := gazetteer.OptionsFromConfig(cfg)
			if maxDistance > 0 {
				opts.MaxDistanceKm = maxDistance
			}
			return ctx.withStore("", func(store *catalog.Store) error {
				resolver := gazetteer.NewResolver(store, opts, logger)
				match, ok, err := resolver.Lookup(cmd.Context(), lat, lon)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintln(out, gazetteer.Unknown)
					return nil
				}
				fmt.Fprintln(out, resolver.Label(match.Place))
				fmt.Fprintln(out, renderTable(
					[]string{"Place", "Distance", "Population"},
					[][]string{{
						match.Place.Name,
						strconv.FormatFloat(match.DistanceKm, 'f', 2, 64) + " km",
						humanize.Comma(match.Place.Population),
					}},
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Search radius in km (default from config)")
	// Negative longitudes after the latitude are arguments, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func parseCoordinate(latText, lonText string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, services.Wrap(services.ErrValidation, "cli", "lookup", fmt.Sprintf("latitude %q must be within [-90, 90]", latText), nil)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, services.Wrap(services.ErrValidation, "cli", "lookup", fmt.Sprintf("longitude %q must be within [-180, 180]", lonText), nil)
	}
	return lat, lon, nil
}
