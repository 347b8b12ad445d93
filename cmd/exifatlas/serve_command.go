package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"exifatlas/internal/browse"
	"exifatlas/internal/catalog"
	"exifatlas/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only browse API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}
			addr := cfg.Browse.Bind
			if strings.TrimSpace(bind) != "" {
				addr = strings.TrimSpace(bind)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore("", func(store *catalog.Store) error {
				server := browse.New(store, browse.Options{Bind: addr, ExcludeYears: cfg.Browse.ExcludeYears}, logger)
				logger.Info("serving catalog",
					logging.String("catalog", store.Path()),
					logging.String("bind", addr),
				)
				if err := server.Run(signalCtx); err != nil {
					return fmt.Errorf("browse server: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default browse.bind)")
	return cmd
}
