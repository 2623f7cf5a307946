package main

import (
	"github.com/spf13/cobra"

	"github.com/wpbr/reviewproxy/internal/app"
	"github.com/wpbr/reviewproxy/internal/config"
	"github.com/wpbr/reviewproxy/pkg/httpserver"
	"github.com/wpbr/reviewproxy/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP proxy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := newLogger(cfg.App)

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			log.ErrorContext(ctx, "failed to start", logger.Error(err))
			return err
		}
		defer a.Close()

		srv := httpserver.NewFromConfig(cfg.HTTP,
			httpserver.WithLogger(log),
			httpserver.WithStopHook(a.Close),
		)
		return srv.Run(ctx, a.Handler)
	},
}
