package main

import (
	"github.com/spf13/cobra"

	"github.com/wpbr/reviewproxy/internal/config"
	"github.com/wpbr/reviewproxy/internal/license"
	pkgconfig "github.com/wpbr/reviewproxy/pkg/config"
	"github.com/wpbr/reviewproxy/pkg/pg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the licenses table migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var appCfg config.App
		var pgCfg pg.Config
		if err := pkgconfig.Load(&appCfg); err != nil {
			return err
		}
		if err := pkgconfig.Load(&pgCfg); err != nil {
			return err
		}
		log := newLogger(appCfg)

		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		return pg.Migrate(ctx, pool, license.Migrations, license.MigrationsDir, pgCfg, log)
	},
}
