// Package pg bootstraps a PostgreSQL connection pool on top of pgx/v5 and
// applies goose migrations through the same pool.
//
//   - Config is populated from PG_* environment variables.
//   - Connect opens a *pgxpool.Pool, retrying until the database answers.
//   - Migrate runs goose migrations read from an fs.FS, usually an embed.FS
//     owned by the package that defines the schema.
//   - Healthcheck adapts the pool to the readiness probe signature.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, license.Migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
package pg
