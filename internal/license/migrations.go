package license

import "embed"

// Migrations holds the goose migrations for the licenses table, rooted at
// MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
