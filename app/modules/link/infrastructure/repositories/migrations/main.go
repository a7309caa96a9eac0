package linkmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the link module's schema history.
var Migrations = migrate.NewMigrations()
