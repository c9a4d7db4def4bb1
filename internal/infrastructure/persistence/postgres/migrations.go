package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Migrations holds the schema migrations compiled into the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS
