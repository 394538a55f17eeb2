// Package migrations compiles the SQL migration files into the binary,
// so a deployed bridge needs no .sql files on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/genmon-bridge/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
