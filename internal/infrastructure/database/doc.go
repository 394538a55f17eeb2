// Package database opens and manages the bridge's SQLite store, which
// holds the command audit log and the schema_migrations bookkeeping
// table.
//
// The bridge is the only writer, so the pool is pinned to a single
// connection; WAL mode plus a busy timeout keeps occasional readers
// (sqlite3 CLI, backups) from tripping lock errors. The database file
// is created with 0600 permissions.
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Schema changes ship as embedded migration files under migrations/
// at the repository root, named with a sequential numeric prefix
// (001_command_log.up.sql plus its .down.sql pair). Migrations are
// additive only: new columns are nullable or carry defaults, and
// nothing is dropped or renamed, so a rollback is always safe.
package database
