package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "bridge.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestOpenCreatesFileAndParents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "nested", "bridge.db")

	db, err := Open(Config{
		Path:        dbPath,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if got := db.Path(); got != dbPath {
		t.Errorf("Path() = %q, want %q", got, dbPath)
	}
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "bridge.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() after nil error = %v", err)
	}
}

func TestExecAndQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE presses (
			id INTEGER PRIMARY KEY,
			action TEXT NOT NULL
		)
	`); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	result, err := db.ExecContext(ctx, "INSERT INTO presses (action) VALUES (?)", "starttransfer")
	if err != nil {
		t.Fatalf("INSERT error = %v", err)
	}
	if id, _ := result.LastInsertId(); id != 1 {
		t.Errorf("LastInsertId() = %d, want 1", id)
	}

	var action string
	if err := db.QueryRowContext(ctx, "SELECT action FROM presses WHERE id = 1").Scan(&action); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if action != "starttransfer" {
		t.Errorf("action = %q, want %q", action, "starttransfer")
	}
}

func TestTransactions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE presses (id INTEGER PRIMARY KEY, action TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	insertInTx := func(action string, commit bool) {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx() error = %v", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO presses (action) VALUES (?)", action); err != nil {
			t.Fatalf("INSERT error = %v", err)
		}
		if commit {
			err = tx.Commit()
		} else {
			err = tx.Rollback()
		}
		if err != nil {
			t.Fatalf("end tx error = %v", err)
		}
	}

	insertInTx("start", true)
	insertInTx("stop", false)

	countFor := func(action string) int {
		t.Helper()
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM presses WHERE action = ?", action).Scan(&n); err != nil {
			t.Fatalf("SELECT error = %v", err)
		}
		return n
	}

	if got := countFor("start"); got != 1 {
		t.Errorf("committed rows = %d, want 1", got)
	}
	if got := countFor("stop"); got != 0 {
		t.Errorf("rolled-back rows = %d, want 0", got)
	}
}

func TestStatsSingleWriter(t *testing.T) {
	db := newTestDB(t)

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}
