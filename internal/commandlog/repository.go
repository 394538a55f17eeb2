// Package commandlog provides access to the command_log table for
// recording and querying generator commands relayed by the bridge.
package commandlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single relayed generator command.
type Entry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Command    string    `json:"command"`
	PressTopic string    `json:"press_topic"`
	RelayedAt  time.Time `json:"relayed_at"`
}

// Filter controls which entries to return.
type Filter struct {
	Action string // optional: filter by action (start, stop, starttransfer)
	Limit  int    // default 50, max 200
	Offset int    // pagination offset
}

// ListResult contains the paginated command log results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for command log operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores command log entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new command log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new command log entry. The ID and RelayedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "cmd-" + uuid.NewString()[:8]
	}
	if entry.RelayedAt.IsZero() {
		entry.RelayedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_log (id, action, command, press_topic, relayed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.Command, entry.PressTopic,
		entry.RelayedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command log entry: %w", err)
	}

	return nil
}

// List returns entries matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for command log queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM command_log %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting command log entries: %w", err)
	}

	// Get paginated results.
	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, action, command, press_topic, relayed_at FROM command_log %s ORDER BY relayed_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying command log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var relayedAt string

		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Command,
			&entry.PressTopic, &relayedAt); err != nil {
			return nil, fmt.Errorf("scanning command log entry: %w", err)
		}

		t, err := time.Parse(time.RFC3339, relayedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing command log timestamp %q: %w", relayedAt, err)
		}
		entry.RelayedAt = t

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command log: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
