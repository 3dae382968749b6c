package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/riposte/riposte/internal/event"
)

// SQLiteStore persists events in a local sqlite database. The default
// backend for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps webhook writes from blocking API reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// DB exposes the handle so sibling components (settings) can share the same
// database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			tracking_id TEXT NOT NULL,
			type TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			actor TEXT,
			message TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tracking ON events(tracking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type)`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Append inserts one event row.
func (s *SQLiteStore) Append(ctx context.Context, ev *event.Event) error {
	var metadata []byte
	if len(ev.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
	}

	query := `INSERT INTO events (id, tracking_id, type, timestamp, actor, message, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		ev.ID, ev.TrackingID, string(ev.Type), ev.Timestamp.UTC(), ev.Actor, ev.Message, string(metadata),
	); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Query returns events matching the filter, ascending by timestamp.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]event.Event, error) {
	query := `SELECT id, tracking_id, type, timestamp, actor, message, metadata FROM events`

	var conditions []string
	var args []interface{}

	if f.TrackingID != "" {
		conditions = append(conditions, "tracking_id = ?")
		args = append(args, strings.TrimSpace(f.TrackingID))
	}
	if f.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, f.Since.UTC())
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			ev       event.Event
			typ      string
			actor    sql.NullString
			message  sql.NullString
			metadata sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.TrackingID, &typ, &ev.Timestamp, &actor, &message, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = event.Type(typ)
		ev.Actor = actor.String
		ev.Message = message.String
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for event %s: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
