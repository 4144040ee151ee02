// Package store provides SQLite-backed persistence for the screening audit trail.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mkarren/toolgate/internal/models"
)

// Store provides access to the toolgate audit database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency; SQLite allows one writer at a time.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS screening_events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		direction TEXT,
		subject TEXT NOT NULL,
		payload_hash TEXT NOT NULL,
		flagged INTEGER NOT NULL,
		categories TEXT,
		outcome TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_screening_events_subject ON screening_events(subject);
	CREATE INDEX IF NOT EXISTS idx_screening_events_flagged ON screening_events(flagged);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WriteEvent inserts one screening event.
func (s *Store) WriteEvent(kind, direction, subject, payloadHash string, flagged bool, categories, outcome string) (*models.ScreeningEvent, error) {
	event := &models.ScreeningEvent{
		ID:          uuid.New().String(),
		Kind:        kind,
		Direction:   direction,
		Subject:     subject,
		PayloadHash: payloadHash,
		Flagged:     flagged,
		Categories:  categories,
		Outcome:     outcome,
		Timestamp:   time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO screening_events (id, kind, direction, subject, payload_hash, flagged, categories, outcome, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Kind, event.Direction, event.Subject, event.PayloadHash,
		boolToInt(event.Flagged), event.Categories, event.Outcome, event.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert screening event: %w", err)
	}
	return event, nil
}

// RecentEvents returns the latest events, newest first.
func (s *Store) RecentEvents(limit int) ([]models.ScreeningEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, kind, direction, subject, payload_hash, flagged, categories, outcome, timestamp
		FROM screening_events ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query screening events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// FlaggedEvents returns flagged events only, newest first.
func (s *Store) FlaggedEvents(limit int) ([]models.ScreeningEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, kind, direction, subject, payload_hash, flagged, categories, outcome, timestamp
		FROM screening_events WHERE flagged = 1 ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query flagged events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountEvents returns the total number of recorded events.
func (s *Store) CountEvents() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM screening_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count screening events: %w", err)
	}
	return n, nil
}

func scanEvents(rows *sql.Rows) ([]models.ScreeningEvent, error) {
	var out []models.ScreeningEvent
	for rows.Next() {
		var e models.ScreeningEvent
		var flagged int
		var direction, categories sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &direction, &e.Subject, &e.PayloadHash,
			&flagged, &categories, &e.Outcome, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan screening event: %w", err)
		}
		e.Direction = direction.String
		e.Categories = categories.String
		e.Flagged = flagged != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
