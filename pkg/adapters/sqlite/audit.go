// Package sqlite provides an SQLite-backed relay audit log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lousa/pkg/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS relay_audit (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	provider    TEXT    NOT NULL,
	model       TEXT    NOT NULL DEFAULT '',
	status      INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT '',
	duration_us INTEGER NOT NULL DEFAULT 0,
	image_bytes INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relay_audit_created ON relay_audit(created_at DESC);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// AuditLog implements ports.AuditLog on an SQLite table.
type AuditLog struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for an in-process database.
func Open(path string) (*AuditLog, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	log, err := NewFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

// NewFromDB applies pragmas and schema to an already opened database.
func NewFromDB(db *sql.DB) (*AuditLog, error) {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}
	return &AuditLog{db: db}, nil
}

// Record inserts an entry. A zero CreatedAt is stamped with the current time.
func (a *AuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO relay_audit (provider, model, status, error, duration_us, image_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Provider, entry.Model, entry.Status, entry.Error,
		entry.Duration.Microseconds(), entry.ImageBytes, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, provider, model, status, error, duration_us, image_bytes, created_at
		 FROM relay_audit ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit query: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e          domain.AuditEntry
			durationUS int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.Status, &e.Error, &durationUS, &e.ImageBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("audit scan: %w", err)
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (a *AuditLog) Close() error {
	return a.db.Close()
}
