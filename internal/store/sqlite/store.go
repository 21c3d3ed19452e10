// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"dutch/internal/engine"
	"dutch/internal/store"
	"dutch/internal/store/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store persists table snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the snapshot of a table.
func (s *Store) Save(ctx context.Context, tableID string, snap engine.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		return fmt.Errorf("table id is required")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO table_snapshots (table_id, version, round_count, payload, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(table_id) DO UPDATE SET
    version = excluded.version,
    round_count = excluded.round_count,
    payload = excluded.payload,
    updated_at = excluded.updated_at`,
		tableID, snap.Version, len(snap.Ledger), string(payload), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", tableID, err)
	}
	return nil
}

// Load reads the snapshot of a table.
func (s *Store) Load(ctx context.Context, tableID string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	var (
		payload   string
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT payload, updated_at FROM table_snapshots WHERE table_id = ?", tableID,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("load snapshot %s: %w", tableID, err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return store.Record{}, fmt.Errorf("decode snapshot %s: %w", tableID, err)
	}
	return store.Record{TableID: tableID, Snapshot: snap, UpdatedAt: fromMillis(updatedAt)}, nil
}

// List returns the ids of all stored tables in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT table_id FROM table_snapshots ORDER BY table_id")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return ids, nil
}

// Delete removes the snapshot of a table.
func (s *Store) Delete(ctx context.Context, tableID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM table_snapshots WHERE table_id = ?", tableID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", tableID, err)
	}
	return nil
}
