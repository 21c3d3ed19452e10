// Package store persists table snapshots so a running game survives a
// server restart.
package store

import (
	"context"
	"errors"
	"time"

	"dutch/internal/engine"
)

// ErrNotFound is returned when no snapshot exists for a table.
var ErrNotFound = errors.New("snapshot not found")

// Record is a stored snapshot together with its table and save time.
type Record struct {
	TableID   string
	Snapshot  engine.Snapshot
	UpdatedAt time.Time
}

// Store saves and loads table snapshots. Save replaces any previous snapshot
// for the same table.
type Store interface {
	Save(ctx context.Context, tableID string, snap engine.Snapshot) error
	Load(ctx context.Context, tableID string) (Record, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, tableID string) error
	Close() error
}
