package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dutch/internal/engine"
)

type memoryRecord struct {
	payload   []byte
	updatedAt time.Time
}

// MemoryStore keeps encoded snapshots in a map. Snapshots are stored as
// JSON so callers never share slices with the store.
type MemoryStore struct {
	records map[string]memoryRecord
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// Save stores a snapshot for a table.
func (s *MemoryStore) Save(ctx context.Context, tableID string, snap engine.Snapshot) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tableID] = memoryRecord{payload: payload, updatedAt: s.now().UTC()}
	return nil
}

// Load retrieves the snapshot of a table.
func (s *MemoryStore) Load(ctx context.Context, tableID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	rec, ok := s.records[tableID]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(rec.payload, &snap); err != nil {
		return Record{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return Record{TableID: tableID, Snapshot: snap, UpdatedAt: rec.updatedAt}, nil
}

// List returns the ids of all stored tables in sorted order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a table. Deleting an unknown table is not an error.
func (s *MemoryStore) Delete(ctx context.Context, tableID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tableID)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
