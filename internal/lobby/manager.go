package lobby

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"

	"dutch/internal/engine"
)

// Manager manages multiple tables.
type Manager struct {
	mu      sync.Mutex
	rules   Rules
	lobbies map[string]*Lobby
}

func NewManager(rules Rules) *Manager {
	return &Manager{rules: rules, lobbies: make(map[string]*Lobby)}
}

// Create creates a new lobby and returns its ID.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateID()
	for m.lobbies[id] != nil {
		id = generateID()
	}
	m.lobbies[id] = NewLobby(id, m.rules)
	return id
}

// Restore registers a table that was already running, using the membership
// and limit of a stored snapshot.
func (m *Manager) Restore(id string, snap engine.Snapshot) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := NewLobby(id, m.rules)
	l.ScoreLimit = snap.ScoreLimit
	for _, p := range snap.Players {
		l.Players = append(l.Players, &PlayerInfo{ID: p.ID, Name: p.Name})
	}
	l.Started = true
	m.lobbies[id] = l
	return l
}

// Get returns a lobby by ID.
func (m *Manager) Get(id string) *Lobby {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lobbies[id]
}

// IDs lists known tables in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.lobbies))
	for id := range m.lobbies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func generateID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
