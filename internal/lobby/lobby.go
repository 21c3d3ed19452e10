package lobby

import (
	"fmt"
	"strings"
	"sync"

	"dutch/internal/engine"
)

// PlayerInfo holds table-level player information.
type PlayerInfo struct {
	ID   string
	Name string
}

// Rules bound the table setup.
type Rules struct {
	MinPlayers int
	MaxPlayers int
	ScoreLimit int // default limit, adjustable until the game starts
}

// Lobby is a table being set up on the shared device: players are added in
// seat order and the score limit is chosen before the game starts.
type Lobby struct {
	mu         sync.Mutex
	ID         string
	Players    []*PlayerInfo
	ScoreLimit int
	MaxPlayers int
	MinPlayers int
	Started    bool
}

// NewLobby creates a new lobby.
func NewLobby(id string, rules Rules) *Lobby {
	return &Lobby{
		ID:         id,
		ScoreLimit: rules.ScoreLimit,
		MaxPlayers: rules.MaxPlayers,
		MinPlayers: rules.MinPlayers,
	}
}

// Join seats a player. Joining again with a known id renames the player.
func (l *Lobby) Join(id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("player name is required")
	}
	if l.Started {
		return fmt.Errorf("game already started")
	}
	for _, p := range l.Players {
		if p.ID == id {
			p.Name = name
			return nil
		}
	}
	if len(l.Players) >= l.MaxPlayers {
		return fmt.Errorf("table is full")
	}
	l.Players = append(l.Players, &PlayerInfo{ID: id, Name: name})
	return nil
}

// Leave removes a player before the game starts. Membership is fixed once
// the game is running.
func (l *Lobby) Leave(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("players cannot leave a running game")
	}
	for i, p := range l.Players {
		if p.ID == id {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("player %s is not seated", id)
}

// SetScoreLimit changes the limit before the game starts.
func (l *Lobby) SetScoreLimit(limit int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("game already started")
	}
	if limit <= 0 {
		return engine.ErrInvalidScoreLimit
	}
	l.ScoreLimit = limit
	return nil
}

// CanStart returns true if enough players are seated.
func (l *Lobby) CanStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.Started && len(l.Players) >= l.MinPlayers
}

// Start marks the lobby as started.
func (l *Lobby) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return fmt.Errorf("already started")
	}
	if len(l.Players) < l.MinPlayers {
		return fmt.Errorf("need at least %d players", l.MinPlayers)
	}
	l.Started = true
	return nil
}

// GetPlayers returns a copy of the player list.
func (l *Lobby) GetPlayers() []PlayerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]PlayerInfo, len(l.Players))
	for i, p := range l.Players {
		out[i] = *p
	}
	return out
}

// Seats returns the players in seat order for engine.NewGame.
func (l *Lobby) Seats() []engine.Seat {
	players := l.GetPlayers()
	seats := make([]engine.Seat, len(players))
	for i, p := range players {
		seats[i] = engine.Seat{ID: p.ID, Name: p.Name}
	}
	return seats
}

// IsStarted reports whether the game has started.
func (l *Lobby) IsStarted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Started
}

// Limit returns the configured score limit.
func (l *Lobby) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ScoreLimit
}
