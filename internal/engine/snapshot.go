package engine

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotVersion is bumped whenever the persisted shape changes.
const SnapshotVersion = 1

// SnapshotPlayer is the persisted part of a player. Round lists and stats
// are rebuilt from the ledger on restore.
type SnapshotPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

// Snapshot is the shape hosts persist. Ledger order is significant.
type Snapshot struct {
	Version    int              `json:"version"`
	Players    []SnapshotPlayer `json:"players"`
	Ledger     []RoundEntry     `json:"ledger"`
	ScoreLimit int              `json:"score_limit"`
	MinScore   int              `json:"min_score"`
	MaxScore   int              `json:"max_score"`
	StartedAt  time.Time        `json:"started_at"`
}

// Snapshot captures the game for persistence.
func (g Game) Snapshot() Snapshot {
	s := Snapshot{
		Version:    SnapshotVersion,
		Players:    make([]SnapshotPlayer, len(g.Players)),
		Ledger:     g.Ledger.Entries(),
		ScoreLimit: g.Config.ScoreLimit,
		MinScore:   g.Config.MinScore,
		MaxScore:   g.Config.MaxScore,
		StartedAt:  g.StartedAt,
	}
	for i, p := range g.Players {
		s.Players[i] = SnapshotPlayer{ID: p.ID, Name: p.Name, TotalScore: p.TotalScore}
	}
	return s
}

// Restore rebuilds a game from a snapshot. Membership, entry width, score
// bounds and Dutch credits are checked. Cached totals are kept as stored, so
// a divergence that was persisted still shows up in Audit.
func Restore(s Snapshot) (Game, error) {
	if s.Version != SnapshotVersion {
		return Game{}, fmt.Errorf("%w: version %d", ErrInvalidSnapshot, s.Version)
	}
	cfg := Config{ScoreLimit: s.ScoreLimit, MinScore: s.MinScore, MaxScore: s.MaxScore}
	if err := cfg.validate(); err != nil {
		return Game{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(s.Players) == 0 {
		return Game{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, ErrNoPlayers)
	}

	players := make([]Player, len(s.Players))
	seen := make(map[string]bool, len(s.Players))
	for i, sp := range s.Players {
		id := strings.TrimSpace(sp.ID)
		if id == "" || seen[id] {
			return Game{}, fmt.Errorf("%w: bad player id %q at seat %d", ErrInvalidSnapshot, sp.ID, i+1)
		}
		seen[id] = true
		players[i] = NewPlayer(id, sp.Name)
		players[i].TotalScore = sp.TotalScore
	}

	for r, e := range s.Ledger {
		if err := checkEntry(e, players, cfg); err != nil {
			return Game{}, fmt.Errorf("%w: round %d: %v", ErrInvalidSnapshot, r+1, err)
		}
		for seat := range players {
			players[seat].Rounds = append(players[seat].Rounds, RoundResult{
				Score:   e.Scores[seat],
				IsDutch: e.DutchPlayerID == players[seat].ID,
			})
		}
	}

	ledger := NewLedger(s.Ledger...)
	return Game{
		Players:   RecomputeStats(players, ledger),
		Ledger:    ledger,
		Config:    cfg,
		StartedAt: s.StartedAt,
	}, nil
}

func checkEntry(e RoundEntry, players []Player, cfg Config) error {
	if len(e.Scores) != len(players) {
		return fmt.Errorf("%d scores for %d players", len(e.Scores), len(players))
	}
	allZero := true
	for _, sc := range e.Scores {
		if sc < cfg.MinScore || sc > cfg.MaxScore {
			return fmt.Errorf("%w: score %d", ErrOutOfRange, sc)
		}
		if sc != 0 {
			allZero = false
		}
	}
	if allZero {
		return ErrAllZeroRound
	}
	if e.DutchPlayerID != "" {
		seat := seatOf(players, e.DutchPlayerID)
		if seat < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, e.DutchPlayerID)
		}
		if e.Scores[seat] != e.MinScore() {
			return &InconsistencyError{PlayerID: e.DutchPlayerID, Score: e.Scores[seat], MinScore: e.MinScore()}
		}
	}
	return nil
}
