package engine

import (
	"fmt"
	"strings"
	"time"
)

// Seat identifies a player joining a game.
type Seat struct {
	ID   string
	Name string
}

// Game is one scoring session: fixed membership, the round ledger and the
// rules. Game is a value. Every operation returns a new Game and leaves the
// receiver as it was, so a host can keep the previous value and hold no
// shared state with the engine.
type Game struct {
	Players   []Player
	Ledger    Ledger
	Config    Config
	StartedAt time.Time
}

// RoundRequest is one round submission from the host.
//
// Seq is the number of rounds the caller saw when it built the request. A
// request whose Seq differs from the ledger length is stale (a double submit,
// or a submit racing an undo) and is rejected with ErrStaleRequest.
type RoundRequest struct {
	Seq           int
	Scores        RawScores
	DeclaredDutch string
}

// RoundOutcome describes a committed round.
type RoundOutcome struct {
	Round         int // 1-based round number
	Entry         RoundEntry
	DutchPlayerID string
	GameOver      bool
	Events        []Event
}

// UndoOutcome describes an undo. Empty is set when there was nothing to undo.
type UndoOutcome struct {
	Round  int
	Entry  RoundEntry
	Empty  bool
	Events []Event
}

// NewGame starts a session with zero totals and an empty ledger.
func NewGame(seats []Seat, cfg Config, startedAt time.Time) (Game, error) {
	if len(seats) == 0 {
		return Game{}, ErrNoPlayers
	}
	if err := cfg.validate(); err != nil {
		return Game{}, err
	}

	seen := make(map[string]bool, len(seats))
	players := make([]Player, len(seats))
	for i, s := range seats {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return Game{}, fmt.Errorf("%w: seat %d has no id", ErrUnknownPlayer, i+1)
		}
		if seen[id] {
			return Game{}, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
		players[i] = NewPlayer(id, s.Name)
	}

	return Game{
		Players:   players,
		Ledger:    NewLedger(),
		Config:    cfg,
		StartedAt: startedAt,
	}, nil
}

// PlayerIDs returns the seat order.
func (g Game) PlayerIDs() []string {
	ids := make([]string, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

// GetPlayer returns a copy of the player with the given id.
func (g Game) GetPlayer(id string) (Player, bool) {
	if seat := seatOf(g.Players, id); seat >= 0 {
		return g.Players[seat].clone(), true
	}
	return Player{}, false
}

// IsOver reports whether the score limit has been reached.
func (g Game) IsOver() bool {
	return IsGameOver(g.Players, g.Config.ScoreLimit)
}

// AddRound validates req, resolves the Dutch player, appends the round and
// refreshes totals and stats. On error the returned Game is the receiver.
func (g Game) AddRound(req RoundRequest) (Game, RoundOutcome, error) {
	if req.Seq != g.Ledger.Len() {
		return g, RoundOutcome{}, fmt.Errorf("%w: request for round %d, ledger has %d", ErrStaleRequest, req.Seq+1, g.Ledger.Len())
	}

	order := g.PlayerIDs()
	sub, err := Validate(req.Scores, order, req.DeclaredDutch, g.Config)
	if err != nil {
		return g, RoundOutcome{}, err
	}
	res, err := ResolveDutch(order, sub.Scores, sub.DeclaredDutch)
	if err != nil {
		return g, RoundOutcome{}, err
	}

	entry := RoundEntry{Scores: sub.Scores, DutchPlayerID: res.PlayerID}
	next := g.clone()
	next.Ledger = g.Ledger.Commit(entry)
	for i := range next.Players {
		score := entry.Scores[i]
		next.Players[i].Rounds = append(next.Players[i].Rounds, RoundResult{Score: score, IsDutch: i == res.Seat})
		next.Players[i].TotalScore += score
	}
	next.Players = RecomputeStats(next.Players, next.Ledger)

	out := RoundOutcome{
		Round:         next.Ledger.Len(),
		Entry:         entry.clone(),
		DutchPlayerID: res.PlayerID,
		GameOver:      next.IsOver(),
	}
	out.Events = append(out.Events, Event{
		Type:   EventRoundCommitted,
		Player: res.PlayerID,
		Data: map[string]interface{}{
			"round":   out.Round,
			"scores":  entry.Scores,
			"claimed": res.Claimed,
		},
	})
	if out.GameOver {
		out.Events = append(out.Events, Event{
			Type: EventGameOver,
			Data: map[string]interface{}{
				"round":   out.Round,
				"leaders": Leaders(next.Players),
			},
		})
	}
	return next, out, nil
}

// Undo removes the most recent round and reverses its effect on every
// player's round list and total. Undo on an empty ledger is a no-op that
// reports Empty.
func (g Game) Undo() (Game, UndoOutcome) {
	ledger, removed, ok := g.Ledger.Undo()
	if !ok {
		return g, UndoOutcome{
			Empty:  true,
			Events: []Event{{Type: EventUndoEmpty}},
		}
	}

	next := g.clone()
	next.Ledger = ledger
	for i := range next.Players {
		p := &next.Players[i]
		if n := len(p.Rounds); n > 0 {
			p.Rounds = p.Rounds[:n-1]
		}
		if i < len(removed.Scores) {
			p.TotalScore -= removed.Scores[i]
		}
	}
	next.Players = RecomputeStats(next.Players, next.Ledger)

	round := g.Ledger.Len()
	return next, UndoOutcome{
		Round: round,
		Entry: removed,
		Events: []Event{{
			Type:   EventRoundUndone,
			Player: removed.DutchPlayerID,
			Data:   map[string]interface{}{"round": round, "scores": removed.Scores},
		}},
	}
}

// Audit checks cached totals against the ledger. See Audit.
func (g Game) Audit() AuditReport {
	return Audit(g.Players, g.Ledger)
}

// ApplyCorrections sets cached totals as proposed by an audit. The ledger is
// never rewritten.
func (g Game) ApplyCorrections(corrections []Correction) (Game, []Event) {
	next := g.clone()
	next.Players = ApplyCorrections(next.Players, corrections)

	var events []Event
	for _, c := range corrections {
		if seatOf(next.Players, c.PlayerID) < 0 {
			continue
		}
		events = append(events, Event{
			Type:   EventTotalsCorrected,
			Player: c.PlayerID,
			Data:   map[string]interface{}{"from": c.From, "to": c.To},
		})
	}
	return next, events
}

func (g Game) clone() Game {
	c := g
	c.Players = clonePlayers(g.Players)
	return c
}
