package engine

// RoundResult is one player's score in one round.
type RoundResult struct {
	Score   int  `json:"score"`
	IsDutch bool `json:"is_dutch"`
}

// Player holds one participant's history and derived values.
//
// Rounds is index-aligned with the game ledger. TotalScore is a cached sum
// of Rounds and is only ever checked by Audit, never trusted. Stats is fully
// derived and recomputed whenever the ledger changes.
type Player struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Rounds     []RoundResult `json:"rounds"`
	TotalScore int           `json:"total_score"`
	Stats      Stats         `json:"stats"`
}

func NewPlayer(id, name string) Player {
	return Player{
		ID:     id,
		Name:   name,
		Rounds: []RoundResult{},
	}
}

// SumRounds returns the total implied by the player's own round list.
func (p Player) SumRounds() int {
	sum := 0
	for _, r := range p.Rounds {
		sum += r.Score
	}
	return sum
}

func (p Player) clone() Player {
	c := p
	c.Rounds = append(make([]RoundResult, 0, len(p.Rounds)+1), p.Rounds...)
	c.Stats = p.Stats.clone()
	return c
}

func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.clone()
	}
	return out
}

func seatOf(players []Player, id string) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
