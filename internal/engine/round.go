package engine

// RoundEntry is one committed round in the ledger. Scores is aligned 1:1
// with the game's player order.
type RoundEntry struct {
	Scores        []int  `json:"scores"`
	DutchPlayerID string `json:"dutch_player_id,omitempty"`
}

// MinScore returns the lowest score of the round, or 0 for an empty entry.
func (e RoundEntry) MinScore() int {
	if len(e.Scores) == 0 {
		return 0
	}
	m := e.Scores[0]
	for _, s := range e.Scores[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

func (e RoundEntry) clone() RoundEntry {
	c := e
	c.Scores = append([]int(nil), e.Scores...)
	return c
}
