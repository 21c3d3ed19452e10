package engine

// ViewData is the full game state sent to displays and the input device.
type ViewData struct {
	Round      int          `json:"round"`
	ScoreLimit int          `json:"score_limit"`
	GameOver   bool         `json:"game_over"`
	Players    []Player     `json:"players"`
	Ledger     []RoundEntry `json:"ledger"`
	Standings  []Standing   `json:"standings"`
	History    []HistoryRow `json:"history"`
	Leaders    []string     `json:"leaders,omitempty"`
}

// View returns a copy of the state for rendering.
func (g Game) View() ViewData {
	v := ViewData{
		Round:      g.Ledger.Len(),
		ScoreLimit: g.Config.ScoreLimit,
		GameOver:   g.IsOver(),
		Players:    clonePlayers(g.Players),
		Ledger:     g.Ledger.Entries(),
		Standings:  Standings(g.Players),
		History:    History(g.Players, g.Ledger),
	}
	if v.GameOver {
		v.Leaders = Leaders(g.Players)
	}
	return v
}
