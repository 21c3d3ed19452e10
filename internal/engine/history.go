package engine

// HistoryRow is one ledger round prepared for a history table.
type HistoryRow struct {
	Round         int    `json:"round"`
	Scores        []int  `json:"scores"`
	RunningTotals []int  `json:"running_totals"`
	DutchPlayerID string `json:"dutch_player_id,omitempty"`
}

// History walks the ledger and accumulates running totals per seat. The
// totals are ledger-derived, so they can differ from cached totals when an
// audit would fail.
func History(players []Player, ledger Ledger) []HistoryRow {
	rows := make([]HistoryRow, 0, ledger.Len())
	running := make([]int, len(players))
	for i, e := range ledger.entries {
		for seat := range running {
			if seat < len(e.Scores) {
				running[seat] += e.Scores[seat]
			}
		}
		rows = append(rows, HistoryRow{
			Round:         i + 1,
			Scores:        append([]int(nil), e.Scores...),
			RunningTotals: append([]int(nil), running...),
			DutchPlayerID: e.DutchPlayerID,
		})
	}
	return rows
}
