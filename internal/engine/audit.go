package engine

import "fmt"

// Correction proposes resetting a cached total to the ledger-derived value.
type Correction struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	From       int    `json:"from"`
	To         int    `json:"to"`
}

// AuditReport is the verdict of comparing cached totals with the ledger.
type AuditReport struct {
	IsValid     bool         `json:"is_valid"`
	Errors      []string     `json:"errors"`
	Corrections []Correction `json:"corrections"`
}

// Audit recomputes every player's total from the ledger column at their seat
// and compares it with the cached TotalScore. It never mutates its inputs and
// is safe to call at any time; applying the corrections is up to the caller.
//
// Structural problems (an entry with the wrong width, a round list out of
// step with the ledger) are reported as errors too, but only totals produce
// corrections.
func Audit(players []Player, ledger Ledger) AuditReport {
	report := AuditReport{Errors: []string{}, Corrections: []Correction{}}

	sums := make([]int, len(players))
	for r, e := range ledger.entries {
		if len(e.Scores) != len(players) {
			report.Errors = append(report.Errors,
				fmt.Sprintf("round %d has %d scores for %d players", r+1, len(e.Scores), len(players)))
		}
		for seat := range players {
			if seat < len(e.Scores) {
				sums[seat] += e.Scores[seat]
			}
		}
	}

	for seat, p := range players {
		if len(p.Rounds) != ledger.Len() {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s has %d rounds recorded, ledger has %d", p.Name, len(p.Rounds), ledger.Len()))
		}
		if p.TotalScore != sums[seat] {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s: cached total %d does not match ledger total %d", p.Name, p.TotalScore, sums[seat]))
			report.Corrections = append(report.Corrections, Correction{
				PlayerID:   p.ID,
				PlayerName: p.Name,
				From:       p.TotalScore,
				To:         sums[seat],
			})
		}
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

// ApplyCorrections returns a copy of players with the corrected totals set.
// Corrections for unknown players are ignored. The ledger is never touched.
func ApplyCorrections(players []Player, corrections []Correction) []Player {
	out := clonePlayers(players)
	for _, c := range corrections {
		if seat := seatOf(out, c.PlayerID); seat >= 0 {
			out[seat].TotalScore = c.To
		}
	}
	return out
}
