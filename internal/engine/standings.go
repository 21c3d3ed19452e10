package engine

import "sort"

// Standing is one row of the scoreboard. Lower totals rank higher.
type Standing struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TotalScore int    `json:"total_score"`
	DutchCount int    `json:"dutch_count"`
}

// Standings orders players by total ascending. Equal totals share a rank
// ("1, 1, 3") and keep seat order.
func Standings(players []Player) []Standing {
	rows := make([]Standing, len(players))
	for i, p := range players {
		rows[i] = Standing{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TotalScore: p.TotalScore,
			DutchCount: p.Stats.DutchCount,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalScore < rows[j].TotalScore
	})
	for i := range rows {
		if i > 0 && rows[i].TotalScore == rows[i-1].TotalScore {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}

// Leaders returns the ids of every player holding the lowest total.
func Leaders(players []Player) []string {
	if len(players) == 0 {
		return nil
	}
	low := players[0].TotalScore
	for _, p := range players[1:] {
		if p.TotalScore < low {
			low = p.TotalScore
		}
	}
	var ids []string
	for _, p := range players {
		if p.TotalScore == low {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
