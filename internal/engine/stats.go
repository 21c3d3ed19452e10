package engine

import "math"

// Stats is derived from a player's own rounds. WinStreak additionally looks
// at the other players' scores in the same rounds.
type Stats struct {
	RoundsPlayed     int     `json:"rounds_played"`
	AverageScore     float64 `json:"average_score"` // one decimal place
	BestRound        *int    `json:"best_round"`    // lowest score, nil without rounds
	WorstRound       *int    `json:"worst_round"`   // highest score, nil without rounds
	DutchCount       int     `json:"dutch_count"`
	ImprovementRate  float64 `json:"improvement_rate"`  // negative means scores are dropping
	ConsistencyScore float64 `json:"consistency_score"` // population std deviation
	WinStreak        int     `json:"win_streak"`
}

func (s Stats) clone() Stats {
	c := s
	if s.BestRound != nil {
		v := *s.BestRound
		c.BestRound = &v
	}
	if s.WorstRound != nil {
		v := *s.WorstRound
		c.WorstRound = &v
	}
	return c
}

// minImprovementRounds is how many rounds a player needs before the first
// and second half of their game are compared.
const minImprovementRounds = 4

// ComputeStats derives statistics from rounds. wins[i] reports whether the
// player held the minimum score of round i; it must be index-aligned with
// rounds.
func ComputeStats(rounds []RoundResult, wins []bool) Stats {
	var st Stats
	st.RoundsPlayed = len(rounds)
	if len(rounds) == 0 {
		return st
	}

	scores := make([]float64, len(rounds))
	best, worst := rounds[0].Score, rounds[0].Score
	for i, r := range rounds {
		scores[i] = float64(r.Score)
		if r.Score < best {
			best = r.Score
		}
		if r.Score > worst {
			worst = r.Score
		}
		if r.IsDutch {
			st.DutchCount++
		}
	}
	st.BestRound = &best
	st.WorstRound = &worst

	mean := meanOf(scores)
	st.AverageScore = roundTo(mean, 1)

	if len(scores) >= minImprovementRounds {
		mid := len(scores) / 2
		st.ImprovementRate = meanOf(scores[mid:]) - meanOf(scores[:mid])
	}

	if len(scores) >= 2 {
		var sq float64
		for _, s := range scores {
			d := s - mean
			sq += d * d
		}
		st.ConsistencyScore = math.Sqrt(sq / float64(len(scores)))
	}

	run := 0
	for _, w := range wins {
		if !w {
			run = 0
			continue
		}
		run++
		if run > st.WinStreak {
			st.WinStreak = run
		}
	}

	return st
}

// RoundWins reports, for every ledger entry, whether the player at seat held
// that round's minimum score. Ties count as a win for every tied player.
func RoundWins(ledger Ledger, seat int) []bool {
	wins := make([]bool, ledger.Len())
	for i, e := range ledger.entries {
		if seat < len(e.Scores) {
			wins[i] = e.Scores[seat] == e.MinScore()
		}
	}
	return wins
}

// RecomputeStats returns a copy of players with Stats rebuilt from the ledger.
func RecomputeStats(players []Player, ledger Ledger) []Player {
	out := clonePlayers(players)
	for i := range out {
		out[i].Stats = ComputeStats(out[i].Rounds, RoundWins(ledger, i))
	}
	return out
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
