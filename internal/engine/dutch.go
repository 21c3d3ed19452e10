package engine

import "fmt"

// Resolution names the player credited with a round.
type Resolution struct {
	PlayerID string
	Seat     int
	MinScore int
	Claimed  bool // a declared claim named the credited player
}

// ResolveDutch credits the round to the lowest scorer.
//
// Without a claim, the Dutch player is the first seat (lowest index) holding
// the minimum score. Other tied players are never credited. This tie-break
// decides observable outcomes and must not change.
//
// A declared claim is only cross-checked: it is consistent when the declared
// player holds the minimum, and the credit still follows the tie-break, so a
// claim by a later tied seat is accepted but credits the earlier seat. A
// claim on any other score is rejected with an *InconsistencyError.
func ResolveDutch(order []string, scores []int, declared string) (Resolution, error) {
	if len(scores) == 0 || len(scores) != len(order) {
		return Resolution{}, fmt.Errorf("%w: %d scores for %d players", ErrNoPlayers, len(scores), len(order))
	}

	minScore := scores[0]
	seat := 0
	for i, s := range scores {
		if s < minScore {
			minScore = s
			seat = i
		}
	}

	if declared == "" {
		return Resolution{PlayerID: order[seat], Seat: seat, MinScore: minScore}, nil
	}

	claimed := -1
	for i, id := range order {
		if id == declared {
			claimed = i
			break
		}
	}
	if claimed < 0 {
		return Resolution{}, fmt.Errorf("%w: declared Dutch %q", ErrUnknownPlayer, declared)
	}
	if scores[claimed] != minScore {
		return Resolution{}, &InconsistencyError{PlayerID: declared, Score: scores[claimed], MinScore: minScore}
	}
	return Resolution{PlayerID: order[seat], Seat: seat, MinScore: minScore, Claimed: claimed == seat}, nil
}
