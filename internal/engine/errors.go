package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingPlayers    = errors.New("missing players")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrOutOfRange        = errors.New("out of range")
	ErrAllZeroRound      = errors.New("all scores are zero")
	ErrDutchMismatch     = errors.New("Dutch claim does not hold minimum score")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrStaleRequest      = errors.New("stale round request")
	ErrNoPlayers         = errors.New("no players")
	ErrDuplicatePlayer   = errors.New("duplicate player")
	ErrInvalidScoreLimit = errors.New("score limit must be positive")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)

// ValidationReason tags the condition that rejected a round submission.
type ValidationReason string

const (
	ReasonMissingPlayers ValidationReason = "missing_players"
	ReasonInvalidFormat  ValidationReason = "invalid_format"
	ReasonOutOfRange     ValidationReason = "out_of_range"
	ReasonAllZero        ValidationReason = "all_zero_round"
)

// ValidationError rejects a whole round submission. Nothing of the round is
// kept; the caller resubmits.
type ValidationError struct {
	Reason   ValidationReason
	PlayerID string   // offending player, empty for whole-round reasons
	Value    string   // raw value as received
	Missing  []string // player ids without an entry
	Min, Max int      // accepted bounds, set for ReasonOutOfRange
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingPlayers:
		return fmt.Sprintf("missing players: %s", strings.Join(e.Missing, ", "))
	case ReasonInvalidFormat:
		return fmt.Sprintf("invalid format: player %s value %q is not a whole number", e.PlayerID, e.Value)
	case ReasonOutOfRange:
		return fmt.Sprintf("out of range: player %s score %s not in [%d, %d]", e.PlayerID, e.Value, e.Min, e.Max)
	case ReasonAllZero:
		return ErrAllZeroRound.Error()
	}
	return "invalid round: " + string(e.Reason)
}

func (e *ValidationError) Unwrap() error {
	switch e.Reason {
	case ReasonMissingPlayers:
		return ErrMissingPlayers
	case ReasonInvalidFormat:
		return ErrInvalidFormat
	case ReasonOutOfRange:
		return ErrOutOfRange
	case ReasonAllZero:
		return ErrAllZeroRound
	}
	return nil
}

// InconsistencyError rejects a round whose declared Dutch player did not
// score the round minimum.
type InconsistencyError struct {
	PlayerID string
	Score    int
	MinScore int
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: player %s scored %d, round minimum is %d", ErrDutchMismatch, e.PlayerID, e.Score, e.MinScore)
}

func (e *InconsistencyError) Unwrap() error { return ErrDutchMismatch }
