package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawScores maps player id to an untyped form value: a number (any Go
// numeric type or json.Number) or a string.
type RawScores map[string]any

// Submission is a validated round, ready for Dutch resolution.
type Submission struct {
	Scores        []int  // aligned with the player order passed to Validate
	DeclaredDutch string // optional caller claim, checked by ResolveDutch
}

// Validate converts raw round input into an ordered score vector. It is the
// only place untyped input is parsed. Checks run in this order: every player
// present, every value a whole finite number, every value within bounds, and
// not every score zero. The first failing check is reported.
func Validate(raw RawScores, order []string, declaredDutch string, cfg Config) (Submission, error) {
	if len(order) == 0 {
		return Submission{}, ErrNoPlayers
	}

	var missing []string
	for _, id := range order {
		if isBlank(raw[id]) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return Submission{}, &ValidationError{Reason: ReasonMissingPlayers, Missing: missing}
	}

	scores := make([]int, len(order))
	allZero := true
	for i, id := range order {
		v, ok := parseScore(raw[id])
		if !ok {
			return Submission{}, &ValidationError{Reason: ReasonInvalidFormat, PlayerID: id, Value: rawString(raw[id])}
		}
		if v < float64(cfg.MinScore) || v > float64(cfg.MaxScore) {
			return Submission{}, &ValidationError{
				Reason:   ReasonOutOfRange,
				PlayerID: id,
				Value:    rawString(raw[id]),
				Min:      cfg.MinScore,
				Max:      cfg.MaxScore,
			}
		}
		scores[i] = int(v)
		if scores[i] != 0 {
			allZero = false
		}
	}
	if allZero {
		return Submission{}, &ValidationError{Reason: ReasonAllZero}
	}

	return Submission{Scores: scores, DeclaredDutch: strings.TrimSpace(declaredDutch)}, nil
}

// isBlank reports a value a form would send for an untouched field.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// parseScore returns the numeric value of v if it is a finite whole number.
func parseScore(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

func rawString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
