package engine

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventRoundCommitted  EventType = "round_committed"
	EventRoundUndone     EventType = "round_undone"
	EventUndoEmpty       EventType = "undo_empty"
	EventGameOver        EventType = "game_over"
	EventTotalsCorrected EventType = "totals_corrected"
)

// Event is emitted by the engine after state changes, for hosts to fan out
// to whoever displays or stores the result.
type Event struct {
	Type   EventType   `json:"type"`
	Player string      `json:"player,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}
