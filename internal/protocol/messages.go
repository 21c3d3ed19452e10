package protocol

import (
	"bytes"
	"encoding/json"
)

// Message types: Server → Client
const (
	MsgTableUpdate = "table_update"
	MsgGameState   = "game_state"
	MsgAuditReport = "audit_report"
	MsgError       = "error"
	MsgEvent       = "event"
)

// Message types: Client → Server
const (
	MsgAddPlayer        = "add_player"
	MsgRemovePlayer     = "remove_player"
	MsgSetScoreLimit    = "set_score_limit"
	MsgStartGame        = "start_game"
	MsgSubmitRound      = "submit_round"
	MsgUndo             = "undo"
	MsgAudit            = "audit"
	MsgApplyCorrections = "apply_corrections"
)

// TableUpdate is sent to all clients when the table setup changes.
type TableUpdate struct {
	TableID    string        `json:"table_id"`
	Players    []TablePlayer `json:"players"`
	ScoreLimit int           `json:"score_limit"`
	Started    bool          `json:"started"`
}

type TablePlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddPlayerMsg seats a player. PlayerID is optional; the server assigns one
// when it is empty.
type AddPlayerMsg struct {
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name"`
}

type RemovePlayerMsg struct {
	PlayerID string `json:"player_id"`
}

type SetScoreLimitMsg struct {
	ScoreLimit int `json:"score_limit"`
}

// SubmitRoundMsg carries raw form values keyed by player id. Seq is the
// number of rounds the device displayed when the form was submitted.
type SubmitRoundMsg struct {
	Seq           int                    `json:"seq"`
	Scores        map[string]interface{} `json:"scores"`
	DeclaredDutch string                 `json:"declared_dutch,omitempty"`
}

// ApplyCorrectionsMsg applies the corrections of a fresh audit, provided
// the ledger still has Seq rounds.
type ApplyCorrectionsMsg struct {
	Seq int `json:"seq"`
}

// ErrorMsg is sent to a client on error. Code is a stable machine tag such
// as a validation reason.
type ErrorMsg struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
}

// DecodePayload unmarshals an envelope payload, keeping numbers as
// json.Number so raw score values reach validation untouched.
func DecodePayload(env Envelope, v interface{}) error {
	if len(env.Payload) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Payload))
	dec.UseNumber()
	return dec.Decode(v)
}
