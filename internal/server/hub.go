package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dutch/internal/engine"
	"dutch/internal/lobby"
	"dutch/internal/protocol"
	"dutch/internal/store"
)

const saveTimeout = 5 * time.Second

// Hub manages WebSocket connections and the score ledger for one table.
// Commands are handled one at a time on the Run goroutine, which is the
// only writer of the game.
type Hub struct {
	mu         sync.Mutex
	tableID    string
	lobby      *lobby.Lobby
	rules      engine.Config
	store      store.Store
	game       *engine.Game
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	stopOnce   sync.Once
	now        func() time.Time
}

func NewHub(tableID string, lob *lobby.Lobby, rules engine.Config, st store.Store) *Hub {
	return &Hub{
		tableID:    tableID,
		lobby:      lob,
		rules:      rules,
		store:      st,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
		now:        time.Now,
	}
}

// RestoreHub creates a hub for a game loaded from the store.
func RestoreHub(tableID string, lob *lobby.Lobby, game engine.Game, st store.Store) *Hub {
	h := NewHub(tableID, lob, game.Config, st)
	h.game = &game
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendTableUpdate()
			if h.game != nil {
				h.sendStateToClient(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			return
		}
	}
}

// Stop ends the Run loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	// A message can still be queued when its client has been unregistered
	// and its send channel closed; replying to it would panic.
	h.mu.Lock()
	registered := h.clients[msg.Client]
	h.mu.Unlock()
	if !registered {
		return
	}

	if msg.Client.Type == ClientTV {
		h.sendError(msg.Client, "scoreboard displays are read-only", "read_only", "")
		return
	}
	switch msg.Envelope.Type {
	case protocol.MsgAddPlayer:
		h.handleAddPlayer(msg)
	case protocol.MsgRemovePlayer:
		h.handleRemovePlayer(msg)
	case protocol.MsgSetScoreLimit:
		h.handleSetScoreLimit(msg)
	case protocol.MsgStartGame:
		h.handleStartGame(msg)
	case protocol.MsgSubmitRound:
		h.handleSubmitRound(msg)
	case protocol.MsgUndo:
		h.handleUndo(msg)
	case protocol.MsgAudit:
		h.handleAudit(msg)
	case protocol.MsgApplyCorrections:
		h.handleApplyCorrections(msg)
	default:
		h.sendError(msg.Client, fmt.Sprintf("unknown message type %q", msg.Envelope.Type), "bad_request", "")
	}
}

func (h *Hub) handleAddPlayer(msg IncomingMessage) {
	var add protocol.AddPlayerMsg
	if err := protocol.DecodePayload(msg.Envelope, &add); err != nil {
		h.sendError(msg.Client, "invalid add_player message", "bad_request", "")
		return
	}
	id := add.PlayerID
	if id == "" {
		id = NewPlayerID()
	}
	if err := h.lobby.Join(id, add.Name); err != nil {
		h.sendError(msg.Client, err.Error(), "", id)
		return
	}
	h.sendTableUpdate()
}

func (h *Hub) handleRemovePlayer(msg IncomingMessage) {
	var rm protocol.RemovePlayerMsg
	if err := protocol.DecodePayload(msg.Envelope, &rm); err != nil {
		h.sendError(msg.Client, "invalid remove_player message", "bad_request", "")
		return
	}
	if err := h.lobby.Leave(rm.PlayerID); err != nil {
		h.sendError(msg.Client, err.Error(), "", rm.PlayerID)
		return
	}
	h.sendTableUpdate()
}

func (h *Hub) handleSetScoreLimit(msg IncomingMessage) {
	var limit protocol.SetScoreLimitMsg
	if err := protocol.DecodePayload(msg.Envelope, &limit); err != nil {
		h.sendError(msg.Client, "invalid set_score_limit message", "bad_request", "")
		return
	}
	if err := h.lobby.SetScoreLimit(limit.ScoreLimit); err != nil {
		h.sendErr(msg.Client, err)
		return
	}
	h.sendTableUpdate()
}

func (h *Hub) handleStartGame(msg IncomingMessage) {
	if h.game != nil {
		h.sendError(msg.Client, "game already started", "", "")
		return
	}
	if !h.lobby.CanStart() {
		h.sendError(msg.Client, fmt.Sprintf("need at least %d players", h.lobby.MinPlayers), "", "")
		return
	}

	rules := h.rules
	rules.ScoreLimit = h.lobby.Limit()
	game, err := engine.NewGame(h.lobby.Seats(), rules, h.now())
	if err != nil {
		h.sendErr(msg.Client, err)
		return
	}
	if err := h.lobby.Start(); err != nil {
		h.sendError(msg.Client, err.Error(), "", "")
		return
	}

	h.game = &game
	h.persist(msg.Client)
	h.sendTableUpdate()
	h.broadcastState()
}

func (h *Hub) handleSubmitRound(msg IncomingMessage) {
	if !h.requireGame(msg.Client) {
		return
	}
	if h.game.IsOver() {
		h.sendError(msg.Client, "game is over", "game_over", "")
		return
	}

	var sub protocol.SubmitRoundMsg
	if err := protocol.DecodePayload(msg.Envelope, &sub); err != nil {
		h.sendError(msg.Client, "invalid submit_round message", "bad_request", "")
		return
	}

	next, out, err := h.game.AddRound(engine.RoundRequest{
		Seq:           sub.Seq,
		Scores:        engine.RawScores(sub.Scores),
		DeclaredDutch: sub.DeclaredDutch,
	})
	if err != nil {
		h.sendErr(msg.Client, err)
		return
	}

	h.game = &next
	h.persist(msg.Client)
	h.broadcastEvents(out.Events)
	h.broadcastState()
}

func (h *Hub) handleUndo(msg IncomingMessage) {
	if !h.requireGame(msg.Client) {
		return
	}

	next, out := h.game.Undo()
	if out.Empty {
		for _, ev := range out.Events {
			msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgEvent, ev))
		}
		return
	}

	h.game = &next
	h.persist(msg.Client)
	h.broadcastEvents(out.Events)
	h.broadcastState()
}

func (h *Hub) handleAudit(msg IncomingMessage) {
	if !h.requireGame(msg.Client) {
		return
	}
	report := h.game.Audit()
	msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgAuditReport, report))
}

// handleApplyCorrections re-runs the audit and applies its corrections. Seq
// ties the request to the ledger the operator reviewed.
func (h *Hub) handleApplyCorrections(msg IncomingMessage) {
	if !h.requireGame(msg.Client) {
		return
	}
	var req protocol.ApplyCorrectionsMsg
	if err := protocol.DecodePayload(msg.Envelope, &req); err != nil {
		h.sendError(msg.Client, "invalid apply_corrections message", "bad_request", "")
		return
	}
	if req.Seq != h.game.Ledger.Len() {
		h.sendErr(msg.Client, fmt.Errorf("%w: audit of round %d, ledger has %d", engine.ErrStaleRequest, req.Seq, h.game.Ledger.Len()))
		return
	}

	report := h.game.Audit()
	if len(report.Corrections) > 0 {
		next, events := h.game.ApplyCorrections(report.Corrections)
		h.game = &next
		h.persist(msg.Client)
		h.broadcastEvents(events)
		h.broadcastState()
	}
	msg.Client.SendEnvelope(protocol.MustEnvelope(protocol.MsgAuditReport, h.game.Audit()))
}

func (h *Hub) requireGame(client *Client) bool {
	if h.game == nil {
		h.sendError(client, "game not started", "not_started", "")
		return false
	}
	return true
}

// persist saves the current snapshot. A failed save keeps the in-memory
// state and warns the requesting device.
func (h *Hub) persist(client *Client) {
	if h.store == nil || h.game == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.store.Save(ctx, h.tableID, h.game.Snapshot()); err != nil {
		log.Printf("table %s: save snapshot: %v", h.tableID, err)
		h.sendError(client, "scores were recorded but could not be saved", "persist_failed", "")
	}
}

func (h *Hub) broadcastEvents(events []engine.Event) {
	for _, ev := range events {
		env := protocol.MustEnvelope(protocol.MsgEvent, ev)
		h.broadcastAll(env)
	}
}

func (h *Hub) broadcastState() {
	if h.game == nil {
		return
	}
	env := protocol.MustEnvelope(protocol.MsgGameState, h.game.View())
	h.broadcastAll(env)
}

func (h *Hub) sendStateToClient(client *Client) {
	if h.game == nil {
		return
	}
	client.SendEnvelope(protocol.MustEnvelope(protocol.MsgGameState, h.game.View()))
}

func (h *Hub) sendTableUpdate() {
	players := h.lobby.GetPlayers()
	tps := make([]protocol.TablePlayer, len(players))
	for i, p := range players {
		tps[i] = protocol.TablePlayer{ID: p.ID, Name: p.Name}
	}
	env := protocol.MustEnvelope(protocol.MsgTableUpdate, protocol.TableUpdate{
		TableID:    h.tableID,
		Players:    tps,
		ScoreLimit: h.lobby.Limit(),
		Started:    h.game != nil,
	})
	h.broadcastAll(env)
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("client %s buffer full", client.ID)
		}
	}
}

// sendErr reports an engine error with a machine-readable code.
func (h *Hub) sendErr(client *Client, err error) {
	var (
		verr *engine.ValidationError
		ierr *engine.InconsistencyError
	)
	switch {
	case errors.As(err, &verr):
		h.sendError(client, err.Error(), string(verr.Reason), verr.PlayerID)
	case errors.As(err, &ierr):
		h.sendError(client, err.Error(), "dutch_mismatch", ierr.PlayerID)
	case errors.Is(err, engine.ErrUnknownPlayer):
		h.sendError(client, err.Error(), "unknown_player", "")
	case errors.Is(err, engine.ErrStaleRequest):
		h.sendError(client, err.Error(), "stale_request", "")
	case errors.Is(err, engine.ErrInvalidScoreLimit):
		h.sendError(client, err.Error(), "invalid_score_limit", "")
	default:
		h.sendError(client, err.Error(), "", "")
	}
}

func (h *Hub) sendError(client *Client, message, code, playerID string) {
	env := protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{
		Message:  message,
		Code:     code,
		PlayerID: playerID,
	})
	client.SendEnvelope(env)
}
