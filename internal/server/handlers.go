package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"dutch/internal/engine"
	"dutch/internal/lobby"
	qr "dutch/internal/qrcode"
	"dutch/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	LobbyMgr *lobby.Manager
	Store    store.Store
	rules    engine.Config

	mu   sync.Mutex
	hubs map[string]*Hub
}

func NewHandlers(rules engine.Config, lobbyRules lobby.Rules, st store.Store) *Handlers {
	return &Handlers{
		LobbyMgr: lobby.NewManager(lobbyRules),
		Store:    st,
		rules:    rules,
		hubs:     make(map[string]*Hub),
	}
}

// Hub returns the hub of a table.
func (h *Handlers) Hub(tableID string) (*Hub, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	hub, ok := h.hubs[tableID]
	return hub, ok
}

func (h *Handlers) addHub(tableID string, hub *Hub) {
	h.mu.Lock()
	h.hubs[tableID] = hub
	h.mu.Unlock()
	go hub.Run()
}

// RestoreTables reopens every table found in the store. Snapshots that fail
// integrity checks are logged and skipped.
func (h *Handlers) RestoreTables(ctx context.Context) (int, error) {
	ids, err := h.Store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tables: %w", err)
	}
	restored := 0
	for _, id := range ids {
		rec, err := h.Store.Load(ctx, id)
		if err != nil {
			log.Printf("table %s: load snapshot: %v", id, err)
			continue
		}
		game, err := engine.Restore(rec.Snapshot)
		if err != nil {
			log.Printf("table %s: %v", id, err)
			continue
		}
		if report := game.Audit(); !report.IsValid {
			log.Printf("table %s: restored with %d audit errors", id, len(report.Errors))
		}
		lob := h.LobbyMgr.Restore(id, rec.Snapshot)
		h.addHub(id, RestoreHub(id, lob, game, h.Store))
		restored++
	}
	return restored, nil
}

// Close stops all hubs.
func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, hub := range h.hubs {
		hub.Stop()
	}
}

// HandleCreateTable creates a new table and sends the caller to its scoreboard.
func (h *Handlers) HandleCreateTable(w http.ResponseWriter, r *http.Request) {
	tableID := h.LobbyMgr.Create()
	lob := h.LobbyMgr.Get(tableID)
	h.addHub(tableID, NewHub(tableID, lob, h.rules, h.Store))

	http.Redirect(w, r, fmt.Sprintf("/tv.html?table=%s", tableID), http.StatusSeeOther)
}

// HandleQR generates a QR code PNG that opens the input page of a table.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		http.Error(w, "missing table parameter", http.StatusBadRequest)
		return
	}
	png, err := qr.Generate(qr.DeviceURL(r.Host, tableID))
	if err != nil {
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleSnapshot returns the stored snapshot of a table as JSON.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	tableID := r.PathValue("id")
	rec, err := h.Store.Load(r.Context(), tableID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("table %s: load snapshot: %v", tableID, err)
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec.Snapshot); err != nil {
		log.Printf("table %s: encode snapshot: %v", tableID, err)
	}
}

// TableSummary is one entry of the table list.
type TableSummary struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Started bool   `json:"started"`
}

// HandleListTables lists open tables so a device can rejoin one.
func (h *Handlers) HandleListTables(w http.ResponseWriter, r *http.Request) {
	ids := h.LobbyMgr.IDs()
	tables := make([]TableSummary, 0, len(ids))
	for _, id := range ids {
		lob := h.LobbyMgr.Get(id)
		if lob == nil {
			continue
		}
		tables = append(tables, TableSummary{
			ID:      id,
			Players: len(lob.GetPlayers()),
			Started: lob.IsStarted(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tables); err != nil {
		log.Printf("encode table list: %v", err)
	}
}

// HandleWS handles WebSocket connections.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	clientType := r.URL.Query().Get("type") // "tv" or "device"

	if tableID == "" {
		http.Error(w, "missing table parameter", http.StatusBadRequest)
		return
	}
	hub, ok := h.Hub(tableID)
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	client := NewClient(hub, conn, ParseClientType(clientType))
	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// HandlePlayerID returns a new player ID.
func (h *Handlers) HandlePlayerID(w http.ResponseWriter, r *http.Request) {
	id := NewPlayerID()
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(id))
}
