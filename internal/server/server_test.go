package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"dutch/internal/config"
	"dutch/internal/engine"
	"dutch/internal/protocol"
	"dutch/internal/store"
)

type testEnv struct {
	ts    *httptest.Server
	srv   *Server
	store *store.MemoryStore
}

func newTestEnv(t *testing.T, scoreLimit int) *testEnv {
	t.Helper()
	cfg := config.Config{
		Port:       8080,
		ScoreLimit: scoreLimit,
		MinPlayers: 2,
		MaxPlayers: 8,
		MinScore:   0,
		MaxScore:   500,
	}
	st := store.NewMemoryStore()
	srv := New(cfg, st, fstest.MapFS{"index.html": {Data: []byte("<html></html>")}})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.handlers.Close()
	})
	return &testEnv{ts: ts, srv: srv, store: st}
}

func (e *testEnv) createTable(t *testing.T) string {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get(e.ts.URL + "/api/create")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	id := loc.Query().Get("table")
	if id == "" {
		t.Fatalf("no table in redirect %q", loc)
	}
	return id
}

func (e *testEnv) dial(t *testing.T, tableID, clientType string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws?table=" + tableID + "&type=" + clientType
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(protocol.MustEnvelope(typ, payload)); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.Type == typ {
			return env
		}
	}
}

func readState(t *testing.T, conn *websocket.Conn, round int) engine.ViewData {
	t.Helper()
	for {
		env := readUntil(t, conn, protocol.MsgGameState)
		var view engine.ViewData
		if err := json.Unmarshal(env.Payload, &view); err != nil {
			t.Fatalf("decode game state: %v", err)
		}
		if view.Round == round {
			return view
		}
	}
}

func readError(t *testing.T, conn *websocket.Conn) protocol.ErrorMsg {
	t.Helper()
	env := readUntil(t, conn, protocol.MsgError)
	var msg protocol.ErrorMsg
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return msg
}

func seatTwo(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	send(t, conn, protocol.MsgAddPlayer, protocol.AddPlayerMsg{PlayerID: "a", Name: "Ann"})
	send(t, conn, protocol.MsgAddPlayer, protocol.AddPlayerMsg{PlayerID: "b", Name: "Bo"})
	send(t, conn, protocol.MsgStartGame, nil)
	readState(t, conn, 0)
}

func TestSubmitUndoFlow(t *testing.T) {
	env := newTestEnv(t, 100)
	table := env.createTable(t)
	dev := env.dial(t, table, "device")
	readUntil(t, dev, protocol.MsgTableUpdate)
	seatTwo(t, dev)

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    0,
		Scores: map[string]interface{}{"a": 12, "b": "3"},
	})
	view := readState(t, dev, 1)
	if view.Players[0].TotalScore != 12 || view.Players[1].TotalScore != 3 {
		t.Fatalf("totals = %d, %d", view.Players[0].TotalScore, view.Players[1].TotalScore)
	}
	if view.Ledger[0].DutchPlayerID != "b" {
		t.Fatalf("dutch = %q, want b", view.Ledger[0].DutchPlayerID)
	}

	// the same form submitted twice
	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    0,
		Scores: map[string]interface{}{"a": 12, "b": "3"},
	})
	if e := readError(t, dev); e.Code != "stale_request" {
		t.Fatalf("code = %q, want stale_request", e.Code)
	}

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    1,
		Scores: map[string]interface{}{"a": "x", "b": 1},
	})
	if e := readError(t, dev); e.Code != string(engine.ReasonInvalidFormat) || e.PlayerID != "a" {
		t.Fatalf("error = %+v", e)
	}

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:           1,
		Scores:        map[string]interface{}{"a": 5, "b": 9},
		DeclaredDutch: "b",
	})
	if e := readError(t, dev); e.Code != "dutch_mismatch" || e.PlayerID != "b" {
		t.Fatalf("error = %+v", e)
	}

	resp, err := http.Get(env.ts.URL + "/api/tables/" + table + "/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	var snap engine.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Ledger) != 1 || snap.Players[0].TotalScore != 12 {
		t.Fatalf("snapshot = %+v", snap)
	}

	send(t, dev, protocol.MsgUndo, nil)
	view = readState(t, dev, 0)
	if view.Players[0].TotalScore != 0 || len(view.Players[0].Rounds) != 0 {
		t.Fatalf("after undo: %+v", view.Players[0])
	}

	send(t, dev, protocol.MsgUndo, nil)
	evEnv := readUntil(t, dev, protocol.MsgEvent)
	var ev engine.Event
	if err := json.Unmarshal(evEnv.Payload, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != engine.EventUndoEmpty {
		t.Fatalf("event = %s, want undo_empty", ev.Type)
	}

	send(t, dev, protocol.MsgAudit, nil)
	var report engine.AuditReport
	if err := json.Unmarshal(readUntil(t, dev, protocol.MsgAuditReport).Payload, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.IsValid {
		t.Fatalf("report = %+v", report)
	}
}

func TestScoreboardIsReadOnly(t *testing.T) {
	env := newTestEnv(t, 100)
	table := env.createTable(t)
	tv := env.dial(t, table, "tv")

	send(t, tv, protocol.MsgAddPlayer, protocol.AddPlayerMsg{Name: "Ann"})
	if e := readError(t, tv); e.Code != "read_only" {
		t.Fatalf("code = %q, want read_only", e.Code)
	}
}

func TestTVSeesDeviceRounds(t *testing.T) {
	env := newTestEnv(t, 100)
	table := env.createTable(t)
	dev := env.dial(t, table, "device")
	tv := env.dial(t, table, "tv")
	seatTwo(t, dev)

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    0,
		Scores: map[string]interface{}{"a": 4, "b": 4},
	})
	view := readState(t, tv, 1)
	// tie goes to the earlier seat
	if view.Ledger[0].DutchPlayerID != "a" {
		t.Fatalf("dutch = %q, want a", view.Ledger[0].DutchPlayerID)
	}
}

func TestGameOverRefusesRounds(t *testing.T) {
	env := newTestEnv(t, 30)
	table := env.createTable(t)
	dev := env.dial(t, table, "device")
	seatTwo(t, dev)

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    0,
		Scores: map[string]interface{}{"a": 30, "b": 2},
	})
	view := readState(t, dev, 1)
	if !view.GameOver || len(view.Leaders) != 1 || view.Leaders[0] != "b" {
		t.Fatalf("view = %+v", view)
	}

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{
		Seq:    1,
		Scores: map[string]interface{}{"a": 1, "b": 2},
	})
	if e := readError(t, dev); e.Code != "game_over" {
		t.Fatalf("code = %q, want game_over", e.Code)
	}
}

func TestStartNeedsPlayers(t *testing.T) {
	env := newTestEnv(t, 100)
	table := env.createTable(t)
	dev := env.dial(t, table, "device")

	send(t, dev, protocol.MsgAddPlayer, protocol.AddPlayerMsg{Name: "Ann"})
	send(t, dev, protocol.MsgStartGame, nil)
	readError(t, dev)

	send(t, dev, protocol.MsgSubmitRound, protocol.SubmitRoundMsg{Seq: 0})
	if e := readError(t, dev); e.Code != "not_started" {
		t.Fatalf("code = %q, want not_started", e.Code)
	}
}

func storedGame(t *testing.T) engine.Game {
	t.Helper()
	g, err := engine.NewGame([]engine.Seat{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Bo"}}, engine.DefaultConfig(), time.Now())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	rounds := []engine.RawScores{{"a": 10, "b": 4}, {"a": 0, "b": 7}}
	for i, scores := range rounds {
		g, _, err = g.AddRound(engine.RoundRequest{Seq: i, Scores: scores})
		if err != nil {
			t.Fatalf("round %d: %v", i+1, err)
		}
	}
	return g
}

func TestRestoreTablesAndCorrect(t *testing.T) {
	env := newTestEnv(t, 100)
	ctx := context.Background()

	snap := storedGame(t).Snapshot()
	snap.Players[0].TotalScore += 5 // cached total drifted before the save
	if err := env.store.Save(ctx, "saved", snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	n, err := env.srv.handlers.RestoreTables(ctx)
	if err != nil || n != 1 {
		t.Fatalf("RestoreTables = %d, %v", n, err)
	}

	dev := env.dial(t, "saved", "device")
	view := readState(t, dev, 2)
	if view.Players[0].TotalScore != 15 {
		t.Fatalf("restored total = %d, want stored 15", view.Players[0].TotalScore)
	}

	send(t, dev, protocol.MsgAudit, nil)
	var report engine.AuditReport
	if err := json.Unmarshal(readUntil(t, dev, protocol.MsgAuditReport).Payload, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.IsValid || len(report.Corrections) != 1 || report.Corrections[0].To != 10 {
		t.Fatalf("report = %+v", report)
	}

	send(t, dev, protocol.MsgApplyCorrections, protocol.ApplyCorrectionsMsg{Seq: 2})
	view = readState(t, dev, 2)
	if view.Players[0].TotalScore != 10 {
		t.Fatalf("corrected total = %d, want 10", view.Players[0].TotalScore)
	}
	if err := json.Unmarshal(readUntil(t, dev, protocol.MsgAuditReport).Payload, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.IsValid {
		t.Fatalf("report after corrections = %+v", report)
	}

	rec, err := env.store.Load(ctx, "saved")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Snapshot.Players[0].TotalScore != 10 {
		t.Fatalf("stored total = %d, want 10", rec.Snapshot.Players[0].TotalScore)
	}
}

func TestListTables(t *testing.T) {
	env := newTestEnv(t, 100)
	table := env.createTable(t)
	dev := env.dial(t, table, "device")
	seatTwo(t, dev)
	other := env.createTable(t)

	resp, err := http.Get(env.ts.URL + "/api/tables")
	if err != nil {
		t.Fatalf("GET tables: %v", err)
	}
	var tables []TableSummary
	err = json.NewDecoder(resp.Body).Decode(&tables)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode tables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("tables = %+v, want 2", tables)
	}
	byID := map[string]TableSummary{}
	for _, ts := range tables {
		byID[ts.ID] = ts
	}
	if got := byID[table]; !got.Started || got.Players != 2 {
		t.Fatalf("started table = %+v", got)
	}
	if got := byID[other]; got.Started || got.Players != 0 {
		t.Fatalf("new table = %+v", got)
	}
}

func TestHTTPErrors(t *testing.T) {
	env := newTestEnv(t, 100)

	tests := []struct {
		path string
		want int
	}{
		{"/api/tables/nope/snapshot", http.StatusNotFound},
		{"/api/qr", http.StatusBadRequest},
		{"/ws", http.StatusBadRequest},
		{"/ws?table=nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(env.ts.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Fatalf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}

	resp, err := http.Get(env.ts.URL + "/api/qr?table=abc")
	if err != nil {
		t.Fatalf("GET qr: %v", err)
	}
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type = %q", ct)
	}
}
