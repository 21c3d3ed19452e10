package server

import (
	"testing"

	"dutch/internal/engine"
	"dutch/internal/lobby"
	"dutch/internal/protocol"
	"dutch/internal/store"
)

func newStartedHub(t *testing.T) *Hub {
	t.Helper()
	lob := lobby.NewLobby("t1", lobby.Rules{MinPlayers: 2, MaxPlayers: 4, ScoreLimit: 100})
	hub := NewHub("t1", lob, engine.DefaultConfig(), store.NewMemoryStore())
	g, err := engine.NewGame([]engine.Seat{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Bo"}}, engine.DefaultConfig(), hub.now())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	hub.game = &g
	return hub
}

func TestMessageFromUnregisteredClientIsDropped(t *testing.T) {
	hub := newStartedHub(t)
	client := &Client{hub: hub, send: make(chan []byte, 4), ID: "c1", Type: ClientDevice}
	hub.clients[client] = true

	// what the unregister case does when the connection drops
	delete(hub.clients, client)
	close(client.send)

	for _, typ := range []string{protocol.MsgAudit, protocol.MsgUndo, protocol.MsgSubmitRound} {
		hub.handleMessage(IncomingMessage{Client: client, Envelope: protocol.MustEnvelope(typ, nil)})
	}
	if hub.game.Ledger.Len() != 0 {
		t.Fatalf("ledger has %d rounds, want 0", hub.game.Ledger.Len())
	}
}

func TestMessageFromRegisteredClientIsAnswered(t *testing.T) {
	hub := newStartedHub(t)
	client := &Client{hub: hub, send: make(chan []byte, 4), ID: "c1", Type: ClientDevice}
	hub.clients[client] = true

	hub.handleMessage(IncomingMessage{Client: client, Envelope: protocol.MustEnvelope(protocol.MsgAudit, nil)})
	select {
	case data := <-client.send:
		if len(data) == 0 {
			t.Fatal("empty audit reply")
		}
	default:
		t.Fatal("expected an audit report for a registered client")
	}
}
