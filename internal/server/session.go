package server

import "github.com/google/uuid"

// NewPlayerID creates a unique player ID.
func NewPlayerID() string {
	return uuid.NewString()
}

// NewConnectionID tags a WebSocket connection in logs.
func NewConnectionID() string {
	return uuid.NewString()[:8]
}
