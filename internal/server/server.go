package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"

	"dutch/internal/config"
	"dutch/internal/store"
)

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	handlers *Handlers
	cfg      config.Config
	static   fs.FS
}

// New creates a server. static holds the web assets at its root.
func New(cfg config.Config, st store.Store, static fs.FS) *Server {
	return &Server{
		handlers: NewHandlers(cfg.Engine(), cfg.Lobby(), st),
		cfg:      cfg,
		static:   static,
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/", http.FileServer(http.FS(s.static)))

	// API routes
	mux.HandleFunc("/api/create", s.handlers.HandleCreateTable)
	mux.HandleFunc("/api/qr", s.handlers.HandleQR)
	mux.HandleFunc("/api/player-id", s.handlers.HandlePlayerID)
	mux.HandleFunc("GET /api/tables", s.handlers.HandleListTables)
	mux.HandleFunc("GET /api/tables/{id}/snapshot", s.handlers.HandleSnapshot)
	mux.HandleFunc("/ws", s.handlers.HandleWS)

	if s.cfg.Debug {
		return logRequests(mux)
	}
	return mux
}

func (s *Server) Start() error {
	n, err := s.handlers.RestoreTables(context.Background())
	if err != nil {
		return fmt.Errorf("restore tables: %w", err)
	}
	if n > 0 {
		log.Printf("Restored %d table(s) from storage", n)
	}
	defer s.handlers.Close()

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Printf("Dutch scorekeeper starting on http://localhost%s", addr)
	log.Printf("Open http://localhost%s/api/create to open a new table", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
