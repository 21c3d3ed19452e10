package main

import (
	"embed"
	"flag"
	"io/fs"
	"log"

	"dutch/internal/config"
	"dutch/internal/server"
	"dutch/internal/store"
	"dutch/internal/store/sqlite"
)

//go:embed web/static
var static embed.FS

func main() {
	port := flag.Int("port", 0, "server port (overrides DUTCH_PORT)")
	envFile := flag.String("env", ".env", "dotenv file to load")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	var st store.Store = store.NewMemoryStore()
	if cfg.DBPath != "" {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("storage error: %v", err)
		}
		st = db
		log.Printf("Snapshots stored in %s", cfg.DBPath)
	}
	defer st.Close()

	sub, err := fs.Sub(static, "web/static")
	if err != nil {
		log.Fatalf("static fs: %v", err)
	}

	srv := server.New(cfg, st, sub)
	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
