package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.ScoreLimit != 100 || cfg.MinPlayers != 2 || cfg.MaxPlayers != 8 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.MinScore != 0 || cfg.MaxScore != 500 || cfg.DBPath != "" || cfg.Debug {
		t.Fatalf("defaults = %+v", cfg)
	}
	if got := cfg.Engine(); got.ScoreLimit != 100 || got.MaxScore != 500 {
		t.Fatalf("engine config = %+v", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DUTCH_PORT", "9090")
	t.Setenv("DUTCH_SCORE_LIMIT", "150")
	t.Setenv("DUTCH_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.ScoreLimit != 150 || !cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Lobby().ScoreLimit != 150 {
		t.Fatalf("lobby rules = %+v", cfg.Lobby())
	}
}

func TestLoadFromDotenv(t *testing.T) {
	// registered so t.Setenv restores the variable godotenv sets
	t.Setenv("DUTCH_DB_PATH", "")
	os.Unsetenv("DUTCH_DB_PATH")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DUTCH_DB_PATH=/tmp/dutch.db\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/dutch.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"not a number", "DUTCH_SCORE_LIMIT", "lots", "parse env:"},
		{"zero limit", "DUTCH_SCORE_LIMIT", "0", "DUTCH_SCORE_LIMIT"},
		{"bad port", "DUTCH_PORT", "70000", "DUTCH_PORT"},
		{"inverted players", "DUTCH_MAX_PLAYERS", "1", "DUTCH_MAX_PLAYERS"},
		{"inverted scores", "DUTCH_MAX_SCORE", "-1", "DUTCH_MAX_SCORE"},
		{"negative min score", "DUTCH_MIN_SCORE", "-5", "DUTCH_MIN_SCORE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
