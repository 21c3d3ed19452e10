// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"dutch/internal/engine"
	"dutch/internal/lobby"
)

// Config holds server settings.
type Config struct {
	Port       int    `env:"DUTCH_PORT" envDefault:"8080"`
	DBPath     string `env:"DUTCH_DB_PATH"` // empty keeps snapshots in memory
	ScoreLimit int    `env:"DUTCH_SCORE_LIMIT" envDefault:"100"`
	MinPlayers int    `env:"DUTCH_MIN_PLAYERS" envDefault:"2"`
	MaxPlayers int    `env:"DUTCH_MAX_PLAYERS" envDefault:"8"`
	MinScore   int    `env:"DUTCH_MIN_SCORE" envDefault:"0"`
	MaxScore   int    `env:"DUTCH_MAX_SCORE" envDefault:"500"`
	Debug      bool   `env:"DUTCH_DEBUG"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment, then parses it. Missing dotenv files are ignored;
// variables already set take precedence over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("DUTCH_PORT %d out of range", c.Port)
	}
	if c.ScoreLimit <= 0 {
		return fmt.Errorf("DUTCH_SCORE_LIMIT: %w", engine.ErrInvalidScoreLimit)
	}
	if c.MinPlayers < 1 {
		return fmt.Errorf("DUTCH_MIN_PLAYERS must be at least 1")
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("DUTCH_MAX_PLAYERS must be at least DUTCH_MIN_PLAYERS")
	}
	if c.MinScore < 0 {
		return fmt.Errorf("DUTCH_MIN_SCORE must not be negative")
	}
	if c.MaxScore < c.MinScore {
		return fmt.Errorf("DUTCH_MAX_SCORE must be at least DUTCH_MIN_SCORE")
	}
	return nil
}

// Engine returns the scoring rules for new games.
func (c Config) Engine() engine.Config {
	return engine.Config{
		ScoreLimit: c.ScoreLimit,
		MinScore:   c.MinScore,
		MaxScore:   c.MaxScore,
	}
}

// Lobby returns the table setup rules.
func (c Config) Lobby() lobby.Rules {
	return lobby.Rules{
		MinPlayers: c.MinPlayers,
		MaxPlayers: c.MaxPlayers,
		ScoreLimit: c.ScoreLimit,
	}
}
