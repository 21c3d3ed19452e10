package engine

// Config holds the rules for a scoring session.
type Config struct {
	ScoreLimit int // game ends once any total reaches this
	MinScore   int // lowest accepted round score (inclusive)
	MaxScore   int // highest accepted round score (inclusive)
}

func DefaultConfig() Config {
	return Config{
		ScoreLimit: 100,
		MinScore:   0,
		MaxScore:   500,
	}
}

func (c Config) validate() error {
	if c.ScoreLimit <= 0 {
		return ErrInvalidScoreLimit
	}
	return nil
}
