package engine

// IsGameOver reports whether any cached total has reached limit.
func IsGameOver(players []Player, limit int) bool {
	for _, p := range players {
		if p.TotalScore >= limit {
			return true
		}
	}
	return false
}
