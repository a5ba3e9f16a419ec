package domain

// Game is a catalog entry for one of the party games. Player bounds
// are validated when the host selects the game, the room cap is a
// separate concern.
type Game struct {
	ID         string
	Name       string
	MinPlayers int
	MaxPlayers int
}

func (g Game) FitsPlayerCount(n int) bool {
	if n < g.MinPlayers {
		return false
	}
	if g.MaxPlayers > 0 && n > g.MaxPlayers {
		return false
	}
	return true
}
