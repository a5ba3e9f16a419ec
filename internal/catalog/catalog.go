// Package catalog holds the static game catalog: which party games
// exist and the player bounds the lobby validates against.
package catalog

import (
	"github.com/flirting-singles/party-service/internal/domain"
	"github.com/flirting-singles/party-service/internal/lobby"
)

type Catalog struct {
	order []string
	byID  map[string]domain.Game
}

// New builds a catalog from configured entries, falling back to the
// built-in party games when none are configured.
func New(games []domain.Game) *Catalog {
	if len(games) == 0 {
		games = Defaults()
	}
	c := &Catalog{byID: make(map[string]domain.Game, len(games))}
	for _, g := range games {
		if g.ID == "" {
			continue
		}
		if _, dup := c.byID[g.ID]; !dup {
			c.order = append(c.order, g.ID)
		}
		c.byID[g.ID] = g
	}
	return c
}

// Defaults are the four party games of the original application.
func Defaults() []domain.Game {
	return []domain.Game{
		{ID: "bingo", Name: "Flirty Bingo", MinPlayers: 2, MaxPlayers: 50},
		{ID: "karaoke", Name: "Karaoke Night", MinPlayers: 1, MaxPlayers: 30},
		{ID: "paranormal", Name: "Paranormal Investigation", MinPlayers: 2, MaxPlayers: 8},
		{ID: "dinner", Name: "Virtual Dinner Date", MinPlayers: 2, MaxPlayers: 2},
	}
}

// Get satisfies lobby.Catalog.
func (c *Catalog) Get(gameID string) (lobby.GameInfo, bool) {
	g, ok := c.byID[gameID]
	if !ok {
		return lobby.GameInfo{}, false
	}
	return lobby.GameInfo{ID: g.ID, MinPlayers: g.MinPlayers, MaxPlayers: g.MaxPlayers}, true
}

// List returns the games in configuration order.
func (c *Catalog) List() []domain.Game {
	out := make([]domain.Game, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
