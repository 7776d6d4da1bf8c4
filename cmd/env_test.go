package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primeprop/primeprop/internal/model"
)

func TestProjectionMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.MethodSimple, projectionMethod("simple"))
	assert.Equal(t, model.MethodWeighted, projectionMethod("weighted"))
	// Anything unrecognized falls back to the weighted default.
	assert.Equal(t, model.MethodWeighted, projectionMethod(""))
	assert.Equal(t, model.MethodWeighted, projectionMethod("median"))
}

func TestFilterGames(t *testing.T) {
	t.Parallel()

	games := []model.Game{{ID: "game-1"}, {ID: "game-2"}}

	assert.Len(t, filterGames(games, "game-1"), 1)
	assert.Empty(t, filterGames(games, "game-9"))
}

func TestRadarPlayers(t *testing.T) {
	t.Parallel()

	snap := &model.MarketSnapshot{
		Lines: []model.PropLine{
			{Player: model.Player{ID: "b", DisplayName: "B Player"}, Stat: model.StatPoints},
			{Player: model.Player{ID: "a", DisplayName: "A Player"}, Stat: model.StatThrees},
			{Player: model.Player{ID: "b", DisplayName: "B Player"}, Stat: model.StatPoints},
			{Player: model.Player{ID: "b", DisplayName: "B Player"}, Stat: model.StatAssists},
		},
	}

	players := radarPlayers(snap)
	assert.Len(t, players, 2)
	assert.Equal(t, "A Player", players[0].Name)
	assert.Equal(t, []string{"Threes"}, players[0].Stats)
	assert.Equal(t, "B Player", players[1].Name)
	// Stats follow the canonical order, deduplicated.
	assert.Equal(t, []string{"Points", "Assists"}, players[1].Stats)
}
