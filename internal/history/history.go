// Package history supplies per-(player, stat) game-log series to the
// projection engine. Series are always ordered most-recent-first.
package history

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/balldontlie"
)

// Source yields up to n most recent stat values for a player, newest first.
// An empty (non-nil-error) result means the source knows the player but has
// no usable games; the projection engine turns that into InsufficientHistory.
type Source interface {
	Values(ctx context.Context, player model.Player, stat model.StatType, n int) ([]float64, error)
}

// BalldontlieSource backs Source with the balldontlie stats API. PRA is
// computed as pts+reb+ast; Threes comes from fg3m.
type BalldontlieSource struct {
	client balldontlie.Client
}

// NewBalldontlieSource wraps a balldontlie client.
func NewBalldontlieSource(client balldontlie.Client) *BalldontlieSource {
	return &BalldontlieSource{client: client}
}

func (s *BalldontlieSource) Values(ctx context.Context, player model.Player, stat model.StatType, n int) ([]float64, error) {
	ref, err := s.client.SearchPlayer(ctx, player.DisplayName)
	if err != nil {
		return nil, eris.Wrapf(err, "history: search %s", player.DisplayName)
	}
	if ref == nil {
		return nil, nil
	}

	stats, err := s.client.RecentStats(ctx, ref.ID, n)
	if err != nil {
		return nil, eris.Wrapf(err, "history: stats %s", player.DisplayName)
	}

	values := make([]float64, 0, len(stats))
	for _, g := range stats {
		values = append(values, statValue(g, stat))
	}
	return values, nil
}

func statValue(g balldontlie.GameStat, stat model.StatType) float64 {
	switch stat {
	case model.StatPoints:
		return g.Pts
	case model.StatRebounds:
		return g.Reb
	case model.StatAssists:
		return g.Ast
	case model.StatPRA:
		return g.Pts + g.Reb + g.Ast
	case model.StatThrees:
		return g.Fg3m
	}
	return 0
}
