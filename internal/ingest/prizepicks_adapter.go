package ingest

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/prizepicks"
)

// PrizePicksAdapter exposes a PrizePicks-style board as a provider adapter.
// The board is league-wide rather than per-game, so every game in the batch
// sees the same fetch; pick'em entries carry a line but no odds.
type PrizePicksAdapter struct {
	client   prizepicks.Client
	leagueID string
}

// NewPrizePicksAdapter wraps a PrizePicks client for one league board.
func NewPrizePicksAdapter(client prizepicks.Client, leagueID string) *PrizePicksAdapter {
	return &PrizePicksAdapter{client: client, leagueID: leagueID}
}

func (a *PrizePicksAdapter) Name() string { return "PrizePicks" }

func (a *PrizePicksAdapter) FetchRawProps(ctx context.Context, game model.Game) ([]RawProp, error) {
	projections, err := a.client.Projections(ctx, a.leagueID)
	if err != nil {
		return nil, eris.Wrapf(err, "prizepicks adapter: game %s", game.ID)
	}

	props := make([]RawProp, 0, len(projections))
	for _, p := range projections {
		props = append(props, RawProp{
			PlayerName: p.PlayerName,
			TeamHint:   p.Team,
			StatKey:    p.StatType,
			Line:       p.LineScore,
		})
	}
	return props, nil
}
