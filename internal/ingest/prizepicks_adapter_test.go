package ingest

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/prizepicks"
)

// stubPrizePicks serves a canned projection board.
type stubPrizePicks struct {
	projections []prizepicks.Projection
	err         error
}

func (s *stubPrizePicks) Projections(ctx context.Context, leagueID string) ([]prizepicks.Projection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projections, nil
}

func TestPrizePicksAdapter(t *testing.T) {
	t.Parallel()

	client := &stubPrizePicks{
		projections: []prizepicks.Projection{
			{PlayerName: "Stephen Curry", Team: "GSW", StatType: "Points", LineScore: 27.5},
			{PlayerName: "Nikola Jokić", Team: "DEN", StatType: "PRA", LineScore: 52.5},
		},
	}

	adapter := NewPrizePicksAdapter(client, "7")
	props, err := adapter.FetchRawProps(context.Background(), model.Game{ID: "game-1"})
	require.NoError(t, err)

	require.Len(t, props, 2)
	assert.Equal(t, "Stephen Curry", props[0].PlayerName)
	assert.Equal(t, "GSW", props[0].TeamHint)
	assert.Equal(t, "Points", props[0].StatKey)
	assert.Equal(t, 27.5, props[0].Line)
	// Pick'em boards carry a line but no odds.
	assert.Nil(t, props[0].OverPrice)
	assert.Nil(t, props[0].UnderPrice)
}

func TestPrizePicksAdapter_FetchError(t *testing.T) {
	t.Parallel()

	adapter := NewPrizePicksAdapter(&stubPrizePicks{err: eris.New("rate limited")}, "7")
	_, err := adapter.FetchRawProps(context.Background(), model.Game{ID: "game-1"})
	assert.Error(t, err)
}
