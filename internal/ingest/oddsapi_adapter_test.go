package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/oddsapi"
)

func ptr(f float64) *float64 { return &f }

func TestFlattenMarket(t *testing.T) {
	t.Parallel()

	market := oddsapi.Market{
		Key: "player_points",
		Outcomes: []oddsapi.Outcome{
			{Name: "Over", Description: "Stephen Curry", Price: -115, Point: ptr(27.5)},
			{Name: "Under", Description: "Stephen Curry", Price: -105, Point: ptr(27.5)},
			{Name: "Over", Description: "Nikola Jokić", Price: -110, Point: ptr(26.5)},
			// Alternate line for the same player stays a separate prop.
			{Name: "Over", Description: "Stephen Curry", Price: 130, Point: ptr(29.5)},
			// No point value: not a quotable line.
			{Name: "Over", Description: "Draymond Green", Price: -120},
		},
	}

	props := flattenMarket(market, "DraftKings")
	require.Len(t, props, 3)

	curry := props[0]
	assert.Equal(t, "Stephen Curry", curry.PlayerName)
	assert.Equal(t, "player_points", curry.StatKey)
	assert.Equal(t, 27.5, curry.Line)
	require.NotNil(t, curry.OverPrice)
	require.NotNil(t, curry.UnderPrice)
	assert.Equal(t, -115.0, *curry.OverPrice)
	assert.Equal(t, -105.0, *curry.UnderPrice)
	assert.Equal(t, "DraftKings", curry.Provider)

	jokic := props[1]
	assert.Equal(t, "Nikola Jokić", jokic.PlayerName)
	require.NotNil(t, jokic.OverPrice)
	assert.Nil(t, jokic.UnderPrice)

	alt := props[2]
	assert.Equal(t, "Stephen Curry", alt.PlayerName)
	assert.Equal(t, 29.5, alt.Line)
	assert.Nil(t, alt.UnderPrice)
}

// stubOddsClient serves one canned event-odds payload.
type stubOddsClient struct {
	odds *oddsapi.EventOdds
	err  error
}

func (s *stubOddsClient) Events(ctx context.Context) ([]oddsapi.Event, error) { return nil, nil }

func (s *stubOddsClient) EventOdds(ctx context.Context, eventID string, regions, markets []string) (*oddsapi.EventOdds, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.odds, nil
}

func (s *stubOddsClient) RequestsRemaining() int { return -1 }

func TestOddsAPIAdapter_BookmakerBecomesProvider(t *testing.T) {
	t.Parallel()

	client := &stubOddsClient{
		odds: &oddsapi.EventOdds{
			ID: "game-1",
			Bookmakers: []oddsapi.Bookmaker{
				{
					Title: "DraftKings",
					Markets: []oddsapi.Market{{
						Key: "player_points",
						Outcomes: []oddsapi.Outcome{
							{Name: "Over", Description: "Stephen Curry", Price: -115, Point: ptr(27.5)},
						},
					}},
				},
				{
					Title: "FanDuel",
					Markets: []oddsapi.Market{{
						Key: "player_points",
						Outcomes: []oddsapi.Outcome{
							{Name: "Over", Description: "Stephen Curry", Price: -110, Point: ptr(28.5)},
						},
					}},
				},
			},
		},
	}

	adapter := NewOddsAPIAdapter(client, []string{"us"}, []string{"player_points"})
	props, err := adapter.FetchRawProps(context.Background(), model.Game{ID: "game-1"})
	require.NoError(t, err)

	require.Len(t, props, 2)
	assert.Equal(t, "DraftKings", props[0].Provider)
	assert.Equal(t, 27.5, props[0].Line)
	assert.Equal(t, "FanDuel", props[1].Provider)
	assert.Equal(t, 28.5, props[1].Line)
}
