package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/resilience"
)

func noRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1}
}

func TestEvents(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/sports/basketball_nba/events", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Header().Set("X-Requests-Remaining", "487")
		w.Write([]byte(`[
			{"id": "evt-1", "sport_key": "basketball_nba", "commence_time": "2026-03-01T19:00:00Z", "home_team": "Golden State Warriors", "away_team": "Denver Nuggets"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithRetry(noRetry()))
	assert.Equal(t, -1, c.RequestsRemaining())

	events, err := c.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "Golden State Warriors", events[0].HomeTeam)
	assert.Equal(t, 487, c.RequestsRemaining())
}

func TestEventOdds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/sports/basketball_nba/events/evt-1/odds", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("regions"))
		assert.Equal(t, "player_points,player_assists", r.URL.Query().Get("markets"))
		assert.Equal(t, "american", r.URL.Query().Get("oddsFormat"))
		w.Write([]byte(`{
			"id": "evt-1",
			"bookmakers": [{
				"key": "draftkings",
				"title": "DraftKings",
				"markets": [{
					"key": "player_points",
					"outcomes": [
						{"name": "Over", "description": "Stephen Curry", "price": -115, "point": 27.5},
						{"name": "Under", "description": "Stephen Curry", "price": -105, "point": 27.5}
					]
				}]
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithRetry(noRetry()))
	odds, err := c.EventOdds(context.Background(), "evt-1", []string{"us"}, []string{"player_points", "player_assists"})
	require.NoError(t, err)

	require.Len(t, odds.Bookmakers, 1)
	assert.Equal(t, "DraftKings", odds.Bookmakers[0].Title)
	outcomes := odds.Bookmakers[0].Markets[0].Outcomes
	require.Len(t, outcomes, 2)
	require.NotNil(t, outcomes[0].Point)
	assert.Equal(t, 27.5, *outcomes[0].Point)
}

func TestGetJSON_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1}
	c := NewClient("secret", WithBaseURL(srv.URL), WithRetry(cfg))

	_, err := c.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_PermanentStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL), WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: 1}))

	_, err := c.Events(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}
