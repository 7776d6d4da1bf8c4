package history

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/balldontlie"
)

var curry = model.Player{ID: "stephen-curry", DisplayName: "Stephen Curry"}

// stubStats fakes the balldontlie client with canned data.
type stubStats struct {
	ref      *balldontlie.PlayerRef
	stats    []balldontlie.GameStat
	searches int
	fetches  int
	err      error
}

func (s *stubStats) SearchPlayer(ctx context.Context, name string) (*balldontlie.PlayerRef, error) {
	s.searches++
	if s.err != nil {
		return nil, s.err
	}
	return s.ref, nil
}

func (s *stubStats) RecentStats(ctx context.Context, playerID, n int) ([]balldontlie.GameStat, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func gameStats() []balldontlie.GameStat {
	base := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	return []balldontlie.GameStat{
		{GameID: 3, GameDate: base.AddDate(0, 0, 4), Pts: 30, Reb: 5, Ast: 8, Fg3m: 6},
		{GameID: 2, GameDate: base.AddDate(0, 0, 2), Pts: 25, Reb: 4, Ast: 6, Fg3m: 4},
		{GameID: 1, GameDate: base, Pts: 20, Reb: 6, Ast: 7, Fg3m: 3},
	}
}

func TestBalldontlieSource_StatSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stat model.StatType
		want []float64
	}{
		{model.StatPoints, []float64{30, 25, 20}},
		{model.StatRebounds, []float64{5, 4, 6}},
		{model.StatAssists, []float64{8, 6, 7}},
		{model.StatPRA, []float64{43, 35, 33}},
		{model.StatThrees, []float64{6, 4, 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.stat), func(t *testing.T) {
			t.Parallel()
			src := NewBalldontlieSource(&stubStats{
				ref:   &balldontlie.PlayerRef{ID: 115, FirstName: "Stephen", LastName: "Curry"},
				stats: gameStats(),
			})
			values, err := src.Values(context.Background(), curry, tt.stat, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestBalldontlieSource_UnknownPlayer(t *testing.T) {
	t.Parallel()

	src := NewBalldontlieSource(&stubStats{ref: nil})
	values, err := src.Values(context.Background(), curry, model.StatPoints, 10)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestBalldontlieSource_UpstreamError(t *testing.T) {
	t.Parallel()

	src := NewBalldontlieSource(&stubStats{err: eris.New("quota exceeded")})
	_, err := src.Values(context.Background(), curry, model.StatPoints, 10)
	assert.Error(t, err)
}
