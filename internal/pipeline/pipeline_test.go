package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeprop/primeprop/internal/alert"
	"github.com/primeprop/primeprop/internal/ingest"
	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/resolve"
	"github.com/primeprop/primeprop/internal/store"
)

// stubAdapter serves canned props for every game.
type stubAdapter struct {
	name  string
	props []ingest.RawProp
	err   error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) FetchRawProps(ctx context.Context, game model.Game) ([]ingest.RawProp, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.props, nil
}

// mapSource serves history values keyed by "playerID|stat".
type mapSource struct {
	values map[string][]float64
	errs   map[string]error
}

func (m *mapSource) Values(ctx context.Context, player model.Player, stat model.StatType, n int) ([]float64, error) {
	key := fmt.Sprintf("%s|%s", player.ID, stat)
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	return m.values[key], nil
}

// sink captures alert deliveries.
type sink struct {
	messages []string
}

func (s *sink) Name() string { return "sink" }

func (s *sink) Send(ctx context.Context, text string) error {
	s.messages = append(s.messages, text)
	return nil
}

// memStore records logged picks in memory.
type memStore struct {
	picks []store.Pick
	err   error
}

func (m *memStore) LogPick(ctx context.Context, pick store.Pick) (*store.Pick, error) {
	if m.err != nil {
		return nil, m.err
	}
	pick.ID = fmt.Sprintf("pick-%d", len(m.picks)+1)
	m.picks = append(m.picks, pick)
	return &pick, nil
}

func (m *memStore) GradePick(ctx context.Context, id string, actual float64, won bool) error {
	return nil
}

func (m *memStore) ListPicks(ctx context.Context, filter store.PickFilter) ([]store.Pick, error) {
	return m.picks, nil
}

func (m *memStore) WinRate(ctx context.Context) (store.WinRate, error) { return store.WinRate{}, nil }
func (m *memStore) Migrate(ctx context.Context) error                  { return nil }
func (m *memStore) Close() error                                       { return nil }

var testGames = []model.Game{
	{ID: "game-1", HomeTeam: "GSW", AwayTeam: "DEN", StartTime: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)},
}

func testOptions() Options {
	return Options{WindowN: 10, Method: model.MethodSimple, EdgeThreshold: 0.05}
}

func newTestPipeline(adapters []ingest.ProviderAdapter, hist *mapSource, alerter *alert.Alerter, st store.Store) *Pipeline {
	registry := resolve.NewRegistry(0.8)
	ingestor := ingest.New(registry, 5*time.Second)
	return New(testOptions(), registry, ingestor, adapters, hist, alerter, st)
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	adapter := &stubAdapter{
		name: "BookA",
		props: []ingest.RawProp{
			{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5},
			{PlayerName: "Nikola Jokic", StatKey: "player_rebounds", Line: 12.5},
		},
	}
	hist := &mapSource{values: map[string][]float64{
		"stephen-curry|Points":  {30, 25, 20}, // avg 25.0 vs 22.5 -> edge ~ +0.111
		"nikola-jokic|Rebounds": {12, 13, 12.5},
	}}
	notifier := &sink{}
	st := &memStore{}

	p := newTestPipeline([]ingest.ProviderAdapter{adapter}, hist, alert.New(0.05, notifier), st)
	result, err := p.Run(context.Background(), testGames)
	require.NoError(t, err)

	require.Len(t, result.Edges, 2)

	top := result.Edges[0]
	assert.Equal(t, "stephen-curry", top.Player.ID)
	assert.InDelta(t, (25.0-22.5)/22.5, top.Edge, 0.0001)
	assert.Equal(t, model.SideOver, top.Side)

	// Only the Curry edge clears the alert threshold.
	require.Len(t, result.Alerted, 1)
	assert.Equal(t, "stephen-curry", result.Alerted[0].Player.ID)
	assert.Len(t, notifier.messages, 1)

	// Alerted picks are persisted.
	assert.Equal(t, 1, result.Logged)
	require.Len(t, st.picks, 1)
	assert.Equal(t, "stephen-curry", st.picks[0].PlayerID)

	assert.Empty(t, result.Report.FetchFailures)
	assert.Empty(t, result.Report.ProjectionGaps)
}

func TestRun_ProviderFailureIsPartial(t *testing.T) {
	t.Parallel()

	healthy := &stubAdapter{
		name:  "BookA",
		props: []ingest.RawProp{{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5}},
	}
	broken := &stubAdapter{name: "BookB", err: eris.New("upstream 503")}
	hist := &mapSource{values: map[string][]float64{
		"stephen-curry|Points": {30, 25, 20},
	}}

	p := newTestPipeline([]ingest.ProviderAdapter{healthy, broken}, hist, nil, nil)
	result, err := p.Run(context.Background(), testGames)
	require.NoError(t, err)

	require.Len(t, result.Edges, 1)
	require.Len(t, result.Report.FetchFailures, 1)
	assert.Equal(t, "BookB", result.Report.FetchFailures[0].Provider)
}

func TestRun_HistoryGapsAreCollected(t *testing.T) {
	t.Parallel()

	adapter := &stubAdapter{
		name: "BookA",
		props: []ingest.RawProp{
			{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5},
			{PlayerName: "Rookie Unknown", StatKey: "player_points", Line: 10.5},
			{PlayerName: "Nikola Jokic", StatKey: "player_rebounds", Line: 12.5},
		},
	}
	hist := &mapSource{
		values: map[string][]float64{
			"stephen-curry|Points": {30, 25, 20},
			// Rookie has no games: empty series -> insufficient history.
		},
		errs: map[string]error{
			"nikola-jokic|Rebounds": eris.New("stats API down"),
		},
	}

	p := newTestPipeline([]ingest.ProviderAdapter{adapter}, hist, nil, nil)
	result, err := p.Run(context.Background(), testGames)
	require.NoError(t, err)

	// The projectable line still produces an edge.
	require.Len(t, result.Edges, 1)
	assert.Equal(t, "stephen-curry", result.Edges[0].Player.ID)

	// Both failure modes show up as gaps, and the unprojectable lines as
	// optimizer skips.
	assert.Len(t, result.Report.ProjectionGaps, 2)
	assert.Len(t, result.Report.OptimizerSkips, 2)
}

func TestRun_NilStoreAndAlerter(t *testing.T) {
	t.Parallel()

	adapter := &stubAdapter{
		name:  "BookA",
		props: []ingest.RawProp{{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5}},
	}
	hist := &mapSource{values: map[string][]float64{
		"stephen-curry|Points": {30, 25, 20},
	}}

	p := newTestPipeline([]ingest.ProviderAdapter{adapter}, hist, nil, nil)
	result, err := p.Run(context.Background(), testGames)
	require.NoError(t, err)

	assert.Len(t, result.Edges, 1)
	assert.Empty(t, result.Alerted)
	assert.Zero(t, result.Logged)
}

func TestRun_StoreFailureCostsOnlyThePick(t *testing.T) {
	t.Parallel()

	adapter := &stubAdapter{
		name:  "BookA",
		props: []ingest.RawProp{{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5}},
	}
	hist := &mapSource{values: map[string][]float64{
		"stephen-curry|Points": {30, 25, 20},
	}}
	st := &memStore{err: eris.New("disk full")}

	p := newTestPipeline([]ingest.ProviderAdapter{adapter}, hist, alert.New(0.05), st)
	result, err := p.Run(context.Background(), testGames)
	require.NoError(t, err)

	require.Len(t, result.Alerted, 1)
	assert.Zero(t, result.Logged)
}

func TestRun_NoGames(t *testing.T) {
	t.Parallel()

	p := newTestPipeline([]ingest.ProviderAdapter{&stubAdapter{name: "BookA"}}, &mapSource{}, nil, nil)
	_, err := p.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRun_CrossGameOrderingIsDeterministic(t *testing.T) {
	t.Parallel()

	games := []model.Game{
		{ID: "game-2", HomeTeam: "BOS", AwayTeam: "MIA"},
		{ID: "game-1", HomeTeam: "GSW", AwayTeam: "DEN"},
	}
	adapter := &stubAdapter{
		name:  "BookA",
		props: []ingest.RawProp{{PlayerName: "Stephen Curry", StatKey: "player_points", Line: 22.5}},
	}
	hist := &mapSource{values: map[string][]float64{
		"stephen-curry|Points": {30, 25, 20},
	}}

	p := newTestPipeline([]ingest.ProviderAdapter{adapter}, hist, nil, nil)
	result, err := p.Run(context.Background(), games)
	require.NoError(t, err)

	// Same |edge| in both games: game ID is the final tie-break.
	require.Len(t, result.Edges, 2)
	assert.Equal(t, "game-1", result.Edges[0].GameID)
	assert.Equal(t, "game-2", result.Edges[1].GameID)
}
