// Package ingest fans out across (provider, game) pairs, normalizes each
// provider's raw props into canonical prop lines, and assembles one market
// snapshot per game. A failed fetch costs that provider's lines for that
// game, nothing more.
package ingest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/resolve"
)

// FetchFailure records one (provider, game) fetch that produced no lines.
type FetchFailure struct {
	Provider string `json:"provider"`
	GameID   string `json:"game_id"`
	Err      string `json:"error"`
}

// SkippedLine records a raw prop dropped during normalization.
type SkippedLine struct {
	Provider   string  `json:"provider"`
	GameID     string  `json:"game_id"`
	PlayerName string  `json:"player_name"`
	StatKey    string  `json:"stat_key"`
	Line       float64 `json:"line_value"`
	Reason     string  `json:"reason"`
}

// Report aggregates everything that went wrong during one ingestion cycle
// without aborting it.
type Report struct {
	Failures []FetchFailure `json:"failures,omitempty"`
	Skipped  []SkippedLine  `json:"skipped,omitempty"`
}

// Ingestor orchestrates provider fetches and owns normalization. The actual
// HTTP work happens inside the adapters.
type Ingestor struct {
	registry     *resolve.Registry
	fetchTimeout time.Duration
	now          func() time.Time // injectable for testing
}

// New creates an ingestor resolving player identities through registry.
// fetchTimeout bounds each (provider, game) fetch; exceeding it is a
// recorded failure for that pair, not a run abort.
func New(registry *resolve.Registry, fetchTimeout time.Duration) *Ingestor {
	return &Ingestor{
		registry:     registry,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (in *Ingestor) WithNow(now func() time.Time) *Ingestor {
	in.now = now
	return in
}

// Ingest fetches props for every (adapter, game) pair concurrently and
// returns one snapshot per game plus the failure report. Only a total
// absence of games or adapters is a run-level error.
func (in *Ingestor) Ingest(ctx context.Context, games []model.Game, adapters []ProviderAdapter) (map[string]*model.MarketSnapshot, *Report, error) {
	if len(games) == 0 {
		return nil, nil, eris.New("ingest: no games to ingest")
	}
	if len(adapters) == 0 {
		return nil, nil, eris.New("ingest: no provider adapters configured")
	}

	type fetchResult struct {
		gameID   string
		provider string
		props    []RawProp
	}

	var (
		mu       sync.Mutex
		results  []fetchResult
		failures []FetchFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, game := range games {
		game := game
		for _, adapter := range adapters {
			adapter := adapter
			g.Go(func() error {
				fctx := gctx
				if in.fetchTimeout > 0 {
					var cancel context.CancelFunc
					fctx, cancel = context.WithTimeout(gctx, in.fetchTimeout)
					defer cancel()
				}

				props, err := adapter.FetchRawProps(fctx, game)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					// Partial failure: report it, keep the batch going.
					failures = append(failures, FetchFailure{
						Provider: adapter.Name(),
						GameID:   game.ID,
						Err:      err.Error(),
					})
					zap.L().Warn("ingest: provider fetch failed",
						zap.String("provider", adapter.Name()),
						zap.String("game", game.ID),
						zap.Error(err),
					)
					return nil
				}
				results = append(results, fetchResult{
					gameID:   game.ID,
					provider: adapter.Name(),
					props:    props,
				})
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "ingest: fetch group")
	}

	report := &Report{Failures: failures}
	fetchedAt := in.now().UTC()

	snapshots := make(map[string]*model.MarketSnapshot, len(games))
	for _, game := range games {
		snapshots[game.ID] = &model.MarketSnapshot{
			ID:        uuid.New().String(),
			Game:      game,
			FetchedAt: fetchedAt,
		}
	}

	for _, res := range results {
		snap := snapshots[res.gameID]
		for _, raw := range res.props {
			line, skip := in.normalize(raw, res.provider, res.gameID, fetchedAt)
			if skip != nil {
				report.Skipped = append(report.Skipped, *skip)
				continue
			}
			snap.Lines = append(snap.Lines, line)
		}
	}

	// Concurrent fetches complete in arbitrary order; sort each snapshot so
	// identical inputs always produce identical snapshots.
	for _, snap := range snapshots {
		sortLines(snap.Lines)
	}
	sortSkips(report.Skipped)
	sortFailures(report.Failures)

	return snapshots, report, nil
}

// normalize converts one raw prop into a canonical prop line, or explains
// why it cannot.
func (in *Ingestor) normalize(raw RawProp, provider, gameID string, fetchedAt time.Time) (model.PropLine, *SkippedLine) {
	skipped := func(reason string) *SkippedLine {
		return &SkippedLine{
			Provider:   provider,
			GameID:     gameID,
			PlayerName: raw.PlayerName,
			StatKey:    raw.StatKey,
			Line:       raw.Line,
			Reason:     reason,
		}
	}

	if strings.TrimSpace(raw.PlayerName) == "" {
		return model.PropLine{}, skipped("missing player name")
	}
	stat, ok := NormalizeStatKey(raw.StatKey)
	if !ok {
		return model.PropLine{}, skipped("unknown stat key")
	}
	if raw.Line <= 0 {
		return model.PropLine{}, skipped("non-positive line value")
	}

	if raw.Provider != "" {
		provider = raw.Provider
	}
	player := in.registry.Resolve(raw.PlayerName, raw.TeamHint)
	return model.PropLine{
		Player:     player,
		Stat:       stat,
		Line:       raw.Line,
		OverPrice:  raw.OverPrice,
		UnderPrice: raw.UnderPrice,
		Provider:   provider,
		GameID:     gameID,
		FetchedAt:  fetchedAt,
	}, nil
}

func sortLines(lines []model.PropLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.Player.ID != b.Player.ID {
			return a.Player.ID < b.Player.ID
		}
		if a.Stat != b.Stat {
			return a.Stat < b.Stat
		}
		return a.Line < b.Line
	})
}

func sortSkips(skips []SkippedLine) {
	sort.SliceStable(skips, func(i, j int) bool {
		a, b := skips[i], skips[j]
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		return a.PlayerName < b.PlayerName
	})
}

func sortFailures(failures []FetchFailure) {
	sort.SliceStable(failures, func(i, j int) bool {
		a, b := failures[i], failures[j]
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		return a.Provider < b.Provider
	})
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
