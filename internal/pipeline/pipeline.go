// Package pipeline sequences one full run: ingest market snapshots, project
// every quoted (player, stat) pair from history, rank the edges, then hand
// high-value props to the alerting and persistence collaborators. Failures
// stay local to their (provider, game, player, stat) unit; the run always
// produces a ranked list plus a report of what it had to skip.
package pipeline

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/primeprop/primeprop/internal/alert"
	"github.com/primeprop/primeprop/internal/history"
	"github.com/primeprop/primeprop/internal/ingest"
	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/optimize"
	"github.com/primeprop/primeprop/internal/projection"
	"github.com/primeprop/primeprop/internal/resolve"
	"github.com/primeprop/primeprop/internal/store"
)

// Options holds the projection and ranking parameters for one run.
type Options struct {
	WindowN       int
	Method        model.ProjectionMethod
	EdgeThreshold float64
}

// ProjectionGap records a (player, stat) pair that could not be projected.
type ProjectionGap struct {
	PlayerID string         `json:"player_id"`
	Stat     model.StatType `json:"stat_type"`
	Reason   string         `json:"reason"`
}

// Report aggregates every recovered failure from one run.
type Report struct {
	FetchFailures  []ingest.FetchFailure `json:"fetch_failures,omitempty"`
	SkippedLines   []ingest.SkippedLine  `json:"skipped_lines,omitempty"`
	OptimizerSkips []optimize.Skip       `json:"optimizer_skips,omitempty"`
	ProjectionGaps []ProjectionGap       `json:"projection_gaps,omitempty"`
	Ambiguities    []resolve.Ambiguity   `json:"ambiguities,omitempty"`
}

// Result is the output of one pipeline run.
type Result struct {
	Edges     []model.PropEdge                 `json:"edges"`
	Snapshots map[string]*model.MarketSnapshot `json:"snapshots"`
	Report    Report                           `json:"report"`
	Alerted   []model.PropEdge                 `json:"alerted,omitempty"`
	Logged    int                              `json:"logged"`
}

// Pipeline wires the core stages with their external collaborators. Store
// and alerter are optional; nil disables that boundary.
type Pipeline struct {
	opts     Options
	registry *resolve.Registry
	ingestor *ingest.Ingestor
	adapters []ingest.ProviderAdapter
	history  history.Source
	alerter  *alert.Alerter
	store    store.Store
}

// New assembles a pipeline.
func New(opts Options, registry *resolve.Registry, ingestor *ingest.Ingestor, adapters []ingest.ProviderAdapter, hist history.Source, alerter *alert.Alerter, st store.Store) *Pipeline {
	return &Pipeline{
		opts:     opts,
		registry: registry,
		ingestor: ingestor,
		adapters: adapters,
		history:  hist,
		alerter:  alerter,
		store:    st,
	}
}

// Run executes one full cycle over the given games.
func (p *Pipeline) Run(ctx context.Context, games []model.Game) (*Result, error) {
	snapshots, ingestReport, err := p.ingestor.Ingest(ctx, games, p.adapters)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: ingest")
	}

	projections, gaps := p.projectAll(ctx, snapshots)

	var edges []model.PropEdge
	var optSkips []optimize.Skip
	for _, gameID := range sortedKeys(snapshots) {
		gameEdges, skips := optimize.Optimize(snapshots[gameID], projections, p.opts.EdgeThreshold)
		edges = append(edges, gameEdges...)
		optSkips = append(optSkips, skips...)
	}
	sortEdges(edges)

	result := &Result{
		Edges:     edges,
		Snapshots: snapshots,
		Report: Report{
			FetchFailures:  ingestReport.Failures,
			SkippedLines:   ingestReport.Skipped,
			OptimizerSkips: optSkips,
			ProjectionGaps: gaps,
			Ambiguities:    p.registry.Ambiguities(),
		},
	}

	if p.alerter != nil {
		result.Alerted = p.alerter.AlertHighValue(ctx, edges)
	}
	if p.store != nil {
		result.Logged = p.logPicks(ctx, result.Alerted)
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("games", len(games)),
		zap.Int("edges", len(edges)),
		zap.Int("alerted", len(result.Alerted)),
		zap.Int("fetch_failures", len(result.Report.FetchFailures)),
		zap.Int("projection_gaps", len(gaps)),
	)
	return result, nil
}

// projectAll computes one projection per distinct (player, stat) pair quoted
// anywhere in the snapshots. Pairs are visited in sorted order so history
// fetches and gap reports are deterministic.
func (p *Pipeline) projectAll(ctx context.Context, snapshots map[string]*model.MarketSnapshot) (map[optimize.Key]model.Projection, []ProjectionGap) {
	players := make(map[string]model.Player)
	pairs := make(map[optimize.Key]struct{})
	for _, snap := range snapshots {
		for _, line := range snap.Lines {
			players[line.Player.ID] = line.Player
			pairs[optimize.Key{PlayerID: line.Player.ID, Stat: line.Stat}] = struct{}{}
		}
	}

	keys := make([]optimize.Key, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].PlayerID != keys[j].PlayerID {
			return keys[i].PlayerID < keys[j].PlayerID
		}
		return keys[i].Stat < keys[j].Stat
	})

	projections := make(map[optimize.Key]model.Projection, len(keys))
	var gaps []ProjectionGap
	for _, key := range keys {
		player := players[key.PlayerID]

		values, err := p.history.Values(ctx, player, key.Stat, p.opts.WindowN)
		if err != nil {
			gaps = append(gaps, ProjectionGap{PlayerID: key.PlayerID, Stat: key.Stat, Reason: err.Error()})
			zap.L().Warn("pipeline: history fetch failed",
				zap.String("player", key.PlayerID),
				zap.String("stat", string(key.Stat)),
				zap.Error(err),
			)
			continue
		}

		proj, err := projection.ProjectValues(player, key.Stat, values, p.opts.WindowN, p.opts.Method)
		if err != nil {
			// Typically InsufficientHistory; that prop simply has no edge.
			gaps = append(gaps, ProjectionGap{PlayerID: key.PlayerID, Stat: key.Stat, Reason: "insufficient history"})
			continue
		}
		projections[key] = proj
	}
	return projections, gaps
}

// logPicks persists the alerted picks; storage errors cost the pick log
// entry, not the run.
func (p *Pipeline) logPicks(ctx context.Context, picks []model.PropEdge) int {
	logged := 0
	for _, e := range picks {
		if _, err := p.store.LogPick(ctx, store.PickFromEdge(e)); err != nil {
			zap.L().Warn("pipeline: log pick failed",
				zap.String("player", e.Player.ID),
				zap.Error(err),
			)
			continue
		}
		logged++
	}
	return logged
}

// sortEdges re-ranks merged per-game edges with the optimizer's comparator
// plus game ID as the last key, so the cross-game ordering is total.
func sortEdges(edges []model.PropEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if ae, be := math.Abs(a.Edge), math.Abs(b.Edge); ae != be {
			return ae > be
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.Player.ID != b.Player.ID {
			return a.Player.ID < b.Player.ID
		}
		if a.Stat != b.Stat {
			return a.Stat < b.Stat
		}
		return a.GameID < b.GameID
	})
}

func sortedKeys(m map[string]*model.MarketSnapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
