// Package optimize joins projections with market snapshots and ranks the
// resulting edges. Edge = (projected - line) / line; positive edge means the
// model projects over the posted line.
package optimize

import (
	"math"
	"sort"

	"github.com/primeprop/primeprop/internal/model"
)

// SkipReason explains why a prop line produced no edge.
type SkipReason string

const (
	SkipNoProjection SkipReason = "no_projection"
	SkipInvalidLine  SkipReason = "invalid_line"
)

// Skip records one prop line the optimizer excluded.
type Skip struct {
	PlayerID string         `json:"player_id"`
	Stat     model.StatType `json:"stat_type"`
	Provider string         `json:"provider"`
	Line     float64        `json:"line_value"`
	Reason   SkipReason     `json:"reason"`
}

// Key identifies a (player, stat) pair in the projection map.
type Key struct {
	PlayerID string
	Stat     model.StatType
}

// Optimize scores every prop line in the snapshot against the projections
// and returns edges ranked best-first, plus the lines it had to skip.
//
// Each provider's line for the same (player, stat) is scored independently —
// collapsing providers is a presentation concern, and keeping them separate
// is what makes line shopping possible.
//
// Ranking is fully deterministic: descending |edge|, then provider, then
// player ID, then stat. The function is pure; it performs no I/O.
func Optimize(snapshot *model.MarketSnapshot, projections map[Key]model.Projection, threshold float64) ([]model.PropEdge, []Skip) {
	var edges []model.PropEdge
	var skips []Skip

	for _, line := range snapshot.Lines {
		if line.Line == 0 {
			// Edge is undefined at line zero; never divide.
			skips = append(skips, Skip{
				PlayerID: line.Player.ID,
				Stat:     line.Stat,
				Provider: line.Provider,
				Line:     line.Line,
				Reason:   SkipInvalidLine,
			})
			continue
		}

		proj, ok := projections[Key{PlayerID: line.Player.ID, Stat: line.Stat}]
		if !ok {
			skips = append(skips, Skip{
				PlayerID: line.Player.ID,
				Stat:     line.Stat,
				Provider: line.Provider,
				Line:     line.Line,
				Reason:   SkipNoProjection,
			})
			continue
		}

		edge := (proj.Value - line.Line) / line.Line
		edges = append(edges, model.PropEdge{
			Player:    line.Player,
			Stat:      line.Stat,
			Line:      line.Line,
			Projected: proj.Value,
			Edge:      edge,
			Side:      side(edge, threshold),
			Provider:  line.Provider,
			GameID:    line.GameID,
		})
	}

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
		return a.Stat < b.Stat
	})

	return edges, skips
}

// side applies the threshold policy: Over iff edge > threshold, Under iff
// edge < -threshold, else Pass.
func side(edge, threshold float64) model.Side {
	switch {
	case edge > threshold:
		return model.SideOver
	case edge < -threshold:
		return model.SideUnder
	default:
		return model.SidePass
	}
}

// ImpliedProbability converts American odds to an implied win probability in
// (0, 1). Returns 0 for nil odds.
func ImpliedProbability(odds *float64) float64 {
	if odds == nil {
		return 0
	}
	o := *odds
	if o > 0 {
		return 100.0 / (o + 100.0)
	}
	return math.Abs(o) / (math.Abs(o) + 100.0)
}
