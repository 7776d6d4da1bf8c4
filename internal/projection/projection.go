// Package projection computes expected stat values from recent game history.
//
// Two methods are supported: a simple arithmetic mean, and a linearly
// recency-weighted mean where the i-th most recent of n games carries weight
// (n-i) / (n(n+1)/2). Weights sum to 1 and the weighted method reduces to the
// simple mean when n == 1.
package projection

import (
	"github.com/rotisserie/eris"

	"github.com/primeprop/primeprop/internal/model"
)

// ErrInsufficientHistory is returned when a player has zero usable samples
// for a stat. A short window is fine; an empty one would silently project
// zero, which is worse than no projection at all.
var ErrInsufficientHistory = eris.New("projection: no historical samples")

// Project computes a projection for one (player, stat) pair from history
// ordered most-recent-first. Only the first windowN entries are used; when
// fewer exist, all of them are, and SampleSize records the reduced count.
func Project(player model.Player, stat model.StatType, history []model.GameLog, windowN int, method model.ProjectionMethod) (model.Projection, error) {
	if windowN > 0 && len(history) > windowN {
		history = history[:windowN]
	}
	if len(history) == 0 {
		return model.Projection{}, eris.Wrapf(ErrInsufficientHistory, "player %s stat %s", player.ID, stat)
	}

	values := make([]float64, len(history))
	for i, g := range history {
		values[i] = g.Value
	}

	var projected float64
	switch method {
	case model.MethodWeighted:
		projected = weightedAverage(values)
	default:
		projected = simpleAverage(values)
	}

	return model.Projection{
		Player:     player,
		Stat:       stat,
		Value:      projected,
		SampleSize: len(values),
		Method:     method,
	}, nil
}

// ProjectValues is Project over a bare value series (most-recent-first),
// for callers whose history source does not carry per-game metadata.
func ProjectValues(player model.Player, stat model.StatType, values []float64, windowN int, method model.ProjectionMethod) (model.Projection, error) {
	history := make([]model.GameLog, len(values))
	for i, v := range values {
		history[i].Value = v
	}
	return Project(player, stat, history, windowN, method)
}

func simpleAverage(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// weightedAverage applies linear recency decay to values ordered
// most-recent-first: weight_i = (n-i) / (n(n+1)/2), so the newest game has
// weight n/total and the oldest 1/total.
func weightedAverage(values []float64) float64 {
	n := len(values)
	total := float64(n*(n+1)) / 2

	var sum float64
	for i, v := range values {
		sum += v * float64(n-i) / total
	}
	return sum
}
