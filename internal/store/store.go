// Package store persists recommended picks for retrospective grading.
// Outcome columns stay NULL until a pick is graded, manually or by a future
// results feed.
package store

import (
	"context"
	"time"

	"github.com/primeprop/primeprop/internal/model"
)

// Pick is one logged recommendation plus its eventual outcome.
type Pick struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Stat         string    `json:"stat_type"`
	Line         float64   `json:"line_value"`
	Projected    float64   `json:"projected_value"`
	Edge         float64   `json:"edge"`
	Side         string    `json:"recommended_side"`
	Provider     string    `json:"provider"`
	GameID       string    `json:"game_id"`
	ActualResult *float64  `json:"actual_result,omitempty"`
	Won          *bool     `json:"won,omitempty"`
}

// PickFromEdge builds an ungraded pick record from an optimizer result.
func PickFromEdge(e model.PropEdge) Pick {
	return Pick{
		PlayerID:   e.Player.ID,
		PlayerName: e.Player.DisplayName,
		Stat:       string(e.Stat),
		Line:       e.Line,
		Projected:  e.Projected,
		Edge:       e.Edge,
		Side:       string(e.Side),
		Provider:   e.Provider,
		GameID:     e.GameID,
	}
}

// WinRate summarizes graded picks.
type WinRate struct {
	Graded int     `json:"graded"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Pct    float64 `json:"win_pct"` // 0 when nothing is graded yet
}

// PickFilter narrows ListPicks results.
type PickFilter struct {
	PlayerID   string `json:"player_id,omitempty"`
	GradedOnly bool   `json:"graded_only,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Store is the persistence interface for the pick log.
type Store interface {
	// LogPick inserts an ungraded pick and returns it with ID and timestamp set.
	LogPick(ctx context.Context, pick Pick) (*Pick, error)

	// GradePick records a pick's actual outcome.
	GradePick(ctx context.Context, id string, actual float64, won bool) error

	// ListPicks returns picks matching the filter, newest first.
	ListPicks(ctx context.Context, filter PickFilter) ([]Pick, error)

	// WinRate aggregates graded picks.
	WinRate(ctx context.Context) (WinRate, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
