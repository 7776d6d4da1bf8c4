package model

import "time"

// StatType is the canonical stat vocabulary shared across providers.
// Provider-specific market keys are mapped onto this set during ingestion.
type StatType string

const (
	StatPoints   StatType = "Points"
	StatRebounds StatType = "Rebounds"
	StatAssists  StatType = "Assists"
	StatPRA      StatType = "PRA" // points + rebounds + assists
	StatThrees   StatType = "Threes"
)

// StatTypes lists every canonical stat type in a fixed order.
var StatTypes = []StatType{StatPoints, StatRebounds, StatAssists, StatPRA, StatThrees}

// Valid reports whether s is one of the canonical stat types.
func (s StatType) Valid() bool {
	switch s {
	case StatPoints, StatRebounds, StatAssists, StatPRA, StatThrees:
		return true
	}
	return false
}

// PropLine is one provider's quoted line for a single player/stat.
// Prices are American odds; nil when the book does not publish them
// (pick'em style boards quote a line only).
type PropLine struct {
	Player     Player    `json:"player"`
	Stat       StatType  `json:"stat_type"`
	Line       float64   `json:"line_value"`
	OverPrice  *float64  `json:"over_price,omitempty"`
	UnderPrice *float64  `json:"under_price,omitempty"`
	Provider   string    `json:"provider"`
	GameID     string    `json:"game_id"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// MarketSnapshot is the full set of prop lines collected for one game at one
// fetch time. A new ingestion cycle produces a new snapshot; snapshots are
// never mutated after assembly.
type MarketSnapshot struct {
	ID        string     `json:"snapshot_id"`
	Game      Game       `json:"game"`
	FetchedAt time.Time  `json:"fetched_at"`
	Lines     []PropLine `json:"lines"`
}

// ProjectionMethod selects how historical values are averaged.
type ProjectionMethod string

const (
	MethodSimple   ProjectionMethod = "simple"
	MethodWeighted ProjectionMethod = "weighted"
)

// Projection is a computed expectation for one (player, stat) pair.
type Projection struct {
	Player     Player           `json:"player"`
	Stat       StatType         `json:"stat_type"`
	Value      float64          `json:"projected_value"`
	SampleSize int              `json:"sample_size"`
	Method     ProjectionMethod `json:"method"`
}

// Side is the optimizer's recommendation for a prop.
type Side string

const (
	SideOver  Side = "Over"
	SideUnder Side = "Under"
	SidePass  Side = "Pass"
)

// PropEdge is the optimizer's output for one prop line:
// Edge = (Projected - Line) / Line.
type PropEdge struct {
	Player    Player   `json:"player"`
	Stat      StatType `json:"stat_type"`
	Line      float64  `json:"line_value"`
	Projected float64  `json:"projected_value"`
	Edge      float64  `json:"edge"`
	Side      Side     `json:"recommended_side"`
	Provider  string   `json:"provider"`
	GameID    string   `json:"game_id"`
}
