package ingest

import (
	"context"

	"github.com/primeprop/primeprop/internal/model"
)

// RawProp is a provider-agnostic quote before identity resolution: the
// adapter has already flattened its wire format but the player is still a
// raw name and the stat still uses the provider's vocabulary.
type RawProp struct {
	PlayerName string
	TeamHint   string
	StatKey    string
	Line       float64
	OverPrice  *float64
	UnderPrice *float64

	// Provider optionally overrides the adapter name on the resulting line.
	// Aggregator feeds (one adapter, many books) set it per quote so line
	// shopping can tell the books apart.
	Provider string
}

// ProviderAdapter exposes one odds provider to the ingestor. The network
// fetch, retries, and wire format all live behind this boundary.
type ProviderAdapter interface {
	// Name identifies the provider in prop lines and failure reports.
	Name() string

	// FetchRawProps returns the provider's player props for one game.
	FetchRawProps(ctx context.Context, game model.Game) ([]RawProp, error)
}

// statKeyMap folds every provider vocabulary we have seen into the canonical
// stat types: Odds-API-style market keys and PrizePicks-style stat labels.
// Keys are matched lowercase.
var statKeyMap = map[string]model.StatType{
	"player_points":                   model.StatPoints,
	"player_rebounds":                 model.StatRebounds,
	"player_assists":                  model.StatAssists,
	"player_points_rebounds_assists":  model.StatPRA,
	"player_threes":                   model.StatThrees,
	"points":                          model.StatPoints,
	"rebounds":                        model.StatRebounds,
	"assists":                         model.StatAssists,
	"points_rebounds_assists":         model.StatPRA,
	"pra":                             model.StatPRA,
	"threes":                          model.StatThrees,
	"three_pointers_made":             model.StatThrees,
}

// NormalizeStatKey maps a provider stat key onto the shared enumeration.
func NormalizeStatKey(key string) (model.StatType, bool) {
	st, ok := statKeyMap[lower(key)]
	return st, ok
}
