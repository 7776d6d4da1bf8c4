package model

// Player is the canonical identity for one athlete. Providers spell names
// differently; the resolver maps every spelling onto exactly one Player,
// so ID is the join key for the whole pipeline.
type Player struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Team        string   `json:"team,omitempty"`
	Position    string   `json:"position,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}
