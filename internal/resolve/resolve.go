package resolve

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/primeprop/primeprop/internal/model"
)

// reportBand is how far below the acceptance threshold a best score may fall
// and still be worth flagging for manual review. Near-misses become new
// canonical players, but silently splitting one athlete in two is exactly the
// failure mode a human should audit.
const reportBand = 0.15

// Ambiguity records a resolution that created a new canonical player while a
// close-but-rejected candidate existed.
type Ambiguity struct {
	RawName       string  `json:"raw_name"`
	CreatedID     string  `json:"created_id"`
	NearestID     string  `json:"nearest_id"`
	NearestName   string  `json:"nearest_name"`
	NearestScore  float64 `json:"nearest_score"`
	ScoreRequired float64 `json:"score_required"`
}

// entry is one canonical player plus every normalized spelling known for it.
// Entries live in a slice in registration order; that order is the final
// tie-break during matching.
type entry struct {
	player model.Player
	names  map[string]struct{}
}

// Registry maps raw provider names onto canonical players. It is the only
// mutable state shared across concurrent ingestion tasks; all access is
// serialized behind a mutex. Each pipeline run owns its own Registry.
type Registry struct {
	mu          sync.Mutex
	minScore    float64
	byID        map[string]*entry
	byName      map[string]string // normalized name -> player ID
	ordered     []*entry
	ambiguities []Ambiguity
}

// NewRegistry creates an empty registry with the given fuzzy-match acceptance
// threshold (0 < minScore <= 1).
func NewRegistry(minScore float64) *Registry {
	return &Registry{
		minScore: minScore,
		byID:     make(map[string]*entry),
		byName:   make(map[string]string),
	}
}

// Seed preloads known canonical players and their aliases. Later Resolve
// calls reuse these identities instead of minting new ones.
func (r *Registry) Seed(players []model.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range players {
		if p.ID == "" || r.byID[p.ID] != nil {
			continue
		}
		e := &entry{
			player: p,
			names:  make(map[string]struct{}),
		}
		for _, name := range append([]string{p.DisplayName}, p.Aliases...) {
			n := NormalizeName(name)
			if n == "" {
				continue
			}
			e.names[n] = struct{}{}
			if _, taken := r.byName[n]; !taken {
				r.byName[n] = p.ID
			}
		}
		r.byID[p.ID] = e
		r.ordered = append(r.ordered, e)
	}
}

// Resolve maps a raw provider name (plus an optional team hint) onto a
// canonical player. It never fails: names that match no known player above
// the acceptance threshold become new canonical players, since discarding an
// unrecognized line would silently shrink the market.
//
// Tie-break order when several candidates share the best score: a candidate
// whose team matches the hint wins, then the higher score, then the earliest
// registered entry. The ordering is deterministic for identical inputs.
func (r *Registry) Resolve(rawName, teamHint string) model.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := NormalizeName(rawName)
	if normalized == "" {
		return r.create(rawName, "unknown-player", teamHint)
	}

	// Exact normalized hit: no scoring needed.
	if id, ok := r.byName[normalized]; ok {
		return r.byID[id].player
	}

	best, bestScore := r.closest(normalized, teamHint)
	if best != nil && bestScore >= r.minScore {
		// Learn the new spelling so the next lookup is exact.
		best.names[normalized] = struct{}{}
		r.byName[normalized] = best.player.ID
		return best.player
	}

	created := r.create(rawName, Slug(rawName), teamHint)
	if best != nil && bestScore >= r.minScore-reportBand {
		r.ambiguities = append(r.ambiguities, Ambiguity{
			RawName:       rawName,
			CreatedID:     created.ID,
			NearestID:     best.player.ID,
			NearestName:   best.player.DisplayName,
			NearestScore:  bestScore,
			ScoreRequired: r.minScore,
		})
		zap.L().Warn("resolve: ambiguous identity, created new player",
			zap.String("raw_name", rawName),
			zap.String("nearest", best.player.DisplayName),
			zap.Float64("score", bestScore),
			zap.Float64("required", r.minScore),
		)
	}
	return created
}

// Lookup returns the canonical player for an ID, if registered.
func (r *Registry) Lookup(id string) (model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return model.Player{}, false
	}
	return e.player, true
}

// Players returns all canonical players in registration order.
func (r *Registry) Players() []model.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Player, 0, len(r.ordered))
	for _, e := range r.ordered {
		out = append(out, e.player)
	}
	return out
}

// Ambiguities returns the near-miss resolutions recorded so far.
func (r *Registry) Ambiguities() []Ambiguity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Ambiguity, len(r.ambiguities))
	copy(out, r.ambiguities)
	return out
}

// closest scores every registered spelling and returns the best candidate.
// Caller holds r.mu.
func (r *Registry) closest(normalized, teamHint string) (*entry, float64) {
	hint := strings.ToUpper(strings.TrimSpace(teamHint))

	var best *entry
	var bestScore float64
	for _, e := range r.ordered {
		var score float64
		for name := range e.names {
			if s := Similarity(normalized, name); s > score {
				score = s
			}
		}
		if best == nil {
			best, bestScore = e, score
			continue
		}
		switch {
		case score > bestScore:
			best, bestScore = e, score
		case score == bestScore && hint != "":
			// Same score: prefer the candidate matching the team hint.
			if !strings.EqualFold(best.player.Team, hint) && strings.EqualFold(e.player.Team, hint) {
				best = e
			}
		}
		// Equal score, no hint preference: earlier registration wins by
		// iteration order.
	}
	return best, bestScore
}

// create registers a brand-new canonical player. Caller holds r.mu.
func (r *Registry) create(rawName, id, teamHint string) model.Player {
	if id == "" {
		id = "unknown-player"
	}
	if r.byID[id] != nil {
		base := id
		for n := 2; ; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
			if r.byID[id] == nil {
				break
			}
		}
	}

	p := model.Player{
		ID:          id,
		DisplayName: strings.TrimSpace(rawName),
		Team:        strings.ToUpper(strings.TrimSpace(teamHint)),
	}
	if p.DisplayName == "" {
		p.DisplayName = id
	}

	e := &entry{
		player: p,
		names:  map[string]struct{}{},
	}
	if n := NormalizeName(rawName); n != "" {
		e.names[n] = struct{}{}
		r.byName[n] = id
	}
	r.byID[id] = e
	r.ordered = append(r.ordered, e)
	return p
}
