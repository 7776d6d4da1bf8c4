package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/pkg/oddsapi"
)

// OddsAPIAdapter exposes The Odds API as a provider adapter. One event-odds
// response carries several bookmakers; each quote keeps its bookmaker title
// as the provider label so the optimizer can shop lines across books.
type OddsAPIAdapter struct {
	client  oddsapi.Client
	regions []string
	markets []string
}

// NewOddsAPIAdapter wraps an Odds API client. regions and markets follow the
// API's comma-list vocabulary (e.g. "us", "player_points").
func NewOddsAPIAdapter(client oddsapi.Client, regions, markets []string) *OddsAPIAdapter {
	return &OddsAPIAdapter{client: client, regions: regions, markets: markets}
}

func (a *OddsAPIAdapter) Name() string { return "The Odds API" }

func (a *OddsAPIAdapter) FetchRawProps(ctx context.Context, game model.Game) ([]RawProp, error) {
	odds, err := a.client.EventOdds(ctx, game.ID, a.regions, a.markets)
	if err != nil {
		return nil, eris.Wrapf(err, "oddsapi adapter: game %s", game.ID)
	}

	var props []RawProp
	for _, book := range odds.Bookmakers {
		provider := book.Title
		if provider == "" {
			provider = a.Name()
		}
		for _, market := range book.Markets {
			props = append(props, flattenMarket(market, provider)...)
		}
	}
	return props, nil
}

// overUnder accumulates the two sides of one quoted line.
type overUnder struct {
	over  *float64
	under *float64
}

// flattenMarket groups a market's outcomes by (player, point) and joins the
// Over and Under sides into a single raw prop per quoted line.
func flattenMarket(market oddsapi.Market, provider string) []RawProp {
	type key struct {
		player string
		point  float64
	}

	grouped := make(map[key]*overUnder)
	var order []key // preserve first-seen order for deterministic output

	for _, outcome := range market.Outcomes {
		player := outcome.Description
		if player == "" || outcome.Point == nil {
			continue
		}
		k := key{player: player, point: *outcome.Point}
		ou := grouped[k]
		if ou == nil {
			ou = &overUnder{}
			grouped[k] = ou
			order = append(order, k)
		}
		price := outcome.Price
		switch strings.ToLower(outcome.Name) {
		case "over":
			ou.over = &price
		case "under":
			ou.under = &price
		}
	}

	props := make([]RawProp, 0, len(order))
	for _, k := range order {
		ou := grouped[k]
		props = append(props, RawProp{
			PlayerName: k.player,
			StatKey:    market.Key,
			Line:       k.point,
			OverPrice:  ou.over,
			UnderPrice: ou.under,
			Provider:   provider,
		})
	}
	return props
}
