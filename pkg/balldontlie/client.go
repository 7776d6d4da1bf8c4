// Package balldontlie is a client for the balldontlie.io NBA stats API,
// used as the pipeline's historical game-log source.
package balldontlie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/primeprop/primeprop/internal/resilience"
)

const defaultBaseURL = "https://api.balldontlie.io/v1"

// PlayerRef is a player record from the search endpoint.
type PlayerRef struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GameStat is one game's box-score line for a player.
type GameStat struct {
	GameID   int
	GameDate time.Time
	Pts      float64
	Reb      float64
	Ast      float64
	Fg3m     float64
}

// Client resolves players and fetches their recent game logs.
type Client interface {
	// SearchPlayer returns the best match for a player name, or nil when the
	// API knows no such player.
	SearchPlayer(ctx context.Context, name string) (*PlayerRef, error)

	// RecentStats returns up to n most recent regular-season games for a
	// player, newest first.
	RecentStats(ctx context.Context, playerID, n int) ([]GameStat, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithLimiter sets a request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) { c.limiter = l }
}

type httpClient struct {
	key     string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a balldontlie client. key may be empty for the free tier.
func NewClient(key string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("balldontlie", "get")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchPlayer(ctx context.Context, name string) (*PlayerRef, error) {
	var resp struct {
		Data []PlayerRef `json:"data"`
	}
	params := url.Values{"search": {name}}
	if err := c.getJSON(ctx, "/players", params, &resp); err != nil {
		return nil, eris.Wrapf(err, "balldontlie: search %q", name)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// statRow mirrors the wire shape of one /stats entry.
type statRow struct {
	Pts  float64 `json:"pts"`
	Reb  float64 `json:"reb"`
	Ast  float64 `json:"ast"`
	Fg3m float64 `json:"fg3m"`
	Game struct {
		ID   int    `json:"id"`
		Date string `json:"date"`
	} `json:"game"`
}

func (c *httpClient) RecentStats(ctx context.Context, playerID, n int) ([]GameStat, error) {
	var resp struct {
		Data []statRow `json:"data"`
	}
	params := url.Values{
		"player_ids[]": {strconv.Itoa(playerID)},
		"per_page":     {strconv.Itoa(n)},
		"postseason":   {"false"},
	}
	if err := c.getJSON(ctx, "/stats", params, &resp); err != nil {
		return nil, eris.Wrapf(err, "balldontlie: stats for player %d", playerID)
	}

	stats := make([]GameStat, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.Parse("2006-01-02", row.Game.Date)
		if err != nil {
			// Some responses carry full timestamps.
			if date, err = time.Parse(time.RFC3339, row.Game.Date); err != nil {
				continue
			}
		}
		stats = append(stats, GameStat{
			GameID:   row.Game.ID,
			GameDate: date,
			Pts:      row.Pts,
			Reb:      row.Reb,
			Ast:      row.Ast,
			Fg3m:     row.Fg3m,
		})
	}

	// Newest first.
	sort.Slice(stats, func(i, j int) bool { return stats[i].GameDate.After(stats[j].GameDate) })
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats, nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		if c.key != "" {
			req.Header.Set("Authorization", "Bearer "+c.key)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
