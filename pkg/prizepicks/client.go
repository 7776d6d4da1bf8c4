// Package prizepicks is a client for PrizePicks-style projection boards.
// The payload is JSON:API flavored: a data array of projection entries with
// attributes carrying player name, stat label, and line score.
package prizepicks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/primeprop/primeprop/internal/resilience"
)

const defaultBaseURL = "https://api.prizepicks.com"

// Projection is one board entry after flattening the JSON:API envelope.
type Projection struct {
	PlayerName string
	Team       string
	StatType   string
	LineScore  float64
}

// Client fetches the current projection board.
type Client interface {
	Projections(ctx context.Context, leagueID string) ([]Projection, error)
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
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a PrizePicks client. The public board needs no auth.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("prizepicks", "projections")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// payload mirrors the wire shape we consume. Attributes we don't use are
// left undeclared.
type payload struct {
	Data []struct {
		Attributes struct {
			DisplayName string  `json:"display_name"`
			Name        string  `json:"name"`
			Team        string  `json:"team"`
			StatType    string  `json:"stat_type"`
			Stat        string  `json:"stat"`
			LineScore   float64 `json:"line_score"`
		} `json:"attributes"`
	} `json:"data"`
}

func (c *httpClient) Projections(ctx context.Context, leagueID string) ([]Projection, error) {
	params := url.Values{"single_stat": {"true"}}
	if leagueID != "" {
		params.Set("league_id", leagueID)
	}
	u := c.baseURL + "/projections?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

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
		return nil, eris.Wrap(err, "prizepicks: projections")
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, eris.Wrap(err, "prizepicks: decode projections")
	}

	out := make([]Projection, 0, len(p.Data))
	for _, item := range p.Data {
		attr := item.Attributes
		name := attr.DisplayName
		if name == "" {
			name = attr.Name
		}
		stat := attr.StatType
		if stat == "" {
			stat = attr.Stat
		}
		if name == "" || stat == "" {
			continue
		}
		out = append(out, Projection{
			PlayerName: name,
			Team:       attr.Team,
			StatType:   stat,
			LineScore:  attr.LineScore,
		})
	}
	return out, nil
}
