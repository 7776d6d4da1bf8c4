// Package oddsapi is a thin client for The Odds API v4. It owns transport
// concerns only — auth, throttling, retries, decoding; the pipeline's
// ingestor owns normalization.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/primeprop/primeprop/internal/resilience"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com"
	defaultSport   = "basketball_nba"
)

// Client fetches events and per-event player prop odds.
type Client interface {
	// Events lists scheduled events for the configured sport.
	Events(ctx context.Context) ([]Event, error)

	// EventOdds fetches odds for one event restricted to the given regions
	// and market keys.
	EventOdds(ctx context.Context, eventID string, regions, markets []string) (*EventOdds, error)

	// RequestsRemaining reports the quota left according to the most recent
	// response headers; -1 before the first request.
	RequestsRemaining() int
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithSport overrides the default sport key.
func WithSport(sport string) Option {
	return func(c *httpClient) { c.sport = sport }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithLimiter sets a request rate limiter shared across calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) { c.limiter = l }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

type httpClient struct {
	key       string
	baseURL   string
	sport     string
	http      *http.Client
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	remaining atomic.Int64
}

// NewClient creates an Odds API client authenticated with key.
func NewClient(key string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		baseURL: defaultBaseURL,
		sport:   defaultSport,
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("oddsapi", "get")
	c.remaining.Store(-1)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Events(ctx context.Context) ([]Event, error) {
	u := fmt.Sprintf("%s/v4/sports/%s/events", c.baseURL, url.PathEscape(c.sport))
	var events []Event
	if err := c.getJSON(ctx, u, url.Values{}, &events); err != nil {
		return nil, eris.Wrap(err, "oddsapi: events")
	}
	return events, nil
}

func (c *httpClient) EventOdds(ctx context.Context, eventID string, regions, markets []string) (*EventOdds, error) {
	u := fmt.Sprintf("%s/v4/sports/%s/events/%s/odds", c.baseURL, url.PathEscape(c.sport), url.PathEscape(eventID))
	params := url.Values{}
	if len(regions) > 0 {
		params.Set("regions", strings.Join(regions, ","))
	}
	if len(markets) > 0 {
		params.Set("markets", strings.Join(markets, ","))
	}
	params.Set("oddsFormat", "american")

	var odds EventOdds
	if err := c.getJSON(ctx, u, params, &odds); err != nil {
		return nil, eris.Wrapf(err, "oddsapi: event odds %s", eventID)
	}
	return &odds, nil
}

func (c *httpClient) RequestsRemaining() int {
	return int(c.remaining.Load())
}

// getJSON issues a GET with auth, throttling, and retry on transient
// failures, then decodes the body into out.
func (c *httpClient) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	params.Set("apiKey", c.key)

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if rem := resp.Header.Get("X-Requests-Remaining"); rem != "" {
			if n, err := strconv.ParseFloat(rem, 64); err == nil {
				c.remaining.Store(int64(n))
			}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("status %d: %s", resp.StatusCode, truncate(data, 200))
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

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
