// Package oddsapi is a minimal client for The Odds API v4 moneyline feed.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"moneyline-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultHost    = "https://api.the-odds-api.com"
	DefaultTimeout = 30 * time.Second
	DefaultRegions = "us"

	// DefaultRequestsPerSecond stays well under the API's burst limits;
	// the real constraint is the monthly quota reported per response.
	DefaultRequestsPerSecond = 1
)

// Event is one game in the odds feed, with the books quoting it.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime *time.Time  `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one price source's markets for an event.
type Bookmaker struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	LastUpdate *time.Time `json:"last_update"`
	Markets    []Market   `json:"markets"`
}

// Market holds one market type's outcomes.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome prices one side. Price is a pointer so an absent price is
// distinguishable from zero.
type Outcome struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// Quota reports the request budget headers the API returns with every
// response.
type Quota struct {
	Remaining string
	Used      string
	LastCost  string
}

// Client calls The Odds API. All requests go through one rate limiter.
type Client struct {
	host    string
	apiKey  string
	regions string
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHost overrides the API host, scheme included.
func WithHost(host string) ClientOption {
	return func(c *Client) {
		c.host = strings.TrimRight(host, "/")
	}
}

// WithRegions sets the bookmaker regions parameter.
func WithRegions(regions string) ClientOption {
	return func(c *Client) {
		c.regions = regions
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithRateLimit sets the request rate ceiling.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a new Odds API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		host:    DefaultHost,
		apiKey:  apiKey,
		regions: DefaultRegions,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchOdds pulls current moneyline odds for one sport. An empty bookmakers
// list leaves book filtering to the regions parameter.
func (c *Client) FetchOdds(ctx context.Context, sportKey string, bookmakers []string) ([]Event, *Quota, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", domain.MarketMoneyline)
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")
	if len(bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(bookmakers, ","))
	}

	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.host, url.PathEscape(sportKey), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	// The key never goes in errors; the body is the API's own message.
	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("odds api status %d: %s", resp.StatusCode, string(body))
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, nil, fmt.Errorf("unmarshal response: %w", err)
	}

	quota := &Quota{
		Remaining: resp.Header.Get("x-requests-remaining"),
		Used:      resp.Header.Get("x-requests-used"),
		LastCost:  resp.Header.Get("x-requests-last"),
	}

	return events, quota, nil
}
