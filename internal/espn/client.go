// Package espn pulls scoreboard results from ESPN's unofficial site API.
package espn

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
)

// Default configuration values.
const (
	DefaultHost    = "https://site.api.espn.com"
	DefaultLeague  = "nba"
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps backfills polite; the endpoint is
	// unofficial and undocumented.
	DefaultRequestsPerSecond = 4
)

// Scoreboard is one day's slate of games.
type Scoreboard struct {
	Events []Event `json:"events"`
}

// Event is one game on the scoreboard.
type Event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []Competition `json:"competitions"`
	Status       Status        `json:"status"`
}

// Competition carries the actual matchup; the first one is the game.
type Competition struct {
	Date        string       `json:"date"`
	Competitors []Competitor `json:"competitors"`
}

// Competitor is one team's entry. Score arrives as a string.
type Competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     Team   `json:"team"`
}

// Team names one side.
type Team struct {
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
}

// Status wraps the feed's nested status object.
type Status struct {
	Type StatusType `json:"type"`
}

// StatusType carries the game state. State is "pre", "in" or "post".
type StatusType struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
	Description string `json:"description"`
}

// Client calls the scoreboard endpoint for one league.
type Client struct {
	host    string
	league  string
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

// WithLeague sets the league path segment, e.g. "nba".
func WithLeague(league string) ClientOption {
	return func(c *Client) {
		c.league = league
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

// NewClient creates a new scoreboard client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		host:    DefaultHost,
		league:  DefaultLeague,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// League returns the league this client pulls.
func (c *Client) League() string {
	return c.league
}

// FetchScoreboard pulls one date's scoreboard. The date is YYYYMMDD.
func (c *Client) FetchScoreboard(ctx context.Context, date string) (*Scoreboard, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dates", date)

	endpoint := fmt.Sprintf("%s/apis/site/v2/sports/basketball/%s/scoreboard?%s",
		c.host, url.PathEscape(c.league), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("espn status %d: %s", resp.StatusCode, string(body))
	}

	var scoreboard Scoreboard
	if err := json.Unmarshal(body, &scoreboard); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &scoreboard, nil
}
