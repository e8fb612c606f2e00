// client/client.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"openskyfetch/models"
)

const (
	// DefaultAuthURL is the OpenSky OAuth2 client-credentials token
	// endpoint.
	DefaultAuthURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

	// DefaultBaseURL is the OpenSky REST API base.
	DefaultBaseURL = "https://opensky-network.org/api"
)

// ErrParse marks a syntactically invalid body from the movements
// endpoint. Isolated to the unit that hit it.
var ErrParse = errors.New("malformed API response")

// HTTPError is a non-2xx response from the movements endpoint. It is
// propagated, never retried.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Window is an inclusive Unix-epoch-seconds time range for one request.
type Window struct {
	Begin int64
	End   int64
}

// DayWindow returns the full UTC day containing day: [00:00:00,
// 23:59:59], so End == Begin + 86399.
func DayWindow(day time.Time) Window {
	begin := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Begin: begin.Unix(), End: begin.Unix() + 86399}
}

// Timestamps converts a calendar day to a request window. With a nil
// override it is the full UTC day; with an override both bounds
// collapse to that instant, which callers splice onto the first or last
// day of a multi-day range.
func Timestamps(day time.Time, override *time.Time) Window {
	if override != nil {
		ts := override.Unix()
		return Window{Begin: ts, End: ts}
	}
	return DayWindow(day)
}

// Config carries everything the client needs as plain values.
type Config struct {
	AuthURL        string
	BaseURL        string
	ClientID       string
	ClientSecret   string
	MaxConcurrent  int
	RateLimitDelay time.Duration
	Timeout        time.Duration
}

// Client issues authenticated, rate-limited requests against the
// OpenSky movements endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenSource
	gate       *Gate
	log        zerolog.Logger
}

// New builds a client from cfg, filling in the well-known OpenSky
// endpoints and defaults for anything left zero.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		tokens:     NewTokenSource(httpClient, cfg.AuthURL, cfg.ClientID, cfg.ClientSecret, log),
		gate:       NewGate(cfg.MaxConcurrent, cfg.RateLimitDelay),
		log:        log.With().Str("component", "opensky_client").Logger(),
	}
}

// CheckAuth forces a token exchange so a run can fail fast on bad
// credentials before any fetch unit is scheduled.
func (c *Client) CheckAuth(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}

func endpointFor(kind models.Kind) string {
	if kind == models.KindDestination {
		return "/flights/arrival"
	}
	return "/flights/departure"
}

// FetchMovements retrieves the movement list for one airport and
// window, returning both the decoded payloads and the raw body for
// as-received persistence. The call holds a gate permit for its full
// duration.
func (c *Client) FetchMovements(ctx context.Context, kind models.Kind, airport string, w Window) ([]models.FlightPayload, []byte, error) {
	permit, err := c.gate.Acquire(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire request permit: %w", err)
	}
	defer permit.Release()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, nil, err
	}

	q := url.Values{}
	q.Set("airport", airport)
	q.Set("begin", fmt.Sprintf("%d", w.Begin))
	q.Set("end", fmt.Sprintf("%d", w.End))
	reqURL := c.baseURL + endpointFor(kind) + "?" + q.Encode()

	c.log.Debug().Str("airport", airport).Int64("begin", w.Begin).Int64("end", w.End).
		Str("kind", string(kind)).Msg("fetching movements")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build movements request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("movements request for %s: %w", airport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read movements response for %s: %w", airport, err)
	}

	var payloads []models.FlightPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	c.log.Debug().Str("airport", airport).Int("flights", len(payloads)).Msg("movements retrieved")
	return payloads, raw, nil
}
