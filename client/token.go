// client/token.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrAuth marks a failed OAuth token exchange. No fetch unit can
// proceed without a token, so the orchestrator treats it as fatal.
var ErrAuth = errors.New("authentication failed")

// Tokens expiring within this margin are refreshed proactively rather
// than risked against clock skew mid-request.
const tokenRefreshMargin = 5 * time.Minute

// Fallback when the token endpoint omits expires_in.
const defaultTokenTTL = 3600 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenSource obtains and caches an OAuth client-credentials bearer
// token. Concurrent callers near expiry collapse into a single
// in-flight exchange.
type TokenSource struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string
	log          zerolog.Logger

	now   func() time.Time
	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource builds a token source for the given auth endpoint and
// client-credentials pair.
func NewTokenSource(httpClient *http.Client, authURL, clientID, clientSecret string, log zerolog.Logger) *TokenSource {
	return &TokenSource{
		httpClient:   httpClient,
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log.With().Str("component", "token_source").Logger(),
		now:          time.Now,
	}
}

// Token returns a bearer token valid for at least the refresh margin,
// exchanging credentials only when the cached one is missing or close
// to expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	if ts.token != "" && ts.now().Before(ts.expiresAt.Add(-tokenRefreshMargin)) {
		token := ts.token
		ts.mu.Unlock()
		return token, nil
	}
	ts.mu.Unlock()

	v, err, _ := ts.group.Do("token", func() (interface{}, error) {
		return ts.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (ts *TokenSource) exchange(ctx context.Context) (string, error) {
	ts.log.Debug().Msg("requesting new OAuth token")

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", ts.clientID)
	form.Set("client_secret", ts.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request: %v", ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrAuth, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response: %v", ErrAuth, err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: malformed token response: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrAuth)
	}

	ttl := defaultTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	ts.mu.Lock()
	ts.token = tr.AccessToken
	ts.expiresAt = ts.now().Add(ttl)
	ts.mu.Unlock()

	ts.log.Debug().Dur("ttl", ttl).Msg("OAuth token obtained")
	return tr.AccessToken, nil
}
