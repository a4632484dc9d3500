// Package wowapi talks to the Warcraft Logs v2 API: OAuth2 client-credentials
// token acquisition and the paginated GraphQL client built on top of it.
package wowapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/pullscope/pullscope/pkg/core"
)

// TokenManager holds the single current access token and refreshes it ahead
// of expiry. Concurrent callers racing a refresh are coalesced onto one
// upstream request via singleflight, mirroring how the cache package
// coalesces concurrent fetches for the same fingerprint.
type TokenManager struct {
	oauthCfg      clientcredentials.Config
	refreshMargin time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	current *oauth2.Token

	group singleflight.Group
}

// NewTokenManager builds a TokenManager against the given API base URL's
// /oauth/token endpoint.
func NewTokenManager(clientID, clientSecret, baseURL string, refreshMargin time.Duration, logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		oauthCfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     baseURL + "/oauth/token",
		},
		refreshMargin: refreshMargin,
		logger:        logger.With("component", "token_manager"),
	}
}

// CurrentToken returns a bearer token valid for at least the refresh margin,
// refreshing synchronously (coalesced across concurrent callers) if the
// cached token is absent or too close to expiry.
func (m *TokenManager) CurrentToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	tok := m.current
	m.mu.Unlock()

	if tok != nil && time.Until(tok.Expiry) > m.refreshMargin {
		return tok.AccessToken, nil
	}

	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(*oauth2.Token).AccessToken, nil
}

// Invalidate drops the cached token, forcing the next CurrentToken call to
// refresh. Used by the GraphQL client after a 401 response.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// refresh performs the client-credentials exchange, retrying on transport
// and server-side failures with a 100ms/400ms schedule jittered ±20%
// (three attempts total).
func (m *TokenManager) refresh(ctx context.Context) (*oauth2.Token, error) {
	schedule := newFixedSchedule([]time.Duration{100 * time.Millisecond, 400 * time.Millisecond}, 0.2)

	attempts := 0
	var tok *oauth2.Token
	operation := func() error {
		attempts++
		t, err := m.oauthCfg.Token(ctx)
		if err != nil {
			m.logger.Warn("token acquisition attempt failed", "attempt", attempts, "error", err)
			return err
		}
		tok = t
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(schedule, ctx))
	if err != nil {
		return nil, &core.TokenAcquireError{Attempts: attempts, Cause: err}
	}

	m.mu.Lock()
	m.current = tok
	m.mu.Unlock()
	m.logger.Info("token acquired", "expires_at", tok.Expiry, "attempts", attempts)
	return tok, nil
}
