package wowapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tokenServer(t *testing.T, expiresIn int, failuresBeforeSuccess int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failuresBeforeSuccess {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-abc",
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTokenManager_FetchesAndCachesToken(t *testing.T) {
	srv, calls := tokenServer(t, 3600, 0)

	tm := NewTokenManager("id", "secret", srv.URL, 60*time.Second, nil)
	tok, err := tm.CurrentToken(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)

	tok2, err := tm.CurrentToken(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, "tok-abc", tok2)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestTokenManager_RefreshesNearExpiry(t *testing.T) {
	srv, calls := tokenServer(t, 1, 0) // token "expires" almost immediately

	tm := NewTokenManager("id", "secret", srv.URL, 60*time.Second, nil)
	_, err := tm.CurrentToken(t.Context())
	assert.NoError(t, err)

	_, err = tm.CurrentToken(t.Context())
	assert.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestTokenManager_InvalidateForcesRefresh(t *testing.T) {
	srv, calls := tokenServer(t, 3600, 0)

	tm := NewTokenManager("id", "secret", srv.URL, 60*time.Second, nil)
	_, err := tm.CurrentToken(t.Context())
	assert.NoError(t, err)

	tm.Invalidate()
	_, err = tm.CurrentToken(t.Context())
	assert.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestTokenManager_RetriesTransientFailures(t *testing.T) {
	srv, calls := tokenServer(t, 3600, 1) // first attempt fails, second succeeds

	tm := NewTokenManager("id", "secret", srv.URL, 60*time.Second, nil)
	tok, err := tm.CurrentToken(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestTokenManager_ExhaustsRetriesAndWrapsError(t *testing.T) {
	srv, _ := tokenServer(t, 3600, 100) // always fails

	tm := NewTokenManager("id", "secret", srv.URL, 60*time.Second, nil)
	_, err := tm.CurrentToken(t.Context())
	assert.Error(t, err)
}
