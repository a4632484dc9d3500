package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pullscope/pullscope/pkg/core"
	"github.com/pullscope/pullscope/pkg/wowapi"
)

func oauthStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func testClient(t *testing.T, handler http.HandlerFunc) *wowapi.Client {
	t.Helper()
	oauth := oauthStub()
	t.Cleanup(oauth.Close)
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	tokens := wowapi.NewTokenManager("id", "secret", oauth.URL, 60*time.Second, nil)
	return wowapi.NewClient(api.URL, tokens, 5*time.Second, nil)
}

func eventsPage(data []map[string]any, next *int64) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"reportData": map[string]any{
				"report": map[string]any{
					"events": map[string]any{
						"data":              data,
						"nextPageTimestamp": next,
					},
				},
			},
		},
	}
}

func TestPageEvents_FollowsNextPageTimestampUntilEnd(t *testing.T) {
	var calls int32
	next1 := int64(1000)
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		switch n {
		case 1:
			_ = json.NewEncoder(w).Encode(eventsPage([]map[string]any{{"timestamp": float64(1)}}, &next1))
		default:
			_ = json.NewEncoder(w).Encode(eventsPage([]map[string]any{{"timestamp": float64(2)}}, nil))
		}
	})

	events, err := pageEvents(t.Context(), client, "ABC123", "DamageTaken", nil, 0, 5000)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPageEvents_StopsWhenNextPageTimestampReachesEndTime(t *testing.T) {
	var calls int32
	next := int64(5000)
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(eventsPage([]map[string]any{{"timestamp": float64(1)}}, &next))
	})

	events, err := pageEvents(t.Context(), client, "ABC123", "DamageTaken", nil, 0, 5000)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPageEvents_DetectsStalledPagination(t *testing.T) {
	stuck := int64(500)
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(eventsPage([]map[string]any{{"timestamp": float64(1)}}, &stuck))
	})

	_, err := pageEvents(t.Context(), client, "ABC123", "DamageTaken", nil, 0, 5000)
	assert.ErrorIs(t, err, core.ErrPaginationStalled)
}

func TestPageEvents_AbilityIDUsesByAbilityQueryAndVariable(t *testing.T) {
	var sawVariable bool
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body.Variables["abilityID"]; ok {
			sawVariable = true
		}
		assert.Contains(t, body.Query, "$abilityID")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(eventsPage(nil, nil))
	})

	abilityID := 42
	_, err := pageEvents(t.Context(), client, "ABC123", "DamageTaken", &abilityID, 0, 5000)
	require.NoError(t, err)
	assert.True(t, sawVariable)
}
