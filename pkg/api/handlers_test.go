package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pullscope/pullscope/pkg/cache"
	"github.com/pullscope/pullscope/pkg/config"
	"github.com/pullscope/pullscope/pkg/orchestrator"
	"github.com/pullscope/pullscope/pkg/queue"
	"github.com/pullscope/pullscope/pkg/report"
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

func reportAPIStub(delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")

		if req.Query == wowapi.MasterDataQuery() {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"reportData": map[string]any{
						"report": map[string]any{
							"title":     "Test Report",
							"startTime": 0,
							"endTime":   10000,
							"masterData": map[string]any{
								"actors": []map[string]any{
									{"id": 1, "name": "Alice", "type": "Player", "subType": "Warrior", "specs": []string{"Protection"}},
								},
							},
							"fights": []map[string]any{
								{"id": 1, "name": "Nexus", "boss": 7, "startTime": 0, "endTime": 10000, "kill": true},
							},
						},
					},
				},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"reportData": map[string]any{
					"report": map[string]any{
						"events": map[string]any{
							"data":              []map[string]any{},
							"nextPageTimestamp": nil,
						},
					},
				},
			},
		})
	}))
}

func newTestRouter(t *testing.T, fastReturn, reportDelay time.Duration) (http.Handler, func()) {
	t.Helper()
	oauth := oauthStub()
	api := reportAPIStub(reportDelay)

	tokens := wowapi.NewTokenManager("id", "secret", oauth.URL, 60*time.Second, nil)
	client := wowapi.NewClient(api.URL, tokens, 5*time.Second, nil)
	fetcher := report.NewFetcher(client, 4, nil)
	snapCache := cache.New(16, time.Minute)
	pool := queue.NewPool(2, time.Minute, time.Minute, nil)
	cfg := &config.Config{FastReturnThreshold: fastReturn}
	orch := orchestrator.New(cfg, fetcher, snapCache, pool, nil)

	router := NewRouter(orch, nil)

	cleanup := func() {
		pool.Close()
		api.Close()
		oauth.Close()
	}
	return router, cleanup
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz_ReturnsOK(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostAnalyze_MissingRequiredFieldReturnsBadRequest(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/v1/analyze", map[string]any{"fight_filter": "nexus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostAnalyze_FastCompletionReturnsOK(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/v1/analyze", map[string]any{
		"report_codes": []string{"ABC123"},
		"analyzer_id":  "hits",
		"ability_ids":  []int{99},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hits", body["Analyzer"])
}

func TestPostAnalyze_UnknownAnalyzerReturnsBadRequest(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/v1/analyze", map[string]any{
		"report_codes": []string{"ABC123"},
		"analyzer_id":  "not-a-real-analyzer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob_InvalidIDReturnsBadRequest(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob_UnknownIDReturnsNotFound(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodGet, "/v1/jobs/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelJob_UnknownIDReturnsNotFound(t *testing.T) {
	router, cleanup := newTestRouter(t, time.Second, 0)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/v1/jobs/00000000-0000-0000-0000-000000000000/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostAnalyze_SlowFetchReturnsAcceptedWithJobHandle(t *testing.T) {
	router, cleanup := newTestRouter(t, 5*time.Millisecond, 50*time.Millisecond)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/v1/analyze", map[string]any{
		"report_codes": []string{"ABC123"},
		"analyzer_id":  "hits",
		"ability_ids":  []int{99},
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var handle struct {
		ID    string `json:"ID"`
		State string `json:"State"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &handle))
	assert.NotEmpty(t, handle.ID)

	// Fetch the job once, confirming the get-job route resolves the
	// returned id.
	getRec := doJSON(t, router, http.MethodGet, "/v1/jobs/"+handle.ID, nil)
	assert.Equal(t, http.StatusOK, getRec.Code)
}
