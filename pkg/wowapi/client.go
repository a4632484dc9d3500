package wowapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/pullscope/pullscope/pkg/core"
)

// Client is the GraphQL client for the Warcraft Logs v2 API. One Client is
// shared process-wide; its *http.Client pools connections and its circuit
// breaker trips on sustained upstream failure regardless of which caller
// tripped it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	breaker    *gobreaker.CircuitBreaker[*httpResult]
	logger     *slog.Logger
}

// NewClient builds a GraphQL client against baseURL+"/client/api/v2/client",
// authenticating via tokens and tripping its circuit breaker after five
// consecutive transport failures (network or body-read errors); HTTP 5xx
// and 429 responses do not count toward tripping it.
func NewClient(baseURL string, tokens *TokenManager, httpTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "wowapi_client")

	breaker := gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:        "wowapi-graphql",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
		tokens:  tokens,
		breaker: breaker,
		logger:  logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// permanentError marks an error as not worth retrying.
type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Execute runs a GraphQL query and decodes its "data" field into out.
// Transport errors, 5xx, and 429 responses are retried on a
// 250ms/1s/4s/8s schedule (five attempts total); a 429's Retry-After
// header overrides the next scheduled delay. A single 401 triggers one
// token refresh and immediate retry outside the schedule's attempt count.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	schedule := newFixedSchedule([]time.Duration{250 * time.Millisecond, time.Second, 4 * time.Second, 8 * time.Second}, 0)

	attempts := 0
	authRetried := false
	var lastErr error

	operation := func() error {
		attempts++
		data, retryAfter, err := c.attempt(ctx, query, variables, &authRetried)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				lastErr = perm.err
				return backoff.Permanent(perm.err)
			}
			if retryAfter > 0 {
				schedule.OverrideNext(retryAfter)
			}
			lastErr = err
			return err
		}
		return json.Unmarshal(data, out)
	}

	err := backoff.Retry(operation, backoff.WithContext(schedule, ctx))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return core.ErrCanceled
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.ErrTimeout
		}
		c.logger.Error("graphql request exhausted retries", "attempts", attempts, "error", lastErr)
		return lastErr
	}
	return nil
}

// attempt performs a single HTTP round trip through the circuit breaker.
// It returns the decoded "data" payload, or a non-zero retryAfter when the
// caller should honor an upstream Retry-After header.
func (c *Client) attempt(ctx context.Context, query string, variables map[string]any, authRetried *bool) (json.RawMessage, time.Duration, error) {
	token, err := c.tokens.CurrentToken(ctx)
	if err != nil {
		return nil, 0, &permanentError{err}
	}

	r, err := c.breaker.Execute(func() (*httpResult, error) {
		return c.doOnce(ctx, query, variables, token)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, 0, &permanentError{fmt.Errorf("%w: circuit breaker open", core.ErrUpstreamUnavailable)}
		}
		return nil, 0, err
	}

	switch {
	case r.status == http.StatusUnauthorized && !*authRetried:
		*authRetried = true
		c.tokens.Invalidate()
		return c.attempt(ctx, query, variables, authRetried)
	case r.status == http.StatusUnauthorized:
		return nil, 0, &permanentError{core.ErrUnauthorized}
	case r.status == http.StatusTooManyRequests:
		return nil, r.retryAfter, fmt.Errorf("%w: rate limited", core.ErrRateLimited)
	case r.status >= 500:
		return nil, 0, fmt.Errorf("%w: upstream status %d", core.ErrUpstreamUnavailable, r.status)
	case r.status >= 400:
		return nil, 0, &permanentError{fmt.Errorf("%w: upstream status %d", core.ErrBadRequest, r.status)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(r.body, &gqlResp); err != nil {
		return nil, 0, &permanentError{fmt.Errorf("decode graphql response: %w", err)}
	}
	if len(gqlResp.Errors) > 0 {
		first := gqlResp.Errors[0]
		return nil, 0, &permanentError{&core.QueryError{Message: first.Message, Path: first.Path}}
	}
	return gqlResp.Data, 0, nil
}

type httpResult struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

func (c *Client) doOnce(ctx context.Context, query string, variables map[string]any, token string) (*httpResult, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, &permanentError{fmt.Errorf("encode graphql request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/client/api/v2/client", bytes.NewReader(payload))
	if err != nil {
		return nil, &permanentError{fmt.Errorf("build graphql request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", core.ErrUpstreamUnavailable, err)
	}

	return &httpResult{
		status:     resp.StatusCode,
		body:       body,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}
