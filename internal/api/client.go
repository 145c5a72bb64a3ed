package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bankdesk/internal/config"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// TokenSource yields the current bearer token, if any. Satisfied by the
// state store.
type TokenSource interface {
	Token() (string, bool, error)
}

// Client is the authenticated request client for the banking API. It
// attaches the bearer token when present, maps non-2xx responses to typed
// errors, and never retries on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	breaker    *Breaker
	metrics    *Metrics
	logger     *slog.Logger
}

// NewClient creates a banking API client.
func NewClient(cfg *config.APIConfig, tokens TokenSource, metrics *Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst),
		breaker: NewBreaker(BreakerConfig{
			MaxFailures:     cfg.BreakerMaxFailures,
			ResetTimeout:    cfg.BreakerResetAfter,
			HalfOpenMaxSucc: DefaultBreakerConfig().HalfOpenMaxSucc,
		}),
		metrics: metrics,
		logger:  logger,
	}
}

// request issues one call and decodes the JSON response into out when out
// is non-nil. The bearer token is attached when the token source has one;
// requests go out bare otherwise and the server decides.
func (c *Client) request(ctx context.Context, operation, method, path string, body, out any) error {
	start := time.Now()

	if !c.breaker.Allow() {
		c.metrics.observe(operation, "breaker_open", start, c.breaker.State())
		return fmt.Errorf("%w: %v", ErrUnavailable, ErrCircuitOpen)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	token, ok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		c.metrics.observe(operation, "transport_error", start, c.breaker.State())
		c.logger.Warn("banking API unreachable",
			"operation", operation,
			"error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.breaker.RecordFailure()
		c.metrics.observe(operation, "transport_error", start, c.breaker.State())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.metrics.observe(operation, strconv.Itoa(resp.StatusCode), start, c.breaker.State())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The server answered; only 5xx counts against the breaker.
		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return &HTTPError{Status: resp.StatusCode, Detail: parseDetail(respBody)}
	}

	c.breaker.RecordSuccess()

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", operation, err)
		}
	}

	return nil
}

// parseDetail extracts the server's `detail` field, tolerating both the
// plain-string and structured validation shapes.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return detail
	}
	return string(envelope.Detail)
}
