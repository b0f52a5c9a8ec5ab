package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/logging"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/matstat/internal/service"
)

// HeaderRequestID carries a per-attempt request identifier.
const HeaderRequestID = "X-Request-ID"

// UserAgent is sent on every request.
const UserAgent = "matstat-client/1.0"

// Config configures a Client.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RateLimit caps requests per second; zero means unlimited
	RateLimit float64
	Logger    *logging.Logger
}

// DefaultConfig targets a local server on the default port.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:3002",
		Timeout:      30 * time.Second,
		Retries:      3,
		RetryWait:    500 * time.Millisecond,
		RetryMaxWait: 10 * time.Second,
	}
}

// Client talks to a matstat server.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	mu      sync.RWMutex
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// New creates a client with retries, a rate limiter and a circuit breaker.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	// pooled transport tuned for a long-lived client
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(shouldRetry).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTransport(pooled.HTTPClient.Transport)
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}

	c := &Client{
		resty:   r,
		limiter: newLimiter(cfg.RateLimit),
		logger:  cfg.Logger,
	}
	c.breaker = resilience.New("matstat-api", resilience.Settings{
		MaxProbes: 2,
		Interval:  time.Minute,
		Cooldown:  15 * time.Second,
		ShouldTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && counts.FailureRatio() > 0.5)
		},
		IsFailure: isServerFailure,
		OnTransition: func(name string, from, to resilience.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetAuthToken(token)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = newLimiter(rps)
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Health checks the server is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit posts one matrix to /stats.
func (c *Client) Submit(ctx context.Context, m matrix.Matrix, opts ...SubmitOption) (*service.SingleResult, error) {
	body := submitBody(opts)
	body.Matrix = m

	var out service.SingleResult
	if err := c.do(ctx, http.MethodPost, "/stats", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitPair posts a Q/R pair to /stats.
func (c *Client) SubmitPair(ctx context.Context, q, r matrix.Matrix, opts ...SubmitOption) (*service.PairResult, error) {
	body := submitBody(opts)
	body.Q = q
	body.R = r

	var out service.PairResult
	if err := c.do(ctx, http.MethodPost, "/stats", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the history summary, optionally for one source.
func (c *Client) History(ctx context.Context, source string) (*service.HistorySummary, error) {
	var query map[string]string
	if source != "" {
		query = map[string]string{"source": source}
	}

	var out service.HistorySummary
	if err := c.do(ctx, http.MethodGet, "/stats/history", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearHistory empties the server's history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/stats/history", nil, nil, nil)
}

// do sends one logical call through the limiter and breaker and decodes a
// 2xx body into out. Non-2xx answers become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	headers := map[string]string{HeaderRequestID: uuid.NewString()}
	tracing.InjectTraceContext(ctx, headers)

	resp, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		c.mu.RLock()
		req := c.resty.R().SetContext(ctx).SetHeaders(headers)
		c.mu.RUnlock()

		if query != nil {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return resp, newAPIError(resp)
		}
		return resp, nil
	})
	if errors.Is(err, resilience.ErrOpen) || errors.Is(err, resilience.ErrProbeLimit) {
		return fmt.Errorf("matstat unavailable: %w", err)
	}
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", headers[HeaderRequestID]),
			zap.Error(err),
		)
		return err
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type submitRequest struct {
	Matrix    matrix.Matrix `json:"matrix,omitempty"`
	Q         matrix.Matrix `json:"q,omitempty"`
	R         matrix.Matrix `json:"r,omitempty"`
	Source    string        `json:"source,omitempty"`
	Tolerance *float64      `json:"tolerance,omitempty"`
}

// SubmitOption adjusts a stats submission.
type SubmitOption func(*submitRequest)

// WithSource labels the submission.
func WithSource(source string) SubmitOption {
	return func(r *submitRequest) { r.Source = source }
}

// WithTolerance overrides the server's off-diagonal tolerance.
func WithTolerance(tol float64) SubmitOption {
	return func(r *submitRequest) { r.Tolerance = &tol }
}

func submitBody(opts []SubmitOption) *submitRequest {
	body := &submitRequest{}
	for _, opt := range opts {
		opt(body)
	}
	return body
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
}

// shouldRetry defers to retryablehttp's policy: connection errors, 429 and
// 5xx other than 501 are retried.
func shouldRetry(resp *resty.Response, err error) bool {
	ctx := context.Background()
	var raw *http.Response
	if resp != nil {
		raw = resp.RawResponse
		if resp.Request != nil {
			ctx = resp.Request.Context()
		}
	}
	if raw == nil && err == nil {
		return false
	}

	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
	return retry
}

// isServerFailure keeps 4xx answers from tripping the breaker.
func isServerFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
