package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"proedualt/internal/config"
	"proedualt/internal/errors"
	"proedualt/internal/observability"

	"github.com/rs/xid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 8 << 20

// TokenSource returns the bearer token to attach to requests, or "" for none
type TokenSource func(ctx context.Context) string

// Client talks to the ProEduAlt backend
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	breaker     *CircuitBreaker
	limiter     *rate.Limiter
	metrics     *observability.Metrics
	logger      *errors.Logger
	tokenSource TokenSource
}

// NewClient creates a backend client. om may be nil.
func NewClient(cfg config.BackendConfig, logger *errors.Logger, om *observability.ObservabilityManager) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: om.Transport(http.DefaultTransport),
		},
		breaker: NewCircuitBreaker("API", cfg.CircuitBreaker, logger),
		metrics: om.Metrics(),
		logger:  logger,
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMin > 0 {
		perSecond := float64(cfg.RateLimit.RequestsPerMin) / 60.0
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(cfg.RateLimit.BurstCapacity, 1))
	}

	return c
}

// SetTokenSource attaches a bearer token to subsequent requests
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokenSource = ts
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Breaker exposes the circuit breaker for status reporting
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// response is a fully read backend response
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// request describes one backend call
type request struct {
	method      string
	endpoint    string // metric label, e.g. "/analyze/{userId}"
	path        string
	query       url.Values
	body        func() (io.Reader, string, error)
	contentType string
}

// do performs a request. A returned error always means the request never
// completed and is a network AppError; any HTTP response is returned as is.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.networkError(req, errors.ErrCodeNetworkTimeout, err)
		}
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := req.contentType
	if req.body != nil {
		b, ct, err := req.body()
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeInvalidRequest, "failed to build request body", err)
		}
		body = b
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build backend request", err)
	}

	requestID := xid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("Backend request", "method", req.method, "endpoint", req.endpoint, "request_id", requestID)

	start := time.Now()
	httpResp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		c.metrics.RecordBackendRequest(ctx, req.endpoint, 0, time.Since(start), err)
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, c.networkError(req, errors.ErrCodeCircuitOpen, err)
		}
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			return nil, c.networkError(req, errors.ErrCodeNetworkTimeout, err)
		}
		return nil, c.networkError(req, errors.ErrCodeBackendDown, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordBackendRequest(ctx, req.endpoint, httpResp.StatusCode, duration, err)
		return nil, c.networkError(req, errors.ErrCodeBackendDown, err)
	}

	var statusErr error
	if httpResp.StatusCode >= 400 {
		statusErr = fmt.Errorf("HTTP %d", httpResp.StatusCode)
	}
	c.metrics.RecordBackendRequest(ctx, req.endpoint, httpResp.StatusCode, duration, statusErr)

	c.logger.Debug("Backend response",
		"endpoint", req.endpoint,
		"status", httpResp.StatusCode,
		"bytes", len(data),
		"duration_ms", duration.Milliseconds(),
		"request_id", requestID)

	return &response{status: httpResp.StatusCode, body: data}, nil
}

func (c *Client) networkError(req request, code string, cause error) error {
	appErr := errors.NewNetworkError(code, "could not reach the backend", cause).
		WithContext("endpoint", req.endpoint).
		WithContext("method", req.method)
	c.logger.LogError(appErr, "Backend request failed")
	return appErr
}

// statusMessage is the fallback message for a failed HTTP status with no
// backend-provided detail
func statusMessage(status int) string {
	return fmt.Sprintf("The backend returned HTTP %d.", status)
}
