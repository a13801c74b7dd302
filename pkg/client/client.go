// Package client provides a rate-limited, retrying HTTP client for JSON
// REST APIs. The client enforces a minimum interval between requests,
// retries transient failures with exponential backoff, and leaves HTTP
// status checking to the caller via Response.EnsureSuccess.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danelimjoco/2025-external-rest-practice/pkg/ratelimit"
)

// Prometheus metrics for client requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restclient_requests_total",
		Help: "Total requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restclient_request_duration_seconds",
		Help:    "Request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restclient_errors_total",
		Help: "Total request errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to request paths that are not absolute URLs.
	BaseURL string

	// RequestsPerSecond caps the request rate. The client never issues two
	// requests closer together than the reciprocal of this value, measured
	// from the end of one request to the start of the next.
	RequestsPerSecond float64

	// Token authenticates requests issued with RequestOptions.Authenticated.
	// It is sent as "Authorization: token <value>".
	Token string

	// Timeout is the default per-request timeout (connect plus read).
	Timeout time.Duration

	// Retry is the transient-failure retry policy.
	Retry RetryPolicy

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 1.0,
		Timeout:           30 * time.Second,
		Retry:             DefaultRetryPolicy(),
		UserAgent:         "rest-practice/1.0",
	}
}

// Client is a rate-limited, retrying JSON API client. Create one per
// logical workload and reuse it across calls; the underlying transport
// keeps connections to the same host alive.
type Client struct {
	httpClient *http.Client
	pacer      *ratelimit.Pacer
	config     Config
	logger     zerolog.Logger
}

// New creates a new client. A zero or negative rate is rejected here, at
// construction, never deferred to the first call.
func New(cfg Config) (*Client, error) {
	logger := log.With().Str("component", "rest-client").Logger()

	pacer, err := ratelimit.NewPacer(cfg.RequestsPerSecond, logger)
	if err != nil {
		return nil, &ConfigError{Field: "requests_per_second", Reason: err.Error()}
	}

	if cfg.Retry.MaxRetries < 0 {
		return nil, &ConfigError{Field: "retry.max_retries", Reason: fmt.Sprintf("must not be negative (got %d)", cfg.Retry.MaxRetries)}
	}
	if cfg.Retry.RetryableStatus == nil && cfg.Retry.InitialBackoff == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "rest-practice/1.0"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		pacer:  pacer,
		config: cfg,
		logger: logger,
	}, nil
}

// RequestOptions is the per-call configuration bag.
type RequestOptions struct {
	// Headers are added to the request.
	Headers http.Header

	// Query parameters are appended to the URL.
	Query url.Values

	// JSON, when non-nil, is marshalled as the request body.
	JSON any

	// Timeout overrides the client timeout for this call.
	Timeout time.Duration

	// Authenticated sends the configured token with the request. A missing
	// token fails before any network activity.
	Authenticated bool
}

// Request performs an HTTP request with rate limiting and retries. Error
// statuses outside the retryable set do not produce an error; the caller
// checks them through Response.EnsureSuccess.
func (c *Client) Request(ctx context.Context, method, rawURL string, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	if opts.Authenticated && c.config.Token == "" {
		return nil, &ConfigError{Field: "token", Reason: "authenticated request without a configured token"}
	}

	u, err := c.resolveURL(rawURL, opts.Query)
	if err != nil {
		return nil, err
	}

	var body []byte
	if opts.JSON != nil {
		body, err = json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	hc := c.httpClient
	if opts.Timeout > 0 {
		// Copy shares the transport, so pooled connections are reused.
		override := *c.httpClient
		override.Timeout = opts.Timeout
		hc = &override
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(u.Path).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}
	defer c.pacer.Record()

	c.logger.Debug().
		Str("endpoint", u.Path).
		Str("method", method).
		Msg("Executing request")

	resp, err := c.dispatch(ctx, hc, method, u, body, opts)
	if err != nil {
		return nil, err
	}

	return &Response{Response: resp}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodGet, url, opts)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, url string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPost, url, opts)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, url string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPut, url, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, url, opts)
}

// dispatch runs the retry loop around the transport. Each attempt gets a
// fresh request so the body reader is rewound.
func (c *Client) dispatch(ctx context.Context, hc *http.Client, method string, u *url.URL, body []byte, opts *RequestOptions) (*http.Response, error) {
	policy := c.config.Retry

	var lastStatus *StatusError
	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := policy.backoffFor(attempt)
			retriesTotal.WithLabelValues(string(lastClass)).Inc()
			retryBackoffSeconds.WithLabelValues(string(lastClass)).Observe(backoff.Seconds())

			c.logger.Warn().
				Str("endpoint", u.Path).
				Str("error_class", string(lastClass)).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying request after backoff")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := c.newRequest(ctx, method, u, body, opts)
		if err != nil {
			return nil, err
		}

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = nil
			lastClass = ErrorClassNetwork
			if isTimeout(err) {
				lastClass = ErrorClassTimeout
			}
			errorsTotal.WithLabelValues(string(lastClass)).Inc()
			requestsTotal.WithLabelValues(u.Path, "network_error").Inc()

			c.logger.Warn().
				Err(err).
				Str("endpoint", u.Path).
				Str("error_class", string(lastClass)).
				Msg("Request failed")
			continue
		}

		if resp.StatusCode >= 400 && policy.retryableStatusCode(resp.StatusCode) {
			lastStatus = &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: u.String()}
			lastErr = nil
			lastClass = classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(lastClass)).Inc()
			requestsTotal.WithLabelValues(u.Path, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", u.Path).
				Int("status", resp.StatusCode).
				Str("error_class", string(lastClass)).
				Msg("Retryable error status")

			// Release the connection before the next attempt.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		requestsTotal.WithLabelValues(u.Path, strconv.Itoa(resp.StatusCode)).Inc()
		if resp.StatusCode >= 400 {
			errorsTotal.WithLabelValues(string(classifyStatus(resp.StatusCode))).Inc()
		}
		if attempt > 0 {
			c.logger.Info().
				Str("endpoint", u.Path).
				Int("attempt", attempt+1).
				Msg("Request succeeded after retry")
		}
		return resp, nil
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Warn().
		Str("endpoint", u.Path).
		Str("error_class", string(lastClass)).
		Int("max_attempts", policy.MaxRetries+1).
		Msg("Retry attempts exhausted")

	if lastStatus != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, policy.MaxRetries+1, lastStatus)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, policy.MaxRetries+1, &TransportError{
		URL:     u.String(),
		Timeout: lastClass == ErrorClassTimeout,
		Err:     lastErr,
	})
}

// newRequest builds one request attempt.
func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, body []byte, opts *RequestOptions) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if opts.Authenticated {
		req.Header.Set("Authorization", "token "+c.config.Token)
	}

	return req, nil
}

// resolveURL joins the base URL with relative paths and merges query params.
func (c *Client) resolveURL(rawURL string, query url.Values) (*url.URL, error) {
	if c.config.BaseURL != "" && !strings.Contains(rawURL, "://") {
		rawURL = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(rawURL, "/")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL %q: %w", rawURL, err)
	}

	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u, nil
}

// isTimeout reports whether a transport error was a connect or read timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetClock sets the pacer's clock (for testing).
func (c *Client) SetClock(clock ratelimit.Clock) {
	c.pacer.SetClock(clock)
}

// HTTPClient returns the underlying transport handle, shared with
// collaborators that issue their own requests (streaming).
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
