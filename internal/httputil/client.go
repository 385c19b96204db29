// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned without contacting the server while the breaker
// is open after repeated failures.
var ErrCircuitOpen = errors.New("circuit breaker open")

// errServerStatus marks a 5xx response as a breaker failure. Do strips it
// before returning the response to the caller.
var errServerStatus = errors.New("server error status")

// Options configures a Client. Zero fields take defaults.
type Options struct {
	// Name labels the breaker in logs.
	Name string

	Timeout   time.Duration
	UserAgent string

	// RatePerSecond is the sustained request rate (default 3).
	RatePerSecond float64

	// Burst is the token bucket size (default 1).
	Burst int

	// MaxRetries bounds retries on throttled responses (default 3).
	MaxRetries int

	// Breaker tuning. The breaker trips when at least MinRequests were seen
	// in the current interval and the failure ratio reaches FailureRatio.
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration

	Logger *zap.Logger
}

// Client is an HTTP client that waits on a token bucket before every
// request, backs off on throttling, and stops calling a failing server for a
// while. It is safe for concurrent use.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	userAgent  string
	maxRetries int
	logger     *zap.Logger
}

// NewClient returns a Client configured by opts.
func NewClient(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 3
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MinRequests == 0 {
		opts.MinRequests = 5
	}
	if opts.FailureRatio <= 0 {
		opts.FailureRatio = 0.6
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("client", opts.Name))

	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= opts.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		logger:     logger,
	}
}

// Do sends req after waiting for the rate limiter. Transport errors and 5xx
// responses count against the breaker; 5xx responses are still returned to
// the caller with a nil error. While the breaker is open Do returns
// ErrCircuitOpen.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrCircuitOpen
	case errors.Is(err, errServerStatus):
		return out.(*http.Response), nil
	case err != nil:
		return nil, err
	}
	return out.(*http.Response), nil
}

// Get is a convenience wrapper for a GET request to url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(ctx, req)
}
