// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent drives the asynchronous research agent webhook: a POST
// starts a run, then the status endpoint is polled at a fixed interval until
// the run finishes, fails, or the attempt cap is reached.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/httputil"
	"github.com/pdiddy/optoscholar/internal/observability"
	"github.com/pdiddy/optoscholar/pkg/types"
)

const (
	defaultPollInterval = time.Second
	defaultMaxAttempts  = 60
)

var (
	// ErrAgentTimeout is returned when the run has not finished after the
	// configured number of status polls.
	ErrAgentTimeout = errors.New("research agent timed out")

	// ErrNotConfigured is returned when no agent base URL is set.
	ErrNotConfigured = errors.New("research agent base URL not configured")
)

// StatusError records an unexpected HTTP status from the agent.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("research agent %s returned HTTP %d", e.Op, e.StatusCode)
}

// Client runs queries against the agent webhook.
type Client struct {
	baseURL     string
	interval    time.Duration
	maxAttempts int
	http        *httputil.Client
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// New returns a Client for cfg. A nil http client gets a default one.
func New(cfg types.AgentConfig, client *httputil.Client, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	logger = observability.OrNop(logger).With(zap.String("component", "agent"))
	if client == nil {
		client = httputil.NewClient(httputil.Options{
			Name:          "agent",
			Timeout:       cfg.Timeout,
			UserAgent:     cfg.UserAgent,
			RatePerSecond: 5,
			Logger:        logger,
		})
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		interval:    cfg.PollInterval,
		maxAttempts: cfg.MaxAttempts,
		http:        client,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run starts a run for query and waits for its response text.
func (c *Client) Run(ctx context.Context, query string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	runID, err := c.start(ctx, query)
	if err != nil {
		return "", err
	}
	log := c.logger.With(zap.String("run_id", runID))
	log.Debug("agent run started")

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}

		text, done, err := c.poll(ctx, runID)
		if err != nil {
			return "", err
		}
		if done {
			log.Debug("agent run finished", zap.Int("attempts", attempt))
			return text, nil
		}
		timer.Reset(c.interval)
	}

	log.Warn("agent run timed out", zap.Int("attempts", c.maxAttempts))
	return "", fmt.Errorf("%w after %d polls", ErrAgentTimeout, c.maxAttempts)
}

func (c *Client) start(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(map[string]string{"user_input": query})
	if err != nil {
		return "", fmt.Errorf("encoding agent request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/async", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("starting agent run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Op: "start", StatusCode: resp.StatusCode}
	}

	var out struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding agent start response: %w", err)
	}
	if out.RunID == "" {
		return "", fmt.Errorf("agent start response has no run_id")
	}
	return out.RunID, nil
}

// poll checks the run once. done is true when the response is available.
func (c *Client) poll(ctx context.Context, runID string) (string, bool, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/status/"+runID)
	if err != nil {
		return "", false, fmt.Errorf("polling agent run: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveAgentPoll(strconv.Itoa(resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Response json.RawMessage `json:"response"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", false, fmt.Errorf("decoding agent response: %w", err)
		}
		return responseText(out.Response), true, nil
	case http.StatusAccepted, http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return "", false, nil
	}
	return "", false, &StatusError{Op: "status", StatusCode: resp.StatusCode}
}

// responseText returns a JSON string payload unquoted and any other payload
// as raw JSON.
func responseText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
