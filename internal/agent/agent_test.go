// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/optoscholar/internal/httputil"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// agentServer starts runs with id "run-1" and answers status polls with
// pending until the finishAfter-th poll, then with final.
func agentServer(t *testing.T, finishAfter int32, final int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/async":
			var in map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "dry eye treatments", in["user_input"])
			w.Write([]byte(`{"run_id":"run-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/status/run-1":
			n := atomic.AddInt32(&polls, 1)
			if n < finishAfter {
				if n%2 == 0 {
					w.WriteHeader(http.StatusAccepted)
				} else {
					w.WriteHeader(http.StatusNoContent)
				}
				return
			}
			w.WriteHeader(final)
			w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return ts, &polls
}

func newTestClient(ts *httptest.Server, attempts int) *Client {
	return New(types.AgentConfig{
		BaseURL:      ts.URL,
		PollInterval: time.Millisecond,
		MaxAttempts:  attempts,
	}, httputil.NewClient(httputil.Options{RatePerSecond: 1000, Burst: 10}), nil, nil)
}

func TestRunPollsUntilDone(t *testing.T) {
	ts, polls := agentServer(t, 4, http.StatusOK, `{"response":"Artificial tears remain first line."}`)
	defer ts.Close()

	text, err := newTestClient(ts, 10).Run(context.Background(), "dry eye treatments")
	require.NoError(t, err)
	assert.Equal(t, "Artificial tears remain first line.", text)
	assert.Equal(t, int32(4), atomic.LoadInt32(polls))
}

func TestRunObjectResponse(t *testing.T) {
	ts, _ := agentServer(t, 1, http.StatusOK, `{"response":{"answer":42}}`)
	defer ts.Close()

	text, err := newTestClient(ts, 3).Run(context.Background(), "dry eye treatments")
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":42}`, text)
}

func TestRunTimesOut(t *testing.T) {
	ts, polls := agentServer(t, 1000, http.StatusOK, "")
	defer ts.Close()

	_, err := newTestClient(ts, 5).Run(context.Background(), "dry eye treatments")
	assert.ErrorIs(t, err, ErrAgentTimeout)
	assert.Equal(t, int32(5), atomic.LoadInt32(polls))
}

func TestRunStatusError(t *testing.T) {
	ts, _ := agentServer(t, 2, http.StatusNotFound, "")
	defer ts.Close()

	_, err := newTestClient(ts, 10).Run(context.Background(), "dry eye treatments")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "status", se.Op)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestRunStartFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusUnauthorized, ""},
		{"missing run id", http.StatusOK, `{}`},
		{"not json", http.StatusOK, `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestClient(ts, 3).Run(context.Background(), "q")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrAgentTimeout)
		})
	}
}

func TestRunContextCancelled(t *testing.T) {
	ts, _ := agentServer(t, 1000, http.StatusOK, "")
	defer ts.Close()

	c := New(types.AgentConfig{BaseURL: ts.URL, PollInterval: time.Hour},
		httputil.NewClient(httputil.Options{RatePerSecond: 1000}), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Run(ctx, "dry eye treatments")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunNotConfigured(t *testing.T) {
	_, err := New(types.AgentConfig{}, nil, nil, nil).Run(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
