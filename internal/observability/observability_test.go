// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/optoscholar/pkg/types"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LoggingConfig
		wantErr bool
	}{
		{"default", types.LoggingConfig{}, false},
		{"json debug", types.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"console upper", types.LoggingConfig{Level: "INFO", Format: "console"}, false},
		{"bad level", types.LoggingConfig{Level: "chatty"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGateway("esearch", "ok", 0.1)
		m.IncStale()
		m.ObserveLibraryWrite("ok")
		m.ObserveAgentPoll("200")
	})
}

func TestMetricsCountAndTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveGateway("esearch", "ok", 0.2)
	m.ObserveGateway("esearch", "ok", 0.3)
	m.IncStale()
	m.ObserveLibraryWrite("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequests.WithLabelValues("esearch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResponses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LibraryWrites.WithLabelValues("failed")))

	path := filepath.Join(t.TempDir(), "optoscholar.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "optoscholar_session_stale_responses_total 1"))
}
