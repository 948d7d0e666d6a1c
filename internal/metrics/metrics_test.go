package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRun(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("balanced", "success"))

	RecordRun("balanced", "success", 0.2, 1700000000)

	assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("balanced", "success")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(LastRunTimestamp))
}

func TestRecordQuotesRejected(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(QuotesRejectedTotal.WithLabelValues("edge"))

	RecordQuotesRejected(map[string]int{"edge": 3, "max_odds": 1})

	assert.Equal(t, before+3, testutil.ToFloat64(QuotesRejectedTotal.WithLabelValues("edge")))
}

func TestRecordValueBet(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(ValueBetsTotal.WithLabelValues("btts"))

	assert.NotPanics(t, func() {
		RecordValueBet("btts", 0.06, 0.55)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(ValueBetsTotal.WithLabelValues("btts")))
}

func TestUpdateUnmappedTeams(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count int
	}{
		{name: "none", count: 0},
		{name: "some", count: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateUnmappedTeams(tt.count)
			assert.Equal(t, float64(tt.count), testutil.ToFloat64(UnmappedTeams))
		})
	}
}

func TestWriteTextfile(t *testing.T) {
	InitRegistry()
	RecordMatchEvaluated()

	path := filepath.Join(t.TempDir(), "value_finder.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "value_finder_matches_evaluated_total")
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordCircuitBreakerTrip()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "value_finder_circuit_breaker_trips_total"))
}
