package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "value-finder", Version: "1.0.0", Port: "0"})

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, s.Handler(), path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "value-finder", resp.Service)
	}
}

func TestReadyReflectsStateAndDatabase(t *testing.T) {
	db := &mockPinger{}
	db.On("Ping").Return(nil).Once()
	db.On("Ping").Return(errors.New("connection refused"))
	s := NewServer(Config{ServiceName: "value-finder", Port: "0", DB: db})

	s.SetReady(true)
	s.RecordRun(RunStatus{RunID: "r1", FinishedAt: time.Now(), ValueBets: 3})

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, 3, resp.LastRun.ValueBets)
	assert.Equal(t, "ok", resp.Checks["database"])

	rec = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestReadyBeforeSetReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "value-finder", Port: "0"})
	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("value_finder_runs_total 1\n"))
	})
	s := NewServer(Config{ServiceName: "value-finder", Port: "0", Metrics: metrics})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "value_finder_runs_total")

	bare := NewServer(Config{ServiceName: "value-finder", Port: "0"})
	assert.Equal(t, http.StatusNotFound, get(t, bare.Handler(), "/metrics").Code)
}
