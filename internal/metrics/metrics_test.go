package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value gathers reg and returns the counter or gauge value of the named series.
func value(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range metric.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	t.Fatalf("series %s%v not found", name, labels)
	return 0
}

func TestObserveAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAttempt("kraken", nil, time.Millisecond)
	m.ObserveAttempt("kraken", errors.New("boom"), time.Millisecond)
	m.ObserveAttempt("kraken", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, value(t, reg, "levelsentinel_source_attempts_total", map[string]string{"source": "kraken", "outcome": OutcomeSuccess}))
	assert.Equal(t, 2.0, value(t, reg, "levelsentinel_source_attempts_total", map[string]string{"source": "kraken", "outcome": OutcomeFailure}))
}

func TestObserveCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCycle(2*time.Second, 3)
	m.ObserveCycle(time.Second, 1)

	assert.Equal(t, 2.0, value(t, reg, "levelsentinel_cycles_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "levelsentinel_paused_pairs", nil))
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.AlertsTotal.WithLabelValues("1h", "SUPPORT").Inc()

	health := NewHealthStatus([]string{"kraken", "coinbase"})
	srv := httptest.NewServer(NewMux(reg, health))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	health := NewHealthStatus([]string{"kraken"})

	rec := httptest.NewRecorder()
	health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "starting", body["status"])

	health.SetCycle(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), []string{"SOL/USDT", "ADA/USDT"})

	rec = httptest.NewRecorder()
	health.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024-05-01T12:00:00Z", body["last_cycle_at"])
	assert.Equal(t, 1.0, body["cycles"])
	assert.Equal(t, []any{"ADA/USDT", "SOL/USDT"}, body["paused_pairs"])
}
