package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/profile", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.RecordRequest("/api/profile", http.MethodPost, http.StatusOK, 10*time.Millisecond)
	m.RecordError("/api/profile", "forbidden")
	m.RecordSessionIssued(true)
	m.RecordSessionResolution("authenticated")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodPost, "/api/profile", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/api/profile", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsIssued.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionResolves.WithLabelValues("authenticated")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.RecordError("/", "x")
		m.RecordSessionIssued(false)
		m.RecordSessionResolution("no_session")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordSessionIssued(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `pequemaths_sessions_issued_total{remember="false"} 1`))
}
