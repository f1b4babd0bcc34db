package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstreamCountsOutcomes(t *testing.T) {
	m := New()

	m.ObserveUpstream("openai", 120*time.Millisecond, nil)
	m.ObserveUpstream("openai", 80*time.Millisecond, errors.New("boom"))
	m.ObserveUpstream("stripe", time.Second, nil)

	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("openai", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("openai", OutcomeFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("stripe", OutcomeSuccess)), 0)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/generate", http.MethodPost, http.StatusOK)
	m.ObserveUpstream("openai", time.Second, nil)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("/generate", http.MethodPost, http.StatusInternalServerError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `scribe_http_requests_total{method="POST",route="/generate",status="500"} 1`), body)
}
