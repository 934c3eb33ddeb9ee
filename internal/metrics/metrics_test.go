package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector()

	c.RecordAttempt("out_of_stock", 10*time.Millisecond)
	c.RecordAttempt("out_of_stock", 10*time.Millisecond)
	c.RecordAttempt("success", time.Second)
	c.RecordNotification(true)
	c.RecordNotification(false)
	c.SetActiveQueues(3)
	c.RecordAvailabilityRefresh(false)
	c.RecordHTTPRequest("GET", "/api/queue", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Attempts.WithLabelValues("out_of_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Attempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Notifications.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.ActiveQueues))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AvailabilityRefresh.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("GET", "/api/queue", "200")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordAttempt("success", time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `ovh_sniper_purchase_attempts_total{outcome="success"} 1`)
}
