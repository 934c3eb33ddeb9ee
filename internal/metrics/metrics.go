package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ovh_sniper"

// Collector holds the process metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Attempts            *prometheus.CounterVec
	AttemptDuration     prometheus.Histogram
	Notifications       *prometheus.CounterVec
	ActiveQueues        prometheus.Gauge
	AvailabilityRefresh *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_attempts_total",
			Help:      "Purchase attempts by outcome (success, out_of_stock, provider, configuration, unexpected).",
		}, []string{"outcome"}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "purchase_attempt_duration_seconds",
			Help:      "Wall time of one purchase attempt.",
			Buckets:   prometheus.DefBuckets,
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications by delivery result.",
		}, []string{"result"}),
		ActiveQueues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_queue_items",
			Help:      "Queue items currently in the running state.",
		}),
		AvailabilityRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_refresh_total",
			Help:      "Catalog availability refreshes per plan by result.",
		}, []string{"result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Control API requests.",
		}, []string{"method", "route", "status_code"}),
	}
	reg.MustRegister(c.Attempts, c.AttemptDuration, c.Notifications, c.ActiveQueues,
		c.AvailabilityRefresh, c.HTTPRequestsTotal)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordAttempt(outcome string, d time.Duration) {
	c.Attempts.WithLabelValues(outcome).Inc()
	c.AttemptDuration.Observe(d.Seconds())
}

func (c *Collector) RecordNotification(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	c.Notifications.WithLabelValues(result).Inc()
}

func (c *Collector) SetActiveQueues(n int) {
	c.ActiveQueues.Set(float64(n))
}

func (c *Collector) RecordAvailabilityRefresh(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.AvailabilityRefresh.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int) {
	c.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}
