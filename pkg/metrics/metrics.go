package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus instruments. A nil *Metrics is
// valid and records nothing, so components can take it optionally.
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchRetries  prometheus.Counter
	relogins      prometheus.Counter
	pushTotal     *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// New registers the engine instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_fetch_total",
			Help: "CMS page fetches by method and outcome.",
		}, []string{"method", "outcome"}),
		fetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_fetch_retries_total",
			Help: "CMS fetch attempts beyond the first.",
		}),
		relogins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_relogins_total",
			Help: "Interactive logins triggered by session expiry.",
		}),
		pushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_push_total",
			Help: "Form submissions by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cms_fetch_duration_seconds",
			Help:    "CMS fetch latency including retries.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "control_http_requests_total",
			Help: "Control API requests by method, path and status.",
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(m.fetchTotal, m.fetchRetries, m.relogins, m.pushTotal, m.fetchDuration, m.httpRequests)
	return m
}

func (m *Metrics) ObserveFetch(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(method, outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) FetchRetried() {
	if m == nil {
		return
	}
	m.fetchRetries.Inc()
}

func (m *Metrics) ReloginTriggered() {
	if m == nil {
		return
	}
	m.relogins.Inc()
}

func (m *Metrics) ObservePush(outcome string) {
	if m == nil {
		return
	}
	m.pushTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
}

// GinMiddleware counts control API requests by route template and status.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()))
	}
}
