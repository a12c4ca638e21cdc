package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "applytrack"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	gatherer prometheus.Gatherer

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	authEventsTotal    *prometheus.CounterVec
	sessionLookups     *prometheus.CounterVec
	applicationsListed prometheus.Histogram
	rateLimitedTotal   *prometheus.CounterVec
}

// NewPrometheus registers the application collectors on a fresh registry
// that also carries the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		gatherer: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Sign-up, sign-in and sign-out attempts",
			},
			[]string{"event", "outcome"},
		),
		sessionLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_lookups_total",
				Help:      "Session resolutions",
			},
			[]string{"outcome"},
		),
		applicationsListed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "applications_page_size",
				Help:      "Applications returned per list request",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		rateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratelimit_rejected_total",
				Help:      "Rate limit rejections",
			},
			[]string{"scope"},
		),
	}

	reg.MustRegister(
		p.requestsTotal,
		p.requestDuration,
		p.authEventsTotal,
		p.sessionLookups,
		p.applicationsListed,
		p.rateLimitedTotal,
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records a served request.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncAuthEvent records an auth event.
func (p *PrometheusRecorder) IncAuthEvent(event, outcome string) {
	p.authEventsTotal.WithLabelValues(event, outcome).Inc()
}

// IncSessionLookup records a session resolution.
func (p *PrometheusRecorder) IncSessionLookup(outcome string) {
	p.sessionLookups.WithLabelValues(outcome).Inc()
}

// ObserveApplicationsListed records a list page size.
func (p *PrometheusRecorder) ObserveApplicationsListed(count int) {
	p.applicationsListed.Observe(float64(count))
}

// IncRateLimited records a rate limit rejection.
func (p *PrometheusRecorder) IncRateLimited(scope string) {
	p.rateLimitedTotal.WithLabelValues(scope).Inc()
}
