package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessionlab"

// Login results.
const (
	LoginSuccess   = "success"
	LoginFailure   = "failure"
	LoginThrottled = "throttled"
)

// Session rejection reasons.
const (
	RejectUnknown  = "unknown"
	RejectExpired  = "expired"
	RejectMismatch = "client_mismatch"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	logins           *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
	sessionRejection *prometheus.CounterVec
	captures         prometheus.Counter
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewRegistry creates a metrics registry for the named app.
func NewRegistry(app string) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "logins_total",
			Help:        "Login attempts by result.",
			ConstLabels: prometheus.Labels{"app": app},
		}, []string{"result"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "sessions_active",
			Help:        "Sessions currently stored.",
			ConstLabels: prometheus.Labels{"app": app},
		}),
		sessionRejection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "session_rejections_total",
			Help:        "Session cookies that failed validation, by reason.",
			ConstLabels: prometheus.Labels{"app": app},
		}, []string{"reason"}),
		captures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "captures_total",
			Help:        "Values received by the collector.",
			ConstLabels: prometheus.Labels{"app": app},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: prometheus.Labels{"app": app},
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: prometheus.Labels{"app": app},
			Buckets:     prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.reg.MustRegister(
		r.logins,
		r.sessionsActive,
		r.sessionRejection,
		r.captures,
		r.requests,
		r.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveLogin counts a login attempt.
func (r *Registry) ObserveLogin(result string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(result).Inc()
}

// SetSessionsActive records the current session count.
func (r *Registry) SetSessionsActive(n int) {
	if r == nil {
		return
	}
	r.sessionsActive.Set(float64(n))
}

// ObserveRejection counts a rejected session cookie.
func (r *Registry) ObserveRejection(reason string) {
	if r == nil {
		return
	}
	r.sessionRejection.WithLabelValues(reason).Inc()
}

// ObserveCapture counts a collector capture.
func (r *Registry) ObserveCapture() {
	if r == nil {
		return
	}
	r.captures.Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}
