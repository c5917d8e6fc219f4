package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Review submission outcomes.
const (
	ReviewCreated  = "created"
	ReviewUpdated  = "updated"
	ReviewRejected = "rejected"
	ReviewFailed   = "failed"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "freelance",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freelance",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "freelance",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	reviewsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freelance",
			Subsystem: "reviews",
			Name:      "submitted_total",
			Help:      "Review submissions by outcome.",
		},
		[]string{"outcome"},
	)

	reviewNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freelance",
			Subsystem: "reviews",
			Name:      "notifications_total",
			Help:      "Review notification emails by result.",
		},
		[]string{"success"},
	)

	reputationRecomputes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "freelance",
			Subsystem: "reputation",
			Name:      "recomputes_total",
			Help:      "Number of reputation aggregates rebuilt.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reviewsSubmitted,
		reviewNotifications,
		reputationRecomputes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func InFlightInc() { httpInFlight.Inc() }
func InFlightDec() { httpInFlight.Dec() }

// RecordHTTPRequest takes the route template, not the raw path, so label
// cardinality stays bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordReviewSubmission(outcome string) {
	reviewsSubmitted.WithLabelValues(outcome).Inc()
}

func RecordReviewNotification(success bool) {
	reviewNotifications.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordReputationRecompute() {
	reputationRecomputes.Inc()
}
