package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "saves",
			Name:      "attempts_total",
			Help:      "Save pipeline outcomes by result: sent, suppressed, failed.",
		},
		[]string{"result"},
	)

	creates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "applications",
			Name:      "creates_total",
			Help:      "Combined borrower-and-application create calls.",
		},
		[]string{"success"},
	)

	progressMarks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "progress",
			Name:      "section_marks_total",
			Help:      "Best-effort progress section marks by outcome.",
		},
		[]string{"success"},
	)

	progressDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "progress",
			Name:      "marks_dropped_total",
			Help:      "Progress marks dropped because the dispatch queue was full.",
		},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Duration of calls to the loan-origination API.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		saves,
		creates,
		progressMarks,
		progressDropped,
		backendDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSave records one trip through the save pipeline. result is one of
// "sent", "suppressed", "failed".
func RecordSave(result string) {
	saves.WithLabelValues(result).Inc()
}

// RecordCreate records a combined create call.
func RecordCreate(success bool) {
	creates.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordProgressMark records a best-effort section mark attempt.
func RecordProgressMark(success bool) {
	progressMarks.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordProgressDropped counts a mark shed because the queue was full.
func RecordProgressDropped() {
	progressDropped.Inc()
}

// RecordBackendCall records the duration of one API call.
func RecordBackendCall(operation string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses application ids out of the label set so metric
// cardinality stays bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) > 2 && parts[0] == "api" {
		parts = parts[2:]
	}
	if parts[0] != "urla" {
		return "/" + parts[0]
	}
	if len(parts) < 3 || parts[1] != "applications" {
		return "/" + strings.Join(parts, "/")
	}
	parts[2] = ":id"
	return "/" + strings.Join(parts, "/")
}
