// Package metrics provides Prometheus metrics for resource serving.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	resourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pippo_resource_requests_total",
			Help: "Total number of resource requests by response status",
		},
		[]string{"status"},
	)

	resourceBytesStreamed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pippo_resource_bytes_streamed_total",
			Help: "Total bytes streamed to clients",
		},
	)

	resourceServeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pippo_resource_serve_duration_seconds",
			Help:    "Time to resolve and serve a resource",
			Buckets: prometheus.DefBuckets,
		},
	)

	versionStripsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pippo_resource_version_strips_total",
			Help: "Total requests whose path carried a version marker",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pippo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pippo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordResourceRequest records a served resource request by status code.
func RecordResourceRequest(status int) {
	resourceRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordResourceBytes records bytes streamed to a client.
func RecordResourceBytes(n int64) {
	resourceBytesStreamed.Add(float64(n))
}

// RecordResolveDuration records end-to-end resolve-and-serve time.
func RecordResolveDuration(duration time.Duration) {
	resourceServeDuration.Observe(duration.Seconds())
}

// RecordVersionStrip records a request path that carried a version marker.
func RecordVersionStrip() {
	versionStripsTotal.Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
