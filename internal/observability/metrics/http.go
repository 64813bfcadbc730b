package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queriesTotal       *prometheus.CounterVec
	retrievalHitTotal  *prometheus.CounterVec
	noMatchTotal       *prometheus.CounterVec
	retrievedDocuments *prometheus.HistogramVec
	queryDuration      *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total successful query pipeline runs.",
		},
		[]string{"service"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "query",
			Name:      "retrieval_hit_total",
			Help:      "Total queries with at least one ranked document.",
		},
		[]string{"service"},
	)
	noMatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "query",
			Name:      "no_match_total",
			Help:      "Total queries that matched no documents.",
		},
		[]string{"service"},
	)
	retrievedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "query",
			Name:      "retrieved_documents",
			Help:      "Distribution of ranked documents per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queriesTotal,
		retrievalHitTotal,
		noMatchTotal,
		retrievedDocuments,
		queryDuration,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		queriesTotal:       queriesTotal,
		retrievalHitTotal:  retrievalHitTotal,
		noMatchTotal:       noMatchTotal,
		retrievedDocuments: retrievedDocuments,
		queryDuration:      queryDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := newStatusRecorder(w)

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordQueryObservation(service string, rankedCount int, duration time.Duration) {
	m.queriesTotal.WithLabelValues(service).Inc()
	m.retrievedDocuments.WithLabelValues(service).Observe(float64(rankedCount))
	m.queryDuration.WithLabelValues(service).Observe(duration.Seconds())

	if rankedCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service).Inc()
		return
	}
	m.noMatchTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
