package metrics

import (
	"bufio"
	"fmt"
	"net"
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

	consultationsTotal   *prometheus.CounterVec
	pipelineStepDuration *prometheus.HistogramVec
	providerRetriesTotal *prometheus.CounterVec
	corpusDocuments      prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "derma",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "derma",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "derma",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	consultationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "derma",
			Subsystem: "pipeline",
			Name:      "consultations_total",
			Help:      "Total completed consultations by response mode and outcome.",
		},
		[]string{"service", "mode", "outcome"},
	)
	pipelineStepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "derma",
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual pipeline steps in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "step"},
	)
	providerRetriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "derma",
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Total retried provider calls by operation.",
		},
		[]string{"service", "operation"},
	)
	corpusDocuments := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "derma",
			Subsystem: "corpus",
			Name:      "documents",
			Help:      "Number of reference documents with a cached provider handle.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		consultationsTotal,
		pipelineStepDuration,
		providerRetriesTotal,
		corpusDocuments,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		consultationsTotal:   consultationsTotal,
		pipelineStepDuration: pipelineStepDuration,
		providerRetriesTotal: providerRetriesTotal,
		corpusDocuments:      corpusDocuments,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

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
	case strings.HasPrefix(path, "/v1/corpus/documents/"):
		return "/v1/corpus/documents/{filename}"
	default:
		return path
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
