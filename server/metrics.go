package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teranos/eavto/eav/storage"
)

// metrics holds the server's Prometheus collectors on a private registry.
type metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	commits   prometheus.Counter
	appended  prometheus.Counter
	retracted prometheus.Counter
	clients   prometheus.Gauge
	wsFrames  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eavto",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eavto",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eavto",
			Name:      "store_commits_total",
			Help:      "Committed store writes.",
		}),
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eavto",
			Name:      "facts_appended_total",
			Help:      "Facts appended by committed writes.",
		}),
		retracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eavto",
			Name:      "facts_retracted_total",
			Help:      "Facts retracted by committed writes.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eavto",
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}),
		wsFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eavto",
			Name:      "websocket_frames_total",
			Help:      "WebSocket request frames by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.commits, m.appended, m.retracted, m.clients, m.wsFrames,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// observeCommit records one store commit.
func (m *metrics) observeCommit(ev storage.CommitEvent) {
	m.commits.Inc()
	m.appended.Add(float64(ev.Appended))
	m.retracted.Add(float64(ev.Retracted))
}

// handler serves the registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// instrument counts requests and their latency per matched route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
