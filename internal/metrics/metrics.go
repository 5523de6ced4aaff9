package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrs_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrs_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	serviceOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrs_service_operations_total",
		Help: "Count of domain service operations by entity kind, operation and result",
	}, []string{"kind", "op", "result"})

	viewCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrs_view_cache_lookups_total",
		Help: "Schedule view cache lookups by result",
	}, []string{"result"})

	changeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrs_change_events_published_total",
		Help: "Change events published by result",
	}, []string{"result"})

	websocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vrs_websocket_clients",
		Help: "Number of connected change feed clients",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveOperation counts a service operation. result is "ok" or the error class.
func ObserveOperation(kind, op, result string) {
	serviceOperations.WithLabelValues(kind, op, result).Inc()
}

func ObserveCacheLookup(hit bool) {
	if hit {
		viewCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	viewCacheLookups.WithLabelValues("miss").Inc()
}

func ObservePublish(err error) {
	if err != nil {
		changeEventsPublished.WithLabelValues("error").Inc()
		return
	}
	changeEventsPublished.WithLabelValues("ok").Inc()
}

func SetWebsocketClients(count int) {
	websocketClients.Set(float64(count))
}

// HTTPMiddleware instruments requests. The route label is the chi route
// pattern so ids do not explode label cardinality.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		ObserveHTTPRequest(r.Method, route, strconv.Itoa(ww.status), time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over instrumented connections.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
