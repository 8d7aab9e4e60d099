// Package middleware instruments the ops HTTP endpoints (health probes and the
// analytics API) served next to /metrics.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// Metrics returns middleware that records request count, latency, and the
// in-flight gauge. Paths outside known are reported as "other" to keep label
// cardinality bounded.
func Metrics(m *metrics.Metrics, known ...string) func(http.Handler) http.Handler {
	paths := make(map[string]struct{}, len(known))
	for _, p := range known {
		paths[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if _, ok := paths[path]; !ok {
				path = "other"
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// Instrument wraps every handler in handlers with Metrics, using the map keys
// as the known path set.
func Instrument(m *metrics.Metrics, handlers map[string]http.Handler) map[string]http.Handler {
	known := make([]string, 0, len(handlers))
	for pattern := range handlers {
		known = append(known, pattern)
	}
	mw := Metrics(m, known...)
	out := make(map[string]http.Handler, len(handlers))
	for pattern, h := range handlers {
		out[pattern] = mw(h)
	}
	return out
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}
