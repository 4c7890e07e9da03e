package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/platform/metrics"
)

// Metrics records request counts and latency per route pattern, so path
// parameters never explode the label set.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if collector == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			collector.RecordHTTP(r.Method, route, recorder.status, time.Since(start))
		})
	}
}
