package middleware

import (
	"net/http"
	"strconv"
	"time"

	"cineclub/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request count and latency per route pattern
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			// the pattern is known only after routing
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
