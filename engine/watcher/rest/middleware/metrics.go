package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	"github.com/onflow/icq-watcher/module"
)

// MetricsMiddleware records request counts, durations and response sizes per named route.
func MetricsMiddleware(restCollector module.RestMetrics) mux.MiddlewareFunc {
	metricsMiddleware := middleware.New(middleware.Config{Recorder: restCollector})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			name := routeName(req)
			if name == "" {
				name = "unknown"
			}

			restCollector.AddTotalRequests(req.Context(), req.Method, name)

			// the route name is used as the handler id to keep label cardinality bounded
			handler := std.Handler(name, metricsMiddleware, next)
			handler.ServeHTTP(w, req)
		})
	}
}
