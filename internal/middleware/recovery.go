package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/pkg"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a JSON 500 and counts it per
// route template.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				route := routeTemplate(r)
				log.WithFields(log.Fields{
					"route":  route,
					"method": r.Method,
					"path":   r.URL.Path,
				}).Errorf("panic serving request: %v\n%s", recovered, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.WithLabelValues(route).Inc()
				}
				pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
