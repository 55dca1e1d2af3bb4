package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery turns a handler panic into a 500, counts it and marks the request span.
// http.ErrAbortHandler is re-raised, net/http uses it to abort a response on purpose.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log.WithFields(log.Fields{
					"request_id": RequestIDFromContext(r.Context()),
					"route":      routeTemplate(r),
				}).Errorf("panic serving [%s %s]: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

				span := trace.SpanFromContext(r.Context())
				span.RecordError(fmt.Errorf("panic: %v", rec))
				span.SetStatus(codes.Error, "panic")

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
