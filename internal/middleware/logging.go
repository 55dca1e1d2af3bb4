package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs every finished request at debug level, 5xx responses at warn.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{w, http.StatusOK}

			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"request_id": RequestIDFromContext(r.Context()),
				"route":      routeTemplate(r),
				"status":     resp.statusCode,
				"took_ms":    time.Since(begin).Milliseconds(),
			})
			if resp.statusCode >= http.StatusInternalServerError {
				entry.Warnf("[%s] %s", r.Method, r.URL.Path)
				return
			}
			entry.Debugf("[%s] %s", r.Method, r.URL.Path)
		})
	}
}
