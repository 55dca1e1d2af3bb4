package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// maxDrainBytes bounds how much of an unread body is discarded to keep the connection
// alive. Anything larger is cheaper to drop with the connection.
const maxDrainBytes = 256 << 10

// LimitAndDrainRequest caps request bodies at maxBodyBytes (a handler reading past it gets
// an error, which the decoders turn into a 400), then drains and closes what is left.
func LimitAndDrainRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			body := r.Body
			r.Body = http.MaxBytesReader(w, body, maxBodyBytes)
			next.ServeHTTP(w, r)

			if _, err := io.CopyN(io.Discard, body, maxDrainBytes); err != nil && err != io.EOF {
				log.Tracef("drain request body [%s]: %s", r.URL.Path, err)
			}
			if err := body.Close(); err != nil {
				log.Tracef("close request body [%s]: %s", r.URL.Path, err)
			}
		})
	}
}
