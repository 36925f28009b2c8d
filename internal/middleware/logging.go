package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/planche-electronique/cepo/internal/logging"
)

type respLogger struct {
	http.ResponseWriter
	status int
	size   int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	if l.buf.Len() < maxLoggedBody {
		l.buf.Write(b[:min(len(b), maxLoggedBody-l.buf.Len())])
	}
	l.size += len(b)
	return l.ResponseWriter.Write(b)
}

const maxLoggedBody = 2048

// Logging dumps request headers and the start of every response at debug
// level. Meant for development only.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.WithRequest(RequestIDFromContext(r.Context()), ClientAddress(r), r.URL.Path)
		logger.Debugw("Request received", "method", r.Method, "url", r.URL.String(), "headers", r.Header)

		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: &bytes.Buffer{}}

		start := time.Now()
		next.ServeHTTP(lw, r)

		logger.Debugw("Response sent",
			"status_code", lw.status,
			"status", http.StatusText(lw.status),
			"duration", time.Since(start).String(),
			"size", lw.size,
			"body", lw.buf.String(),
		)
	})
}
