package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"bruce/internal/httputil"
	"bruce/internal/metrics"
)

// Recovery turns a handler panic into a 500 problem response and logs the
// stack with the request id. http.ErrAbortHandler is re-raised for net/http.
// When the handler had already started its response, the panic is only
// logged and counted.
func Recovery(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &startTracker{ResponseWriter: w}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				m.RecoveredPanic()
				logger.Error("panic recovered",
					"error", err,
					"request_id", httputil.GetRequestID(r),
					"path", r.URL.Path,
					"method", r.Method,
					"response_started", tw.started,
					"stack", string(debug.Stack()),
				)

				if !tw.started {
					httputil.RespondError(tw, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// startTracker notes whether the handler has written anything yet.
type startTracker struct {
	http.ResponseWriter
	started bool
}

func (w *startTracker) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startTracker) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startTracker) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
