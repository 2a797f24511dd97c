package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
)

// RequestLogger logs one line per request. It must run after Sessions.Load
// to see the caller.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			reqLog := log.With("request_id", chimw.GetReqID(r.Context()))
			if sess, ok := auth.FromContext(r.Context()); ok {
				reqLog = reqLog.With("user", sess.Email, "store_id", sess.StoreID)
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}

			switch {
			case status >= 500:
				reqLog.Error(r.Context(), "request", args...)
			case status >= 400:
				reqLog.Warn(r.Context(), "request", args...)
			default:
				reqLog.Info(r.Context(), "request", args...)
			}
		})
	}
}
