package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/naka-gawa/portfolio/internal/logging"
)

const apiKeyHeader = "X-API-Key"

func preProcess(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(slog.String("request_id", uuid.NewString()))
			ctx := logging.With(r.Context(), logger)

			lw := &statusCodeLogger{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			requestedAt := time.Now()
			next.ServeHTTP(lw, r.WithContext(ctx))

			logger.Info("http access",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status_code", lw.statusCode),
				slog.String("user_agent", r.UserAgent()),
				slog.Duration("elapsed", time.Since(requestedAt)),
			)
		})
	}
}

type statusCodeLogger struct {
	http.ResponseWriter
	statusCode int
}

func (x *statusCodeLogger) WriteHeader(code int) {
	x.statusCode = code
	x.ResponseWriter.WriteHeader(code)
}

// apiKeyAuth rejects requests without the shared secret before any handler runs.
// Missing keys get 401, wrong keys 403.
func apiKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(apiKeyHeader)
			if got == "" {
				writeJSON(r.Context(), w, http.StatusUnauthorized, errorBody{Error: "missing API key"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				logging.From(r.Context(), slog.Default()).Warn("rejected request with invalid API key", "path", r.URL.Path)
				writeJSON(r.Context(), w, http.StatusForbidden, errorBody{Error: "invalid API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
