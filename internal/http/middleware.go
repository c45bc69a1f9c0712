package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/kdyvoda/internal/application"
)

// RequestLogger attaches a request scoped logger to the context and records
// request start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// RequireAdmin guards the administrative surface with HTTP Basic
// authentication against an argon2id password hash. An empty hash disables
// the surface entirely instead of leaving it open.
func RequireAdmin(passwordHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable,
					errors.New("administrative interface is not configured"))
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok || username != "admin" {
				w.Header().Set("WWW-Authenticate", `Basic realm="kdyvoda admin"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized,
					errors.New("authentication required"))
				return
			}

			if err := application.VerifyPassword(passwordHash, password); err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="kdyvoda admin"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized,
					errors.New("authentication required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
