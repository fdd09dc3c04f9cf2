// Package middleware provides HTTP middleware for the API routes.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/renshuapp/renshu-api/internal/api/shared"
	"github.com/renshuapp/renshu-api/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID and a trace-scoped
// logger. It should run first in the chain so everything downstream
// logs with the same correlation ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
