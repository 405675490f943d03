// Package http provides request-scoped middleware shared by every route:
// client IP resolution, request IDs, and access logging.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	clientIPContextKey  contextKey = "client_ip"
	requestIDContextKey contextKey = "request_id"
)

// ExtractClientIP extracts the client IP address from the request.
// Checks X-Forwarded-For header first (for proxied requests), then X-Real-IP,
// finally RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the list (comma-separated)
		if before, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(before)
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

// ClientIPFromContext extracts the client IP stored by RequestTagger.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}

// RequestIDFromContext extracts the request ID stored by RequestTagger.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// RequestTagger stores the client IP and a fresh UUIDv7 request ID in the
// request context, and echoes the ID in the X-Request-Id response header.
func RequestTagger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPContextKey, ExtractClientIP(r))

			id, err := uuid.NewV7()
			if err == nil {
				ctx = context.WithValue(ctx, requestIDContextKey, id.String())
				w.Header().Set("X-Request-Id", id.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// AccessLog logs one line per request with method, path, status, duration,
// client IP, and request ID. The logger is also attached to the request
// context for downstream use via zerolog.Ctx.
func AccessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			ctx := logger.With().
				Str("request_id", RequestIDFromContext(r.Context())).
				Logger().WithContext(r.Context())

			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(started)).
				Str("client_ip", ClientIPFromContext(r.Context())).
				Str("request_id", RequestIDFromContext(r.Context())).
				Msg("request")
		})
	}
}
