package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/flarecast/flarecast-backend/internal/domain/errors"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/cache"
)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func withUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// requestIDMiddleware stores request metadata in the context and echoes
// X-Request-ID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		meta := &RequestMeta{
			RequestID: requestID,
			ClientIP:  r.RemoteAddr,
			StartTime: time.Now(),
		}
		if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.IsValid() {
			meta.TraceID = sc.TraceID().String()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestMeta, meta)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs one line per request. Bodies are never logged.
func loggingMiddleware(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.InfoContext(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestMetaFrom(r.Context()).RequestID,
			)
		})
	}
}

// recoveryMiddleware turns panics into a 500 envelope.
func recoveryMiddleware(base *BaseHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					base.logger.ErrorContext(r.Context(), "panic recovered",
						"panic", fmt.Sprint(rec),
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
					)
					base.handleError(w, r, domainErrors.NewInternalError("An internal error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// APIMetrics records per-request telemetry.
type APIMetrics interface {
	RecordAPIRequest(ctx context.Context, duration time.Duration, method, route string, statusCode int)
}

// metricsMiddleware records latency and status per route pattern.
func metricsMiddleware(m APIMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.RecordAPIRequest(r.Context(), time.Since(start), r.Method, route, wrapped.status)
		})
	}
}

// RateLimitConfig bounds requests per authenticated user.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// rateLimitMiddleware must run after authentication. Limiter failures fail
// open so a redis outage does not block forecasts.
func rateLimitMiddleware(limiter cache.RateLimiter, cfg RateLimitConfig, base *BaseHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			key := "user:" + userID.String()
			allowed, err := limiter.Allow(r.Context(), key, cfg.Requests, cfg.Window)
			if err != nil {
				base.logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			if !allowed {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				base.handleError(w, r, domainErrors.NewRateLimitError("Too many forecast requests"))
				return
			}
			if remaining, err := limiter.Remaining(r.Context(), key, cfg.Requests, cfg.Window); err == nil {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// securityHeadersMiddleware sets conservative response headers.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(status int) {
	if !rw.written {
		rw.status = status
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
