package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"coinquest/internal/ratelimit/store"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// Store counts hits per key inside a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (store.Result, error)
}

// Middleware applies a per-client-IP limit to the routes it wraps.
type Middleware struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

// New returns nil when limit is not positive, which Limit treats as disabled.
func New(st Store, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &Middleware{store: st, limit: limit, window: window, logger: logger}
}

// Limit keys hits by class and client IP. Store errors fail open.
func (m *Middleware) Limit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			res, err := m.store.Allow(ctx, class+":"+ip, m.limit, m.window)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"client_ip", ip,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter(time.Now())))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
