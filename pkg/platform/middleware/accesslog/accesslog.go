// Package accesslog logs one line per request, records request latency,
// opens the server span and turns panics into 500 responses.
package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coinquest/pkg/platform/httputil"
	"coinquest/pkg/requestcontext"
)

// Observer receives per-request latency samples.
type Observer interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// PanicReporter is told about recovered panics after the 500 is written.
type PanicReporter func(ctx context.Context, recovered any)

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// Middleware wires logging, metrics, tracing and panic recovery. observer
// and onPanic may be nil.
func Middleware(logger *slog.Logger, observer Observer, onPanic PanicReporter) func(http.Handler) http.Handler {
	tracer := otel.Tracer("coinquest/http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("http.request.method", r.Method)),
			)
			defer span.End()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			r = r.WithContext(ctx)

			defer func() {
				if v := recover(); v != nil {
					logger.ErrorContext(ctx, "panic recovered",
						"panic", fmt.Sprint(v),
						"path", r.URL.Path,
						"request_id", requestcontext.RequestID(ctx),
					)
					span.SetStatus(codes.Error, "panic")
					if !rec.wroteHeader {
						httputil.WriteJSON(rec, http.StatusInternalServerError, httputil.ErrorResponse{Detail: "internal server error"})
					}
					if onPanic != nil {
						onPanic(ctx, v)
					}
				}
				finish(logger, observer, span, r, rec.status, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

func finish(logger *slog.Logger, observer Observer, span trace.Span, r *http.Request, status int, elapsed time.Duration) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			route = pattern
		}
	}
	span.SetName(r.Method + " " + route)
	span.SetAttributes(
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	if observer != nil {
		observer.ObserveHTTPRequest(r.Method, route, status, elapsed)
	}

	ctx := r.Context()
	logger.InfoContext(ctx, "http request",
		"method", r.Method,
		"route", route,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
