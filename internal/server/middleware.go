// Package server implements the studiogate HTTP front: the request gate
// middleware, the AI session ingestion endpoint, and the pass-through proxy
// to the upstream application.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/creastudio/studiogate/internal/auth"
	"github.com/creastudio/studiogate/internal/model"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeySession   contextKey = "session"
)

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// SessionFromContext extracts the resolved session from the context.
// Only set on requests that passed the gate.
func SessionFromContext(ctx context.Context) *model.Session {
	if v, ok := ctx.Value(contextKeySession).(*model.Session); ok {
		return v
	}
	return nil
}

// gatedPrefixes are the route areas that require an authenticated session
// with studio access. Everything else bypasses the gate entirely.
var gatedPrefixes = []string{"/api", "/projects"}

// isGatedPath reports whether the gate applies to a request path.
func isGatedPath(path string) bool {
	for _, prefix := range gatedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// requestIDMiddleware assigns a unique request ID to each request.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request with structured fields.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(r.Context()),
		}
		if sess := SessionFromContext(r.Context()); sess != nil {
			attrs = append(attrs, "user_id", sess.UserID.String())
		}

		level := slog.LevelInfo
		if wrapped.statusCode >= 500 {
			level = slog.LevelError
		} else if wrapped.statusCode >= 400 {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http request", attrs...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

var (
	tracer    = otel.Tracer("studiogate/http")
	httpMeter = otel.GetMeterProvider().Meter("studiogate/http")
)

// tracingMiddleware creates an OTEL span for each request and records
// request count and duration metrics.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.url", r.URL.Path),
				attribute.String("http.request_id", RequestIDFromContext(r.Context())),
			),
		)
		defer span.End()

		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", wrapped.statusCode))

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.status_code", strconv.Itoa(wrapped.statusCode)),
			attribute.Bool("studiogate.gated", isGatedPath(r.URL.Path)),
		}
		if counter, err := httpMeter.Int64Counter("http.server.request_count"); err == nil {
			counter.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
		}
		if hist, err := httpMeter.Float64Histogram("http.server.duration",
			otelmetric.WithUnit("ms")); err == nil {
			hist.Record(ctx, float64(time.Since(start).Milliseconds()), otelmetric.WithAttributes(attrs...))
		}
	})
}

// gateMiddleware enforces session authentication and role-based access on
// gated paths. Unmatched paths pass straight through with no session or
// role lookup.
func (s *Server) gateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isGatedPath(r.URL.Path) {
			s.stats.bypassed.Add(1)
			next.ServeHTTP(w, r)
			return
		}

		token, err := auth.ExtractToken(r)
		if err != nil {
			s.denyNoSession(w, r)
			return
		}

		sess, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			s.logger.Debug("gate: session verification failed", "error", err,
				"request_id", RequestIDFromContext(r.Context()))
			s.denyNoSession(w, r)
			return
		}

		role := s.roles.Resolve(r.Context(), sess.UserID)
		if !model.CanAccessStudio(role) {
			s.stats.deniedRole.Add(1)
			writeJSON(w, http.StatusForbidden, model.ErrorBody{
				Error:   model.ErrorForbidden,
				Message: model.StudioAccessMessage,
			})
			return
		}

		s.stats.allowed.Add(1)
		ctx := context.WithValue(r.Context(), contextKeySession, &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// denyNoSession redirects the caller to the public entry point with query
// parameters the sign-in page reads. Distinct from the insufficient-role
// case, which returns a structured 403 instead.
func (s *Server) denyNoSession(w http.ResponseWriter, r *http.Request) {
	s.stats.deniedNoSession.Add(1)

	q := url.Values{}
	q.Set("error", model.ErrorUnauthorized)
	q.Set("message", model.SignInMessage)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusTemporaryRedirect)
}
