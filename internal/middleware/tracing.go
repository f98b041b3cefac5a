// Package middleware provides HTTP middleware for the feed core service.
package middleware

import (
	"net/http"
	"time"

	"github.com/thefreed/feedcore/pkg/logger"
)

// Tracing propagates or assigns a trace id per request and logs completion.
type Tracing struct {
	log *logger.Logger
}

// NewTracing creates a tracing middleware.
func NewTracing(log *logger.Logger) *Tracing {
	if log == nil {
		log = logger.NewDefault("http")
	}
	return &Tracing{log: log}
}

// Handler returns the tracing middleware handler.
func (m *Tracing) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = logger.NewTraceID()
		}

		ctx := logger.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		m.log.WithContext(ctx).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("status", rec.status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
