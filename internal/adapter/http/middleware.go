package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/google/uuid"
)

type requestIDKey struct{}

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// LoggingMiddleware tags each request with an id, taken from X-Request-ID
// when the client sent one.
func LoggingMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
			w.Header().Set(RequestIDHeader, id)

			logger.Debug("http_request", fmt.Sprintf("%s %s", r.Method, r.URL.Path), id, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Debug("http_response", "Request completed", id, map[string]interface{}{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

func RecoveryMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered", "Panic recovered", requestID(r), nil, fmt.Errorf("%v", err))
					respondError(w, "Internal server error", http.StatusInternalServerError, nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NewRouter mounts the diagnostics API. orders may be nil, in which case
// POST /orders is not served.
func NewRouter(tracking *TrackingHandler, orders *OrderHandler, logger logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", tracking.Health)
	mux.HandleFunc("GET /shelves", tracking.GetShelves)
	mux.HandleFunc("GET /stats", tracking.GetStats)
	mux.HandleFunc("GET /orders/{id}/history", tracking.GetOrderHistory)
	if orders != nil {
		mux.HandleFunc("POST /orders", orders.CreateOrder)
	}

	handler := RecoveryMiddleware(logger)(mux)
	return LoggingMiddleware(logger)(handler)
}
