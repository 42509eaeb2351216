package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/OWDM/dental-ai-agent/internal/metrics"
)

// observeRequests records request latency and tags every response with a
// request ID so individual conversations can be traced through the logs.
func (s *Service) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		wrapper := &observedResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		wrapper.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method,
			routePattern(r),
			strconv.Itoa(wrapper.statusCode),
		).Observe(duration.Seconds())

		s.logger.WithFields(map[string]interface{}{
			"request_id":    requestID,
			"method":        r.Method,
			"path":          r.URL.Path,
			"status":        wrapper.statusCode,
			"duration_ms":   duration.Milliseconds(),
			"bytes_written": wrapper.bytesWritten,
			"client_ip":     r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// routePattern returns the registered route template rather than the raw
// URL path, keeping metric label cardinality bounded.
func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if pattern, err := route.GetPathTemplate(); err == nil {
			return pattern
		}
	}
	return r.URL.Path
}

// observedResponseWriter wraps http.ResponseWriter to capture the status
// code and response size for metrics and logging
type observedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (orw *observedResponseWriter) WriteHeader(code int) {
	orw.statusCode = code
	orw.ResponseWriter.WriteHeader(code)
}

func (orw *observedResponseWriter) Write(b []byte) (int, error) {
	n, err := orw.ResponseWriter.Write(b)
	orw.bytesWritten += int64(n)
	return n, err
}
