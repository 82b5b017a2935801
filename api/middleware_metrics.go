package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Hijack lets wrapped handlers upgrade the connection, which the websocket
// telemetry endpoint requires.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// MetricsMiddleware traces every request and feeds the metrics collector
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the metrics endpoints and long-lived connections are not traced
		if skipMetricsPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		trace := RequestTrace{
			RequestID: uuid.New().String(),
			Method:    r.Method,
			Path:      r.URL.Path,
			StartTime: time.Now(),
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		ctx := WithRequestTrace(r.Context(), &trace)
		next.ServeHTTP(rw, r.WithContext(ctx))

		trace.EndTime = time.Now()
		trace.TotalDuration = trace.EndTime.Sub(trace.StartTime)
		trace.Status = rw.statusCode

		GetMetrics().RecordTrace(trace)
	})
}

func skipMetricsPath(path string) bool {
	switch path {
	case "/health",
		"/api/v1/metrics",
		"/api/v1/metrics/summary",
		"/api/v1/metrics/routes",
		"/api/v1/metrics/traces",
		"/api/v1/metrics/slowest",
		"/api/v1/metrics/frequent":
		return true
	}
	return strings.HasPrefix(path, "/socket.io/")
}
