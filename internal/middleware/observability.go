package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"credit-card-account/internal/logger"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Paths that are logged but neither traced nor measured.
var skipPaths = map[string]bool{
	"/healthz": true,
}

var skipPrefixes = []string{"/docs"}

type instruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
	errors   metric.Int64Counter
}

// Observability traces, measures and logs every request. Each request gets a
// child logger carrying its request ID, stored in the request context.
func Observability(next http.Handler) http.Handler {
	tracer := otel.GetTracerProvider().Tracer("http_request")
	meter := otel.GetMeterProvider().Meter("http_request")

	var inst instruments
	inst.requests, _ = meter.Int64Counter("http_requests_total")
	inst.duration, _ = meter.Float64Histogram("http_request_duration_ms")
	inst.inflight, _ = meter.Int64UpDownCounter("http_requests_inflight")
	inst.errors, _ = meter.Int64Counter("http_requests_error_total")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := r.URL.Path
		skip := shouldSkip(path)

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := r.Context()
		span := trace.SpanFromContext(ctx)
		if !skip {
			ctx, span = tracer.Start(ctx, "HTTP "+method+" "+path,
				trace.WithAttributes(
					attribute.String("http.request_id", requestID),
					attribute.String("http.request.method", method),
					attribute.String("url.path", path),
				),
			)
			defer span.End()
			inst.inflight.Add(ctx, 1)
		}

		reqLogger := logger.With(
			zap.String("request_id", requestID),
			zap.String("http.request.method", method),
			zap.String("url.path", path),
		)
		ctx = logger.NewContext(ctx, reqLogger)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		func() {
			defer func() {
				if rec := recover(); rec != nil {
					reqLogger.Error("an error occurred",
						zap.Any("error", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					if !wrapped.wroteHeader {
						wrapped.WriteHeader(http.StatusInternalServerError)
					}
				}
			}()
			next.ServeHTTP(wrapped, r.WithContext(ctx))
		}()

		status := wrapped.statusCode
		duration := time.Since(start).Milliseconds()

		if !skip {
			labels := metric.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
				attribute.Int("http.response.status_code", status),
			)
			inst.requests.Add(ctx, 1, labels)
			inst.duration.Record(ctx, float64(duration), labels)
			inst.inflight.Add(ctx, -1)
			if status >= 400 {
				inst.errors.Add(ctx, 1, labels)
			}

			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		}

		reqLogger.Info(fmt.Sprintf("%d - %s %s", status, method, path),
			zap.Int("http.response.status_code", status),
			zap.Int64("duration_ms", duration),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	})
}

func shouldSkip(path string) bool {
	if skipPaths[path] {
		return true
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
