package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"credit-card-account/internal/logger"
	"credit-card-account/internal/model"
	"credit-card-account/internal/repository"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotentReplayedHeader  = "X-Idempotent-Replayed"
	maxIdempotentRequestBytes = 1 << 20
)

// Only money movements are retried by clients.
var idempotentPaths = []string{
	"/v1/account/deposits",
	"/v1/account/spends",
}

// IdempotencyStore claims keys and remembers the responses sent for them.
type IdempotencyStore interface {
	Begin(ctx context.Context, keyHash, requestHash string) (*repository.IdempotencyRecord, bool, error)
	Complete(ctx context.Context, keyHash string, responseBody []byte, status int) error
	Release(ctx context.Context, keyHash string)
}

var _ IdempotencyStore = (*repository.IdempotencyRepository)(nil)

type responseCapture struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.statusCode = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a money movement is retried
// with the same Idempotency-Key. Reusing a key with a different body, or while
// the first request is still running, is rejected with 409.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
			if idempotencyKey == "" || !requiresIdempotency(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := logger.FromContext(ctx)

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentRequestBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Failed to read request body", model.ErrCodeInvalidInput)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestPath := normalizeRequestPath(r.URL.Path)
			keyHash := repository.GenerateKeyHash(requestPath + ":" + idempotencyKey)
			requestHash := repository.GenerateKeyHash(string(body))

			cached, claimed, err := store.Begin(ctx, keyHash, requestHash)
			if err != nil {
				log.Error("failed to check idempotency key", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !claimed {
				switch {
				case cached.RequestHash != requestHash:
					writeError(w, http.StatusConflict, "Idempotency key was used with a different request", model.ErrCodeConflict)
				case cached.ResponseStatus == nil:
					writeError(w, http.StatusConflict, "A request with this idempotency key is in progress", model.ErrCodeConflict)
				default:
					log.Debug("returning cached idempotent response",
						zap.String("path", requestPath),
						zap.Int("status", *cached.ResponseStatus),
					)
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set(IdempotentReplayedHeader, "true")
					w.WriteHeader(*cached.ResponseStatus)
					_, _ = w.Write(cached.ResponseBody)
				}
				return
			}

			capture := newResponseCapture(w)
			next.ServeHTTP(capture, r)

			if !shouldCacheResponse(capture.statusCode) {
				store.Release(ctx, keyHash)
				return
			}
			if err := store.Complete(ctx, keyHash, capture.body.Bytes(), capture.statusCode); err != nil {
				log.Error("failed to store idempotent response", zap.Error(err))
			}
		})
	}
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	path := normalizeRequestPath(r.URL.Path)
	for _, p := range idempotentPaths {
		if path == p {
			return true
		}
	}
	return false
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: message, Code: code})
}
