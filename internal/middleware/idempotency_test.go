package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-card-account/internal/model"
	"credit-card-account/internal/repository"
)

func idempotentHandler(status int, calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"call": n, "body": string(body)})
	})
}

func post(h http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysResponse(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewIdempotencyRepository(time.Hour))(idempotentHandler(http.StatusOK, &calls))

	first := post(h, "/v1/account/deposits", "key-1", `{"amount":"10"}`)
	second := post(h, "/v1/account/deposits", "key-1", `{"amount":"10"}`)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, first.Body.String(), `{\"amount\":\"10\"}`, "body is restored for the handler")
	assert.Empty(t, first.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayedHeader))
}

func TestIdempotency_KeysAreScopedByPath(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewIdempotencyRepository(time.Hour))(idempotentHandler(http.StatusOK, &calls))

	post(h, "/v1/account/deposits", "key-1", `{"amount":"10"}`)
	rec := post(h, "/v1/account/spends", "key-1", `{"amount":"10"}`)

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, rec.Header().Get(IdempotentReplayedHeader))
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewIdempotencyRepository(time.Hour))(idempotentHandler(http.StatusOK, &calls))

	post(h, "/v1/account/spends", "key-1", `{"amount":"10"}`)
	rec := post(h, "/v1/account/spends", "key-1", `{"amount":"20"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeConflict, resp.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	store := repository.NewIdempotencyRepository(time.Hour)
	keyHash := repository.GenerateKeyHash("/v1/account/spends:key-1")
	_, claimed, err := store.Begin(t.Context(), keyHash, repository.GenerateKeyHash(`{"amount":"10"}`))
	require.NoError(t, err)
	require.True(t, claimed)

	var calls atomic.Int32
	h := Idempotency(store)(idempotentHandler(http.StatusOK, &calls))
	rec := post(h, "/v1/account/spends", "key-1", `{"amount":"10"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, calls.Load())
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewIdempotencyRepository(time.Hour))(idempotentHandler(http.StatusUnprocessableEntity, &calls))

	post(h, "/v1/account/spends", "key-1", `{"amount":"10"}`)
	rec := post(h, "/v1/account/spends", "key-1", `{"amount":"10"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, rec.Header().Get(IdempotentReplayedHeader))
}

func TestIdempotency_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		key    string
	}{
		{name: "no key", method: http.MethodPost, path: "/v1/account/deposits"},
		{name: "not a money movement", method: http.MethodPut, path: "/v1/account/pin", key: "key-1"},
		{name: "read", method: http.MethodGet, path: "/v1/account", key: "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(repository.NewIdempotencyRepository(time.Hour))(idempotentHandler(http.StatusOK, &calls))

			for range 2 {
				req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
				if tt.key != "" {
					req.Header.Set(IdempotencyKeyHeader, tt.key)
				}
				h.ServeHTTP(httptest.NewRecorder(), req)
			}

			assert.Equal(t, int32(2), calls.Load())
		})
	}
}
