package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// IdempotencyRecord represents a stored idempotency key. A nil ResponseStatus
// means the first request carrying the key is still being processed.
type IdempotencyRecord struct {
	KeyHash        string
	RequestHash    string
	ResponseBody   []byte
	ResponseStatus *int
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IdempotencyRepository keeps idempotency keys in memory until they expire
type IdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]*IdempotencyRecord
	ttl     time.Duration
	now     func() time.Time
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(ttl time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{
		records: make(map[string]*IdempotencyRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GenerateKeyHash returns the hex SHA-256 of s
func GenerateKeyHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// Begin claims keyHash for a new request. When an unexpired record already
// exists it is returned with claimed set to false.
func (r *IdempotencyRepository) Begin(ctx context.Context, keyHash, requestHash string) (record *IdempotencyRecord, claimed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.records[keyHash]; ok && existing.ExpiresAt.After(now) {
		copied := *existing
		return &copied, false, nil
	}

	r.records[keyHash] = &IdempotencyRecord{
		KeyHash:     keyHash,
		RequestHash: requestHash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(r.ttl),
	}
	return nil, true, nil
}

// Complete stores the response for a claimed key
func (r *IdempotencyRepository) Complete(ctx context.Context, keyHash string, responseBody []byte, status int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[keyHash]
	if !ok {
		return ErrIdempotencyKeyNotFound
	}
	record.ResponseBody = append([]byte(nil), responseBody...)
	record.ResponseStatus = &status
	return nil
}

// Release drops a claimed key so the request can be retried
func (r *IdempotencyRepository) Release(ctx context.Context, keyHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, keyHash)
}

// CleanupExpired removes expired idempotency keys
func (r *IdempotencyRepository) CleanupExpired(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key, record := range r.records {
		if !record.ExpiresAt.After(now) {
			delete(r.records, key)
			removed++
		}
	}
	return removed
}
