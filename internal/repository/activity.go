package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"credit-card-account/internal/model"
)

// ActivityRepository is an in-memory journal of account notifications. It
// lives as long as the process.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []model.ActivityEntry
	byID    map[uuid.UUID]int
	now     func() time.Time
}

// NewActivityRepository creates an empty journal
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		byID: make(map[uuid.UUID]int),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Append stores a copy of entry, assigning its ID and timestamp.
func (r *ActivityRepository) Append(ctx context.Context, entry model.ActivityEntry) (*model.ActivityEntry, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("repository")
	_, span := tracer.Start(ctx, "Repository:ActivityRepository:Append")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = r.now()
	if entry.Amount != nil {
		amount := *entry.Amount
		entry.Amount = &amount
	}

	r.byID[entry.ID] = len(r.entries)
	r.entries = append(r.entries, entry)

	return &entry, nil
}

// GetByID retrieves an entry by its ID
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityEntry, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("repository")
	_, span := tracer.Start(ctx, "Repository:ActivityRepository:GetByID")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, ErrEntryNotFound
	}

	entry := r.entries[idx]
	return &entry, nil
}

// List returns up to limit entries, newest first, skipping the first offset.
func (r *ActivityRepository) List(ctx context.Context, limit, offset int) ([]model.ActivityEntry, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("repository")
	_, span := tracer.Start(ctx, "Repository:ActivityRepository:List")
	defer span.End()

	if limit < 1 || offset < 0 {
		return nil, ErrInvalidPage
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]model.ActivityEntry, 0, min(limit, len(r.entries)))
	for i := len(r.entries) - 1 - offset; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, r.entries[i])
	}

	return entries, nil
}

// Count returns the number of journaled entries
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries), nil
}
