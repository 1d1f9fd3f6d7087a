package service

import (
	"context"

	"github.com/google/uuid"

	"credit-card-account/internal/model"
	"credit-card-account/internal/repository"
)

// ActivityJournal records account notifications.
type ActivityJournal interface {
	Append(ctx context.Context, entry model.ActivityEntry) (*model.ActivityEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ActivityEntry, error)
	List(ctx context.Context, limit, offset int) ([]model.ActivityEntry, error)
	Count(ctx context.Context) (int, error)
}

var _ ActivityJournal = (*repository.ActivityRepository)(nil)
