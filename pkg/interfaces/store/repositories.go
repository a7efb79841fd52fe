package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// TrackedEventRepository persists tracking calls captured by tracking.StoreTracker.
type TrackedEventRepository interface {
	Repository[domain.TrackedEvent]
	ListByType(ctx context.Context, eventType string, opts ListOptions) (ListResult[domain.TrackedEvent], error)
	ListByStatus(ctx context.Context, status string, opts ListOptions) (ListResult[domain.TrackedEvent], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
