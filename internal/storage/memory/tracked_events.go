package memory

import (
	"context"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/store"
	"github.com/google/uuid"
)

// TrackedEventRepository keeps tracked events in a map.
type TrackedEventRepository struct {
	base baseMemoryRepo[domain.TrackedEvent]
}

var _ store.TrackedEventRepository = (*TrackedEventRepository)(nil)

func NewTrackedEventRepository() *TrackedEventRepository {
	return &TrackedEventRepository{
		base: newBaseMemoryRepo(func(e *domain.TrackedEvent) *domain.RecordMeta { return &e.RecordMeta }),
	}
}

func (r *TrackedEventRepository) Create(ctx context.Context, event *domain.TrackedEvent) error {
	if event.Status == "" {
		event.Status = domain.TrackedStatusRecorded
	}
	return r.base.create(ctx, event)
}

func (r *TrackedEventRepository) Update(ctx context.Context, event *domain.TrackedEvent) error {
	return r.base.update(ctx, event)
}

func (r *TrackedEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrackedEvent, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *TrackedEventRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts, nil)
}

func (r *TrackedEventRepository) ListByType(ctx context.Context, eventType string, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts, func(e *domain.TrackedEvent) bool { return e.EventType == eventType })
}

func (r *TrackedEventRepository) ListByStatus(ctx context.Context, status string, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts, func(e *domain.TrackedEvent) bool { return e.Status == status })
}

func (r *TrackedEventRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *TrackedEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	event, err := r.base.getByID(ctx, id, true)
	if err != nil {
		return err
	}
	event.Status = status
	return r.base.update(ctx, event)
}
