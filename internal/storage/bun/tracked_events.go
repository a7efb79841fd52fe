package bunrepo

import (
	"context"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TrackedEventRepository stores tracked events in the push_tracked_events table.
type TrackedEventRepository struct {
	base baseRepository[domain.TrackedEvent]
}

var _ store.TrackedEventRepository = (*TrackedEventRepository)(nil)

func NewTrackedEventRepository(db *bun.DB) *TrackedEventRepository {
	handlers := repository.ModelHandlers[*domain.TrackedEvent]{
		NewRecord:          func() *domain.TrackedEvent { return &domain.TrackedEvent{} },
		GetID:              func(e *domain.TrackedEvent) uuid.UUID { return e.ID },
		SetID:              func(e *domain.TrackedEvent, id uuid.UUID) { e.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(e *domain.TrackedEvent) string { return e.ID.String() },
	}
	return &TrackedEventRepository{
		base: newBaseRepository(db, handlers, func(e *domain.TrackedEvent) *domain.RecordMeta { return &e.RecordMeta }),
	}
}

func (r *TrackedEventRepository) Create(ctx context.Context, e *domain.TrackedEvent) error {
	if e.Status == "" {
		e.Status = domain.TrackedStatusRecorded
	}
	return r.base.create(ctx, e)
}

func (r *TrackedEventRepository) Update(ctx context.Context, e *domain.TrackedEvent) error {
	return r.base.update(ctx, e)
}

func (r *TrackedEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrackedEvent, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *TrackedEventRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts)
}

func (r *TrackedEventRepository) ListByType(ctx context.Context, eventType string, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts, withEventType(eventType))
}

func (r *TrackedEventRepository) ListByStatus(ctx context.Context, status string, opts store.ListOptions) (store.ListResult[domain.TrackedEvent], error) {
	return r.base.list(ctx, opts, withStatus(status))
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
