package tracking

import (
	"context"
	"errors"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/store"
	"github.com/google/uuid"
)

// StoreTracker records every event in a TrackedEventRepository so hosts can
// export them to their own analytics backend later.
type StoreTracker struct {
	repo store.TrackedEventRepository
	tx   store.TransactionManager
}

var errRepositoryRequired = errors.New("tracking: tracked event repository is required")

// NewStoreTracker builds a store-backed tracker. tx may be nil.
func NewStoreTracker(repo store.TrackedEventRepository, tx store.TransactionManager) (*StoreTracker, error) {
	if repo == nil {
		return nil, errRepositoryRequired
	}
	if tx == nil {
		tx = &store.NopTransactionManager{}
	}
	return &StoreTracker{repo: repo, tx: tx}, nil
}

func (s *StoreTracker) Track(ctx context.Context, eventType EventType, properties map[string]any) error {
	record := &domain.TrackedEvent{
		EventType:  string(eventType),
		Properties: domain.JSONMap(cloneProperties(properties)),
		Status:     domain.TrackedStatusRecorded,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return Wrap(eventType, err)
	}
	return nil
}

// Recorded lists events still waiting to be exported, oldest first.
func (s *StoreTracker) Recorded(ctx context.Context, limit int) ([]domain.TrackedEvent, error) {
	opts := store.ListOptions{}
	if limit > 0 {
		opts.Limit = limit
	}
	result, err := s.repo.ListByStatus(ctx, domain.TrackedStatusRecorded, opts)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// MarkExported flags the given events as exported in a single transaction.
func (s *StoreTracker) MarkExported(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := s.repo.UpdateStatus(ctx, id, domain.TrackedStatusExported); err != nil {
				return err
			}
		}
		return nil
	})
}
