package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/store"
)

func TestMemoryProviders(t *testing.T) {
	providers := NewMemoryProviders()
	if providers.TrackedEvents == nil || providers.Transaction == nil {
		t.Fatalf("expected repositories to be wired: %+v", providers)
	}
}

func TestBunProvidersWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	providers := NewBunProviders(db)
	err = providers.Transaction.WithinTransaction(ctx, func(ctx context.Context) error {
		return providers.TrackedEvents.Create(ctx, &domain.TrackedEvent{EventType: "push_opened"})
	})
	if err != nil {
		t.Fatalf("within transaction: %v", err)
	}

	list, err := providers.TrackedEvents.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected 1 tracked event, got %d", list.Total)
	}
}

func TestBunTransactionReachesRepositories(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	providers := NewBunProviders(db)
	event := &domain.TrackedEvent{EventType: "register_push_token"}
	if err := providers.TrackedEvents.Create(ctx, event); err != nil {
		t.Fatalf("create: %v", err)
	}

	err = providers.Transaction.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := providers.TrackedEvents.GetByID(ctx, event.ID); err != nil {
			return err
		}
		if err := providers.TrackedEvents.UpdateStatus(ctx, event.ID, domain.TrackedStatusExported); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return providers.Transaction.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := providers.TrackedEvents.List(ctx, store.ListOptions{})
			return err
		})
	})
	if err != nil {
		t.Fatalf("within transaction: %v", err)
	}

	got, err := providers.TrackedEvents.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.TrackedStatusExported {
		t.Fatalf("expected exported status, got %q", got.Status)
	}
}

func TestBunTransactionRollsBack(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	providers := NewBunProviders(db)
	boom := errors.New("boom")
	err = providers.Transaction.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := providers.TrackedEvents.Create(ctx, &domain.TrackedEvent{EventType: "push_opened"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	list, err := providers.TrackedEvents.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected rollback, got %d events", list.Total)
	}
}
