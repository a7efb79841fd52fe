package storage

import (
	"context"
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	bunrepo "github.com/goliatone/go-push-tracking/internal/storage/bun"
	"github.com/goliatone/go-push-tracking/internal/storage/memory"
	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/store"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Providers exposes the repositories needed by trackers.
type Providers struct {
	TrackedEvents store.TrackedEventRepository
	Transaction   store.TransactionManager
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders() Providers {
	return Providers{
		TrackedEvents: memory.NewTrackedEventRepository(),
		Transaction:   &store.NopTransactionManager{},
	}
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller owns the *bun.DB lifecycle.
func NewBunProviders(db *bun.DB) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel((*domain.TrackedEvent)(nil))

	return Providers{
		TrackedEvents: bunrepo.NewTrackedEventRepository(db),
		Transaction:   &bunTxManager{db: db},
	}
}

// OpenSQLite opens a sqlite database through sqliteshim and ensures the
// tracked events table exists. dsn defaults to a private in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = "file::memory:"
	}
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*domain.TrackedEvent)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create tracked events table: %w", err)
	}
	return db, nil
}

type bunTxManager struct {
	db *bun.DB
}

// WithinTransaction runs fn with the transaction on its context so the
// repositories share it. Nested calls reuse the outer transaction.
func (m *bunTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if _, ok := bunrepo.TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(bunrepo.WithTx(ctx, tx))
	})
}
