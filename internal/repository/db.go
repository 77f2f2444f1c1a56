package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// count runs a COUNT(*) query and returns the result as an int.
func count(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return int(n), nil
}

// NewPostgresStore wires the PostgreSQL implementation of every repository.
func NewPostgresStore(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{
		Profiles:       NewProfileRepository(pool, logger),
		Phones:         NewPhoneRepository(pool, logger),
		Carts:          NewCartRepository(pool, logger),
		CartLines:      NewCartLineRepository(pool, logger),
		Invoices:       NewInvoiceRepository(pool, logger),
		PurchaseOrders: NewPurchaseOrderRepository(pool, logger),
		Suppliers:      NewSupplierRepository(pool, logger),
		Kardex:         NewKardexRepository(pool, logger),
		Journal:        NewJournalRepository(pool, logger),
	}
}
