package repository

import (
	"context"
	"fmt"

	"phonestore/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type kardexRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewKardexRepository creates a new PostgreSQL-backed kardex repository.
func NewKardexRepository(pool *pgxpool.Pool, logger zerolog.Logger) KardexRepository {
	return &kardexRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "kardex").Logger(),
	}
}

// ListByPhone returns the movements of a phone, newest first.
func (r *kardexRepository) ListByPhone(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error) {
	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM kardex WHERE phone_id = $1`, phoneID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, phone_id, moved_at, kind, origin, document_id, quantity, unit_cost, stock_before, stock_after
		FROM kardex
		WHERE phone_id = $1
		ORDER BY moved_at DESC, id
		LIMIT $2 OFFSET $3`, phoneID, req.Limit, req.Offset())
	if err != nil {
		r.logger.Error().Err(err).Str("phone_id", phoneID).Msg("failed to query kardex")
		return nil, fmt.Errorf("failed to query kardex: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		err := rows.Scan(&m.ID, &m.PhoneID, &m.MovedAt, &m.Kind, &m.Origin, &m.DocumentID,
			&m.Quantity, &m.UnitCost, &m.StockBefore, &m.StockAfter)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kardex: %w", err)
	}

	return model.NewPage(movements, total, req), nil
}

type journalRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewJournalRepository creates a checkout journal stored in PostgreSQL.
func NewJournalRepository(pool *pgxpool.Pool, logger zerolog.Logger) JournalRepository {
	return &journalRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "checkout_journal").Logger(),
	}
}

// Append records one saga entry.
func (r *journalRepository) Append(ctx context.Context, e model.SagaEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO checkout_journal (saga_id, step, phase, detail, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.SagaID, e.Step, string(e.Phase), e.Detail, e.RecordedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("saga_id", e.SagaID).Str("step", e.Step).Msg("failed to append journal entry")
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}
