package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phonestore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// phoneRepository implements the PhoneRepository interface using PostgreSQL.
type phoneRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPhoneRepository creates a new PostgreSQL-backed phone repository.
func NewPhoneRepository(pool *pgxpool.Pool, logger zerolog.Logger) PhoneRepository {
	return &phoneRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "phone").Logger(),
	}
}

const phoneColumns = `id, code, brand, model, color, storage, ram, sale_price, purchase_cost, stock, status, description, image_url`

func scanPhone(row pgx.Row, p *model.Phone) error {
	return row.Scan(
		&p.ID, &p.Code, &p.Brand, &p.Model, &p.Color, &p.Storage, &p.RAM,
		&p.SalePrice, &p.PurchaseCost, &p.StockQuantity, &p.Status, &p.Description, &p.ImageURL,
	)
}

// List returns a page of phones ordered by brand and model.
func (r *phoneRepository) List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error) {
	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM phones`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count phones")
		return nil, err
	}

	query := `SELECT ` + phoneColumns + `
		FROM phones
		ORDER BY brand, model, code
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, req.Limit, req.Offset())
	if err != nil {
		r.logger.Error().Err(err).
			Int("page", req.Page).
			Int("limit", req.Limit).
			Msg("failed to query phones")
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	var phones []model.Phone
	for rows.Next() {
		var p model.Phone
		if err := scanPhone(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan phone row")
			return nil, fmt.Errorf("failed to scan phone: %w", err)
		}
		phones = append(phones, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating phone rows")
		return nil, fmt.Errorf("error iterating phones: %w", err)
	}

	return model.NewPage(phones, total, req), nil
}

// GetByID retrieves a single phone by its ID.
func (r *phoneRepository) GetByID(ctx context.Context, id string) (*model.Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones WHERE id = $1`

	var p model.Phone
	if err := scanPhone(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("phone_id", id).Msg("phone not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("phone_id", id).Msg("failed to query phone")
		return nil, fmt.Errorf("failed to query phone: %w", err)
	}

	return &p, nil
}

// AdjustStock applies the delta in a single statement, so concurrent
// adjustments never lose updates, and records the kardex movement in the
// same transaction.
func (r *phoneRepository) AdjustStock(ctx context.Context, adj model.StockAdjustment) (*model.StockMovement, error) {
	var movement *model.StockMovement

	err := withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		m, err := adjustStock(ctx, tx, adj)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).
			Str("phone_id", adj.PhoneID).
			Int("delta", adj.Delta).
			Msg("failed to adjust stock")
		return nil, err
	}

	r.logger.Debug().
		Str("phone_id", adj.PhoneID).
		Int("stock_before", movement.StockBefore).
		Int("stock_after", movement.StockAfter).
		Msg("stock adjusted")

	return movement, nil
}

// adjustStock updates stock and writes the kardex row using q.
func adjustStock(ctx context.Context, q querier, adj model.StockAdjustment) (*model.StockMovement, error) {
	query := `
		WITH prev AS (
			SELECT id, stock FROM phones WHERE id = $1 FOR UPDATE
		)
		UPDATE phones p
		SET stock = GREATEST(p.stock + $2, 0), updated_at = NOW()
		FROM prev
		WHERE p.id = prev.id
		RETURNING prev.stock, p.stock`

	m := &model.StockMovement{
		ID:         uuid.NewString(),
		PhoneID:    adj.PhoneID,
		MovedAt:    time.Now().UTC(),
		Kind:       model.MovementKindFor(adj.Delta),
		Origin:     adj.Origin,
		DocumentID: adj.DocumentID,
		UnitCost:   model.RoundMoney(adj.UnitCost),
	}

	if err := q.QueryRow(ctx, query, adj.PhoneID, adj.Delta).Scan(&m.StockBefore, &m.StockAfter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPhoneNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	m.Quantity = m.Applied()
	if m.Quantity < 0 {
		m.Quantity = -m.Quantity
	}

	if err := insertMovement(ctx, q, m); err != nil {
		return nil, err
	}

	return m, nil
}

func insertMovement(ctx context.Context, q querier, m *model.StockMovement) error {
	query := `
		INSERT INTO kardex (id, phone_id, moved_at, kind, origin, document_id, quantity, unit_cost, stock_before, stock_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := q.Exec(ctx, query,
		m.ID, m.PhoneID, m.MovedAt, string(m.Kind), m.Origin, m.DocumentID,
		m.Quantity, m.UnitCost, m.StockBefore, m.StockAfter,
	)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// Upsert inserts or updates a phone by code. Stock is only set on insert;
// afterwards it changes through stock movements.
func (r *phoneRepository) Upsert(ctx context.Context, phone *model.Phone) (bool, error) {
	if phone.ID == "" {
		phone.ID = uuid.NewString()
	}

	query := `
		INSERT INTO phones (` + phoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (code) DO UPDATE SET
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			color = EXCLUDED.color,
			storage = EXCLUDED.storage,
			ram = EXCLUDED.ram,
			sale_price = EXCLUDED.sale_price,
			purchase_cost = EXCLUDED.purchase_cost,
			status = EXCLUDED.status,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING id, stock, (xmax = 0) AS inserted`

	var inserted bool
	err := withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			phone.ID, phone.Code, phone.Brand, phone.Model, phone.Color, phone.Storage, phone.RAM,
			model.RoundMoney(phone.SalePrice), model.RoundMoney(phone.PurchaseCost), phone.StockQuantity,
			phone.Status, phone.Description, phone.ImageURL,
		).Scan(&phone.ID, &phone.StockQuantity, &inserted)
		if err != nil {
			return fmt.Errorf("failed to upsert phone: %w", err)
		}

		if !inserted || phone.StockQuantity == 0 {
			return nil
		}

		return insertMovement(ctx, tx, &model.StockMovement{
			ID:          uuid.NewString(),
			PhoneID:     phone.ID,
			MovedAt:     time.Now().UTC(),
			Kind:        model.MovementIn,
			Origin:      model.OriginCatalogImport,
			DocumentID:  phone.Code,
			Quantity:    phone.StockQuantity,
			UnitCost:    model.RoundMoney(phone.PurchaseCost),
			StockBefore: 0,
			StockAfter:  phone.StockQuantity,
		})
	})
	if err != nil {
		r.logger.Error().Err(err).Str("code", phone.Code).Msg("failed to upsert phone")
		return false, err
	}

	return inserted, nil
}
