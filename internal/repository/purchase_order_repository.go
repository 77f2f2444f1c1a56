package repository

import (
	"context"
	"errors"
	"fmt"

	"phonestore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type purchaseOrderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPurchaseOrderRepository creates a new PostgreSQL-backed purchase order repository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) PurchaseOrderRepository {
	return &purchaseOrderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "purchase_order").Logger(),
	}
}

// Create inserts the order header and its lines in one transaction.
func (r *purchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	err := withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO purchase_orders (id, supplier_id, user_id, issued_at, state, total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, order.SupplierID, order.UserID, order.IssuedAt, string(order.State), model.RoundMoney(order.Total),
		)
		if err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}

		query := `
			INSERT INTO purchase_order_lines (id, purchase_order_id, phone_id, quantity, unit_cost, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`

		batch := &pgx.Batch{}
		for i := range order.Lines {
			line := &order.Lines[i]
			if line.ID == "" {
				line.ID = uuid.NewString()
			}
			batch.Queue(query, line.ID, order.ID, line.PhoneID, line.Quantity,
				model.RoundMoney(line.UnitCost), model.RoundMoney(line.Subtotal))
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for i := range order.Lines {
			if _, err := results.Exec(); err != nil {
				r.logger.Error().Err(err).
					Str("order_id", order.ID).
					Str("phone_id", order.Lines[i].PhoneID).
					Msg("failed to create purchase order line")
				return fmt.Errorf("failed to create purchase order line: %w", err)
			}
		}

		return results.Close()
	})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create purchase order")
		return err
	}

	r.logger.Debug().Str("order_id", order.ID).Int("lines", len(order.Lines)).Msg("purchase order created")
	return nil
}

// GetByID retrieves an order with its lines.
func (r *purchaseOrderRepository) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	order, err := getOrder(ctx, r.pool, id, false)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query purchase order")
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	if err := loadOrderLines(ctx, r.pool, []*model.PurchaseOrder{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func getOrder(ctx context.Context, q querier, id string, forUpdate bool) (*model.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, user_id, issued_at, state, total
		FROM purchase_orders
		WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o model.PurchaseOrder
	err := q.QueryRow(ctx, query, id).Scan(&o.ID, &o.SupplierID, &o.UserID, &o.IssuedAt, &o.State, &o.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query purchase order: %w", err)
	}
	return &o, nil
}

func loadOrderLines(ctx context.Context, q querier, orders []*model.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*model.PurchaseOrder, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Lines = []model.PurchaseOrderLine{}
		byID[o.ID] = o
	}

	rows, err := q.Query(ctx, `
		SELECT id, purchase_order_id, phone_id, quantity, unit_cost, subtotal
		FROM purchase_order_lines
		WHERE purchase_order_id = ANY($1)
		ORDER BY purchase_order_id, id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query purchase order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       model.PurchaseOrderLine
			orderID string
		)
		if err := rows.Scan(&l.ID, &orderID, &l.PhoneID, &l.Quantity, &l.UnitCost, &l.Subtotal); err != nil {
			return fmt.Errorf("failed to scan purchase order line: %w", err)
		}
		o := byID[orderID]
		o.Lines = append(o.Lines, l)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating purchase order lines: %w", err)
	}
	return nil
}

// ListByState returns a page of orders in state, newest first.
func (r *purchaseOrderRepository) ListByState(ctx context.Context, state model.PurchaseOrderState, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM purchase_orders WHERE state = $1`, string(state))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, supplier_id, user_id, issued_at, state, total
		FROM purchase_orders
		WHERE state = $1
		ORDER BY issued_at DESC, id
		LIMIT $2 OFFSET $3`, string(state), req.Limit, req.Offset())
	if err != nil {
		r.logger.Error().Err(err).Str("state", string(state)).Msg("failed to query purchase orders")
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.PurchaseOrder
	for rows.Next() {
		var o model.PurchaseOrder
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.UserID, &o.IssuedAt, &o.State, &o.Total); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase orders: %w", err)
	}
	rows.Close()

	if err := loadOrderLines(ctx, r.pool, orders); err != nil {
		return nil, err
	}

	items := make([]model.PurchaseOrder, len(orders))
	for i, o := range orders {
		items[i] = *o
	}
	return model.NewPage(items, total, req), nil
}

// Confirm locks the order, credits stock for every line with a kardex IN
// movement and marks the order RECEIVED, all in one transaction.
func (r *purchaseOrderRepository) Confirm(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var order *model.PurchaseOrder

	err := withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		o, err := r.transition(ctx, tx, id, model.OrderReceived)
		if err != nil {
			return err
		}

		for _, line := range o.Lines {
			_, err := adjustStock(ctx, tx, model.StockAdjustment{
				PhoneID:    line.PhoneID,
				Delta:      line.Quantity,
				Origin:     model.OriginPurchaseOrder,
				DocumentID: o.ID,
				UnitCost:   line.UnitCost,
			})
			if err != nil {
				return fmt.Errorf("failed to credit stock for phone %s: %w", line.PhoneID, err)
			}
		}

		order = o
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to confirm purchase order")
		return nil, err
	}

	r.logger.Info().Str("order_id", id).Int("lines", len(order.Lines)).Msg("purchase order received")
	return order, nil
}

// Cancel marks an ISSUED order ANNULLED.
func (r *purchaseOrderRepository) Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var order *model.PurchaseOrder

	err := withTx(ctx, r.pool, r.logger, func(tx pgx.Tx) error {
		o, err := r.transition(ctx, tx, id, model.OrderAnnulled)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to cancel purchase order")
		return nil, err
	}

	return order, nil
}

// transition locks the order row, checks the state machine and writes the new state.
func (r *purchaseOrderRepository) transition(ctx context.Context, tx pgx.Tx, id string, next model.PurchaseOrderState) (*model.PurchaseOrder, error) {
	o, err := getOrder(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, model.ErrOrderNotFound
	}
	if !o.State.CanTransition(next) {
		return nil, model.ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `UPDATE purchase_orders SET state = $2 WHERE id = $1`, id, string(next)); err != nil {
		return nil, fmt.Errorf("failed to update purchase order state: %w", err)
	}
	o.State = next

	if err := loadOrderLines(ctx, tx, []*model.PurchaseOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}
