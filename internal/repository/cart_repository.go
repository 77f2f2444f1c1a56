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

type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListByCustomer returns the carts of a profile, newest first.
func (r *cartRepository) ListByCustomer(ctx context.Context, profileID string) ([]model.Cart, error) {
	query := `
		SELECT id, customer_profile_id, state, created_at
		FROM carts
		WHERE customer_profile_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		r.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to query carts")
		return nil, fmt.Errorf("failed to query carts: %w", err)
	}
	defer rows.Close()

	var carts []model.Cart
	for rows.Next() {
		var c model.Cart
		if err := rows.Scan(&c.ID, &c.CustomerProfileID, &c.State, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating carts: %w", err)
	}

	return carts, nil
}

// Create inserts an OPEN cart. The partial unique index on open carts turns a
// concurrent second insert into a no-op, and the cart that won is returned.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now().UTC()
	}
	cart.State = model.CartOpen

	insert := `
		INSERT INTO carts (id, customer_profile_id, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_profile_id) WHERE state = 'OPEN' DO NOTHING
		RETURNING id, customer_profile_id, state, created_at`

	var created model.Cart
	err := r.pool.QueryRow(ctx, insert, cart.ID, cart.CustomerProfileID, string(cart.State), cart.CreatedAt).
		Scan(&created.ID, &created.CustomerProfileID, &created.State, &created.CreatedAt)
	if err == nil {
		r.logger.Debug().Str("cart_id", created.ID).Msg("cart created")
		return &created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("profile_id", cart.CustomerProfileID).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	existing := `
		SELECT id, customer_profile_id, state, created_at
		FROM carts
		WHERE customer_profile_id = $1 AND state = 'OPEN'`

	var open model.Cart
	err = r.pool.QueryRow(ctx, existing, cart.CustomerProfileID).
		Scan(&open.ID, &open.CustomerProfileID, &open.State, &open.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("profile_id", cart.CustomerProfileID).Msg("failed to load existing open cart")
		return nil, fmt.Errorf("failed to load existing open cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", open.ID).Msg("reusing existing open cart")
	return &open, nil
}

// UpdateState sets the cart state.
func (r *cartRepository) UpdateState(ctx context.Context, cartID string, state model.CartState) error {
	tag, err := r.pool.Exec(ctx, `UPDATE carts SET state = $2 WHERE id = $1`, cartID, string(state))
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID).Str("state", string(state)).Msg("failed to update cart state")
		return fmt.Errorf("failed to update cart state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNoOpenCart
	}
	return nil
}

type cartLineRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartLineRepository creates a new PostgreSQL-backed cart line repository.
func NewCartLineRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartLineRepository {
	return &cartLineRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart_line").Logger(),
	}
}

// ListByCart returns the lines of a cart.
func (r *cartLineRepository) ListByCart(ctx context.Context, cartID string) ([]model.CartLine, error) {
	query := `
		SELECT id, cart_id, phone_id, quantity, unit_price
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.PhoneID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// Create inserts a cart line.
func (r *cartLineRepository) Create(ctx context.Context, line *model.CartLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}

	query := `
		INSERT INTO cart_lines (id, cart_id, phone_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query, line.ID, line.CartID, line.PhoneID, line.Quantity, model.RoundMoney(line.UnitPrice)); err != nil {
		r.logger.Error().Err(err).Str("cart_id", line.CartID).Str("phone_id", line.PhoneID).Msg("failed to create cart line")
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	return nil
}

// Update overwrites quantity and unit price of a line.
func (r *cartLineRepository) Update(ctx context.Context, line *model.CartLine) error {
	query := `UPDATE cart_lines SET quantity = $2, unit_price = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, line.ID, line.Quantity, model.RoundMoney(line.UnitPrice))
	if err != nil {
		r.logger.Error().Err(err).Str("line_id", line.ID).Msg("failed to update cart line")
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartLineNotFound
	}
	return nil
}

// Delete removes a line. Deleting a missing line is not an error.
func (r *cartLineRepository) Delete(ctx context.Context, lineID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID); err != nil {
		r.logger.Error().Err(err).Str("line_id", lineID).Msg("failed to delete cart line")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}
