package repository

import (
	"context"
	"fmt"

	"phonestore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL-backed invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool, logger zerolog.Logger) InvoiceRepository {
	return &invoiceRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "invoice").Logger(),
	}
}

// Create inserts an invoice header. Amounts are rounded to cents here.
func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	query := `
		INSERT INTO invoices (id, number, issued_at, customer_profile_id, user_id, payment_method, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.Number, inv.IssuedAt, inv.CustomerProfileID, inv.UserID, string(inv.PaymentMethod),
		model.RoundMoney(inv.Subtotal), model.RoundMoney(inv.Tax), model.RoundMoney(inv.Total),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("number", inv.Number).Msg("failed to create invoice")
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	r.logger.Debug().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("invoice created")
	return nil
}

// Delete removes an invoice and, through the foreign key, its lines.
func (r *invoiceRepository) Delete(ctx context.Context, invoiceID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID); err != nil {
		r.logger.Error().Err(err).Str("invoice_id", invoiceID).Msg("failed to delete invoice")
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// CreateLine inserts one invoice line.
func (r *invoiceRepository) CreateLine(ctx context.Context, line *model.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}

	query := `
		INSERT INTO invoice_lines (id, invoice_id, phone_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		line.ID, line.InvoiceID, line.PhoneID, line.Quantity,
		model.RoundMoney(line.UnitPrice), model.RoundMoney(line.Subtotal),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_id", line.InvoiceID).Str("phone_id", line.PhoneID).Msg("failed to create invoice line")
		return fmt.Errorf("failed to create invoice line: %w", err)
	}
	return nil
}

// DeleteLine removes one invoice line.
func (r *invoiceRepository) DeleteLine(ctx context.Context, lineID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM invoice_lines WHERE id = $1`, lineID); err != nil {
		r.logger.Error().Err(err).Str("line_id", lineID).Msg("failed to delete invoice line")
		return fmt.Errorf("failed to delete invoice line: %w", err)
	}
	return nil
}

// ListByCustomer returns a page of invoices, newest first, with their lines.
func (r *invoiceRepository) ListByCustomer(ctx context.Context, profileID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error) {
	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM invoices WHERE customer_profile_id = $1`, profileID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, number, issued_at, customer_profile_id, user_id, payment_method, subtotal, tax, total
		FROM invoices
		WHERE customer_profile_id = $1
		ORDER BY issued_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, profileID, req.Limit, req.Offset())
	if err != nil {
		r.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to query invoices")
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.InvoiceWithLines
	index := make(map[string]int)
	var ids []string
	for rows.Next() {
		var inv model.InvoiceWithLines
		err := rows.Scan(&inv.ID, &inv.Number, &inv.IssuedAt, &inv.CustomerProfileID, &inv.UserID,
			&inv.PaymentMethod, &inv.Subtotal, &inv.Tax, &inv.Total)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.Lines = []model.InvoiceLine{}
		index[inv.ID] = len(invoices)
		ids = append(ids, inv.ID)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		lineRows, err := r.pool.Query(ctx, `
			SELECT id, invoice_id, phone_id, quantity, unit_price, subtotal
			FROM invoice_lines
			WHERE invoice_id = ANY($1)
			ORDER BY invoice_id, id`, ids)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to query invoice lines")
			return nil, fmt.Errorf("failed to query invoice lines: %w", err)
		}
		defer lineRows.Close()

		for lineRows.Next() {
			var l model.InvoiceLine
			if err := lineRows.Scan(&l.ID, &l.InvoiceID, &l.PhoneID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
				return nil, fmt.Errorf("failed to scan invoice line: %w", err)
			}
			i := index[l.InvoiceID]
			invoices[i].Lines = append(invoices[i].Lines, l)
		}
		if err := lineRows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating invoice lines: %w", err)
		}
	}

	return model.NewPage(invoices, total, req), nil
}
