package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"phonestore/internal/model"

	"golang.org/x/sync/errgroup"
)

// The invoice endpoints cannot filter by customer, so history is built from
// one large page of each listing.
const (
	invoiceScanLimit     = 500
	invoiceLineScanLimit = 1000
)

type invoiceRepository struct {
	c *Client
}

func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	body := invoiceWrite{
		Number:        inv.Number,
		IssuedAt:      inv.IssuedAt.UTC().Format(time.RFC3339),
		CustomerID:    inv.CustomerProfileID,
		UserID:        inv.UserID,
		PaymentMethod: paymentMethods.wire(inv.PaymentMethod),
		Subtotal:      money(inv.Subtotal),
		Tax:           money(inv.Tax),
		Total:         money(inv.Total),
	}

	var d invoiceDTO
	if err := r.c.do(ctx, http.MethodPost, "/factura", nil, body, &d); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	inv.ID = string(d.ID)
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, invoiceID string) error {
	if err := r.c.do(ctx, http.MethodDelete, "/factura/"+url.PathEscape(invoiceID), nil, nil, nil); err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) CreateLine(ctx context.Context, line *model.InvoiceLine) error {
	body := invoiceLineWrite{
		InvoiceID: line.InvoiceID,
		PhoneID:   line.PhoneID,
		Quantity:  line.Quantity,
		UnitPrice: money(line.UnitPrice),
		Subtotal:  money(line.Subtotal),
	}

	var d invoiceLineDTO
	if err := r.c.do(ctx, http.MethodPost, "/detalle-factura", nil, body, &d); err != nil {
		return fmt.Errorf("failed to create invoice line: %w", err)
	}
	line.ID = string(d.ID)
	return nil
}

func (r *invoiceRepository) DeleteLine(ctx context.Context, lineID string) error {
	if err := r.c.do(ctx, http.MethodDelete, "/detalle-factura/"+url.PathEscape(lineID), nil, nil, nil); err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete invoice line: %w", err)
	}
	return nil
}

// ListByCustomer fetches invoices and invoice lines concurrently, keeps the
// customer's invoices and pages them newest first.
func (r *invoiceRepository) ListByCustomer(ctx context.Context, profileID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error) {
	var (
		invoices pageDTO[invoiceDTO]
		lines    pageDTO[invoiceLineDTO]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.c.get(gctx, "/factura", pageQuery(1, invoiceScanLimit), &invoices)
	})
	g.Go(func() error {
		return r.c.get(gctx, "/detalle-factura", pageQuery(1, invoiceLineScanLimit), &lines)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load invoice history: %w", err)
	}

	byInvoice := make(map[string][]model.InvoiceLine)
	for _, d := range lines.Items {
		l := d.toModel()
		byInvoice[l.InvoiceID] = append(byInvoice[l.InvoiceID], l)
	}

	var mine []model.InvoiceWithLines
	for _, d := range invoices.Items {
		if string(d.CustomerID) != profileID {
			continue
		}
		inv := d.toModel()
		own := byInvoice[inv.ID]
		if own == nil {
			own = []model.InvoiceLine{}
		}
		mine = append(mine, model.InvoiceWithLines{Invoice: inv, Lines: own})
	}

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].IssuedAt.After(mine[j].IssuedAt)
	})

	return model.Paginate(mine, req), nil
}
