package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"phonestore/internal/model"
)

type purchaseOrderRepository struct {
	c *Client
}

func (r *purchaseOrderRepository) Create(ctx context.Context, o *model.PurchaseOrder) error {
	body := orderWrite{
		SupplierID: o.SupplierID,
		UserID:     o.UserID,
		IssuedAt:   o.IssuedAt.Format("2006-01-02"),
		State:      orderStates.wire(o.State),
		Lines:      make([]orderLineWrite, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		body.Lines = append(body.Lines, orderLineWrite{
			PhoneID:  l.PhoneID,
			Quantity: l.Quantity,
			UnitCost: money(l.UnitCost),
			Subtotal: money(l.Subtotal),
		})
	}

	var d orderDTO
	if err := r.c.do(ctx, http.MethodPost, "/ordenCompras", nil, body, &d); err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	o.ID = string(d.ID)
	return nil
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var d orderDTO
	if err := r.c.get(ctx, "/ordenCompras/"+url.PathEscape(id), nil, &d); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	o := d.toModel()
	return &o, nil
}

func (r *purchaseOrderRepository) ListByState(ctx context.Context, state model.PurchaseOrderState, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	q := pageQuery(req.Page, req.Limit)
	q.Set("estado", orderStates.wire(state))

	var res pageDTO[orderDTO]
	if err := r.c.get(ctx, "/ordenCompras", q, &res); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return toPage(res, orderDTO.toModel), nil
}

// Confirm asks the backend to receive the order; the backend credits stock.
func (r *purchaseOrderRepository) Confirm(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return r.patch(ctx, id, "confirmar")
}

func (r *purchaseOrderRepository) Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return r.patch(ctx, id, "anular")
}

func (r *purchaseOrderRepository) patch(ctx context.Context, id, action string) (*model.PurchaseOrder, error) {
	var d orderDTO
	if err := r.c.do(ctx, http.MethodPatch, "/ordenCompras/"+url.PathEscape(id)+"/"+action, nil, nil, &d); err != nil {
		if IsNotFound(err) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to %s purchase order: %w", action, err)
	}
	o := d.toModel()
	if o.ID == "" {
		o.ID = id
	}
	return &o, nil
}
