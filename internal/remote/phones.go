package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"phonestore/internal/model"
)

type phoneRepository struct {
	c *Client
}

func (r *phoneRepository) List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error) {
	var res pageDTO[phoneDTO]
	if err := r.c.get(ctx, "/celulares", pageQuery(req.Page, req.Limit), &res); err != nil {
		return nil, fmt.Errorf("failed to list phones: %w", err)
	}
	return toPage(res, phoneDTO.toModel), nil
}

func (r *phoneRepository) GetByID(ctx context.Context, id string) (*model.Phone, error) {
	var d phoneDTO
	if err := r.c.get(ctx, "/celulares/"+url.PathEscape(id), nil, &d); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	p := d.toModel()
	return &p, nil
}

// AdjustStock reads the current stock and writes the clamped result. The
// backend offers no atomic primitive, so concurrent adjustments of the same
// phone can lose updates.
func (r *phoneRepository) AdjustStock(ctx context.Context, adj model.StockAdjustment) (*model.StockMovement, error) {
	phone, err := r.GetByID(ctx, adj.PhoneID)
	if err != nil {
		return nil, err
	}
	if phone == nil {
		return nil, model.ErrPhoneNotFound
	}

	next := model.ClampedStock(phone.StockQuantity, adj.Delta)
	body := map[string]int{"stock_actual": next}
	if err := r.c.do(ctx, http.MethodPut, "/celulares/"+url.PathEscape(adj.PhoneID), nil, body, nil); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	m := &model.StockMovement{
		PhoneID:     adj.PhoneID,
		MovedAt:     time.Now().UTC(),
		Kind:        model.MovementKindFor(adj.Delta),
		Origin:      adj.Origin,
		DocumentID:  adj.DocumentID,
		UnitCost:    adj.UnitCost,
		StockBefore: phone.StockQuantity,
		StockAfter:  next,
	}
	m.Quantity = m.Applied()
	if m.Quantity < 0 {
		m.Quantity = -m.Quantity
	}
	return m, nil
}

// Upsert finds a phone by code and updates it, or creates it.
func (r *phoneRepository) Upsert(ctx context.Context, phone *model.Phone) (bool, error) {
	q := pageQuery(1, 10)
	q.Set("search", phone.Code)
	q.Set("searchField", "codigo")

	var res pageDTO[phoneDTO]
	if err := r.c.get(ctx, "/celulares", q, &res); err != nil {
		return false, fmt.Errorf("failed to look up phone %s: %w", phone.Code, err)
	}

	body := phoneWrite{
		Code:         phone.Code,
		Brand:        phone.Brand,
		Model:        phone.Model,
		Color:        phone.Color,
		Storage:      phone.Storage,
		RAM:          phone.RAM,
		SalePrice:    money(phone.SalePrice),
		PurchaseCost: money(phone.PurchaseCost),
		Status:       phone.Status,
		Description:  phone.Description,
	}

	for _, d := range res.Items {
		if d.Code != phone.Code {
			continue
		}
		phone.ID = string(d.ID)
		phone.StockQuantity = d.Stock
		if err := r.c.do(ctx, http.MethodPut, "/celulares/"+url.PathEscape(phone.ID), nil, body, nil); err != nil {
			return false, fmt.Errorf("failed to update phone %s: %w", phone.Code, err)
		}
		return false, nil
	}

	stock := phone.StockQuantity
	body.Stock = &stock

	var created phoneDTO
	if err := r.c.do(ctx, http.MethodPost, "/celulares", nil, body, &created); err != nil {
		return false, fmt.Errorf("failed to create phone %s: %w", phone.Code, err)
	}
	phone.ID = string(created.ID)
	return true, nil
}

type kardexRepository struct {
	c *Client
}

func (r *kardexRepository) ListByPhone(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error) {
	q := pageQuery(req.Page, req.Limit)
	if phoneID != "" {
		q.Set("search", phoneID)
	}

	var res pageDTO[kardexDTO]
	if err := r.c.get(ctx, "/kardex", q, &res); err != nil {
		return nil, fmt.Errorf("failed to list kardex: %w", err)
	}

	page := toPage(res, kardexDTO.toModel)
	for i := range page.Items {
		if page.Items[i].PhoneID == "" {
			page.Items[i].PhoneID = phoneID
		}
	}
	return page, nil
}
