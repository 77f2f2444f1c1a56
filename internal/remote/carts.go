package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"phonestore/internal/model"
)

// Page sizes used when listing a customer's carts and a cart's lines.
const (
	cartListLimit     = 50
	cartLineListLimit = 100
)

type cartRepository struct {
	c *Client
}

func (r *cartRepository) ListByCustomer(ctx context.Context, profileID string) ([]model.Cart, error) {
	q := pageQuery(1, cartListLimit)
	q.Set("search", profileID)
	q.Set("searchField", "id_cliente")
	q.Set("sort", "fecha_creacion")
	q.Set("order", "DESC")

	var res pageDTO[cartDTO]
	if err := r.c.get(ctx, "/carrito", q, &res); err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}

	carts := make([]model.Cart, 0, len(res.Items))
	for _, d := range res.Items {
		if string(d.CustomerID) != profileID {
			continue
		}
		carts = append(carts, d.toModel())
	}
	sort.SliceStable(carts, func(i, j int) bool {
		return carts[i].CreatedAt.After(carts[j].CreatedAt)
	})
	return carts, nil
}

// Create posts a new OPEN cart. The backend has no uniqueness guarantee, so
// two concurrent calls can each create one.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	body := map[string]string{
		"id_cliente": cart.CustomerProfileID,
		"estado":     cartStates.wire(model.CartOpen),
	}

	var d cartDTO
	if err := r.c.do(ctx, http.MethodPost, "/carrito", nil, body, &d); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	created := d.toModel()
	if created.CustomerProfileID == "" {
		created.CustomerProfileID = cart.CustomerProfileID
	}
	return &created, nil
}

func (r *cartRepository) UpdateState(ctx context.Context, cartID string, state model.CartState) error {
	body := map[string]string{"estado": cartStates.wire(state)}
	if err := r.c.do(ctx, http.MethodPut, "/carrito/"+url.PathEscape(cartID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update cart state: %w", err)
	}
	return nil
}

type cartLineRepository struct {
	c *Client
}

func (r *cartLineRepository) ListByCart(ctx context.Context, cartID string) ([]model.CartLine, error) {
	q := pageQuery(1, cartLineListLimit)
	q.Set("search", cartID)
	q.Set("searchField", "id_carrito")

	var res pageDTO[cartLineDTO]
	if err := r.c.get(ctx, "/productosCarrito", q, &res); err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	lines := make([]model.CartLine, 0, len(res.Items))
	for _, d := range res.Items {
		if string(d.CartID) != cartID {
			continue
		}
		lines = append(lines, d.toModel())
	}
	return lines, nil
}

func (r *cartLineRepository) Create(ctx context.Context, line *model.CartLine) error {
	body := cartLineWrite{
		CartID:    line.CartID,
		PhoneID:   line.PhoneID,
		Quantity:  line.Quantity,
		UnitPrice: money(line.UnitPrice),
	}

	var d cartLineDTO
	if err := r.c.do(ctx, http.MethodPost, "/productosCarrito", nil, body, &d); err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	line.ID = string(d.ID)
	return nil
}

func (r *cartLineRepository) Update(ctx context.Context, line *model.CartLine) error {
	body := cartLineWrite{Quantity: line.Quantity, UnitPrice: money(line.UnitPrice)}
	if err := r.c.do(ctx, http.MethodPut, "/productosCarrito/"+url.PathEscape(line.ID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	return nil
}

func (r *cartLineRepository) Delete(ctx context.Context, lineID string) error {
	if err := r.c.do(ctx, http.MethodDelete, "/productosCarrito/"+url.PathEscape(lineID), nil, nil, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}
