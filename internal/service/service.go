package service

import (
	"context"

	"phonestore/internal/model"
)

// Listing bounds shared by the services.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// CartService resolves the caller's open cart and edits its lines.
type CartService interface {
	// EnsureOpenCart returns the caller's open cart, creating one when none exists.
	EnsureOpenCart(ctx context.Context, userID string) (*model.Cart, error)

	// AddOrIncrement adds a phone to the open cart, or raises the quantity of
	// the existing line and resets its unit price to the current catalogue price.
	AddOrIncrement(ctx context.Context, userID, phoneID string, quantity int) (*model.CartLine, error)

	// SetQuantity replaces the quantity of a line. Zero or less requires an
	// explicit removal instead.
	SetQuantity(ctx context.Context, userID, lineID string, quantity int) (*model.CartLine, error)

	RemoveLine(ctx context.Context, userID, lineID string) error

	// View returns the open cart with its lines and totals.
	View(ctx context.Context, userID string) (*model.CartView, error)
}

// CheckoutService turns the open cart into an invoice.
type CheckoutService interface {
	Checkout(ctx context.Context, userID, paymentMethod string) (*model.CheckoutResult, error)
}

// PurchaseOrderService manages inbound stock orders.
type PurchaseOrderService interface {
	CreateOrder(ctx context.Context, userID string, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	Confirm(ctx context.Context, orderID string) (*model.PurchaseOrder, error)
	Cancel(ctx context.Context, orderID string) (*model.PurchaseOrder, error)

	// ListPending returns one page of ISSUED orders.
	ListPending(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error)

	// ListRegistered returns RECEIVED and ANNULLED orders merged into one page.
	ListRegistered(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error)
}

// CatalogService exposes the phone catalogue.
type CatalogService interface {
	List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error)
	Get(ctx context.Context, id string) (*model.Phone, error)
	Kardex(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error)
}

// AccountService covers the caller's profile and purchase history.
type AccountService interface {
	GetProfile(ctx context.Context, userID string) (*model.CustomerProfile, error)
	SaveProfile(ctx context.Context, userID string, req *model.ProfileRequest) (*model.CustomerProfile, error)
	Invoices(ctx context.Context, userID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error)
}
