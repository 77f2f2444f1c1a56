package repository

import (
	"context"

	"phonestore/internal/model"
)

// Lookups that find nothing return (nil, nil); callers map that to the
// matching domain error.

// ProfileRepository defines data access for customer profiles.
type ProfileRepository interface {
	// FindByOwner returns the profile owned by the given user account.
	FindByOwner(ctx context.Context, userID string) (*model.CustomerProfile, error)

	GetByID(ctx context.Context, id string) (*model.CustomerProfile, error)
	Create(ctx context.Context, profile *model.CustomerProfile) error
	Update(ctx context.Context, profile *model.CustomerProfile) error
}

// PhoneRepository defines data access for the phone catalogue and its stock.
type PhoneRepository interface {
	// List returns a page of phones ordered by brand and model.
	List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error)

	GetByID(ctx context.Context, id string) (*model.Phone, error)

	// AdjustStock applies a relative stock change, clamping the result at
	// zero, and returns the movement actually recorded.
	AdjustStock(ctx context.Context, adj model.StockAdjustment) (*model.StockMovement, error)

	// Upsert inserts or updates a phone by its code. It reports whether a new
	// phone was created.
	Upsert(ctx context.Context, phone *model.Phone) (bool, error)
}

// CartRepository defines data access for carts.
type CartRepository interface {
	// ListByCustomer returns the carts of a profile, newest first.
	ListByCustomer(ctx context.Context, profileID string) ([]model.Cart, error)

	// Create stores a new OPEN cart. When the store already holds an open
	// cart for the profile, that cart is returned instead.
	Create(ctx context.Context, cart *model.Cart) (*model.Cart, error)

	UpdateState(ctx context.Context, cartID string, state model.CartState) error
}

// CartLineRepository defines data access for cart lines.
type CartLineRepository interface {
	ListByCart(ctx context.Context, cartID string) ([]model.CartLine, error)
	Create(ctx context.Context, line *model.CartLine) error
	Update(ctx context.Context, line *model.CartLine) error
	Delete(ctx context.Context, lineID string) error
}

// InvoiceRepository defines data access for invoices and their lines.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, invoiceID string) error
	CreateLine(ctx context.Context, line *model.InvoiceLine) error
	DeleteLine(ctx context.Context, lineID string) error

	// ListByCustomer returns a page of a customer's invoices, newest first,
	// each with its lines.
	ListByCustomer(ctx context.Context, profileID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error)
}

// PurchaseOrderRepository defines data access for purchase orders.
type PurchaseOrderRepository interface {
	// Create stores the order and its lines.
	Create(ctx context.Context, order *model.PurchaseOrder) error

	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)

	// ListByState returns a page of orders in the given state, newest first.
	ListByState(ctx context.Context, state model.PurchaseOrderState, req model.PageRequest) (*model.Page[model.PurchaseOrder], error)

	// Confirm marks an ISSUED order RECEIVED and credits stock for every line.
	Confirm(ctx context.Context, id string) (*model.PurchaseOrder, error)

	// Cancel marks an ISSUED order ANNULLED.
	Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error)
}

// SupplierRepository defines read access to suppliers.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*model.Supplier, error)
}

// KardexRepository exposes the stock movement history of a phone.
type KardexRepository interface {
	ListByPhone(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error)
}

// JournalRepository persists checkout saga progress.
type JournalRepository interface {
	Append(ctx context.Context, entry model.SagaEntry) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Profiles       ProfileRepository
	Phones         PhoneRepository
	Carts          CartRepository
	CartLines      CartLineRepository
	Invoices       InvoiceRepository
	PurchaseOrders PurchaseOrderRepository
	Suppliers      SupplierRepository
	Kardex         KardexRepository
	Journal        JournalRepository
}
