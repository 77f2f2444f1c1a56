package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderState is the lifecycle state of an inbound stock order.
type PurchaseOrderState string

const (
	OrderIssued   PurchaseOrderState = "ISSUED"
	OrderReceived PurchaseOrderState = "RECEIVED"
	OrderAnnulled PurchaseOrderState = "ANNULLED"
)

// CanTransition reports whether an order may move from s to next.
// RECEIVED and ANNULLED are terminal.
func (s PurchaseOrderState) CanTransition(next PurchaseOrderState) bool {
	return s == OrderIssued && (next == OrderReceived || next == OrderAnnulled)
}

// PurchaseOrder is a supplier order that credits stock once received.
type PurchaseOrder struct {
	ID         string              `json:"id"`
	SupplierID string              `json:"supplierId"`
	UserID     string              `json:"userId"`
	IssuedAt   time.Time           `json:"issuedAt"`
	State      PurchaseOrderState  `json:"state"`
	Total      decimal.Decimal     `json:"total"`
	Lines      []PurchaseOrderLine `json:"lines"`
}

// PurchaseOrderLine is one phone on a purchase order.
type PurchaseOrderLine struct {
	ID       string          `json:"id,omitempty"`
	PhoneID  string          `json:"phoneId"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CreatePurchaseOrderRequest is the payload for issuing a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID string                         `json:"supplierId" validate:"required"`
	IssueDate  string                         `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	Lines      []CreatePurchaseOrderLineInput `json:"lines" validate:"required,min=1,dive"`
}

// CreatePurchaseOrderLineInput is one requested line. The subtotal is derived.
type CreatePurchaseOrderLineInput struct {
	PhoneID  string          `json:"phoneId" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unitCost"`
}
