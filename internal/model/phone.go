package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phone represents a handset in the catalogue.
type Phone struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Color         string          `json:"color"`
	Storage       string          `json:"storage"`
	RAM           string          `json:"ram"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	PurchaseCost  decimal.Decimal `json:"purchaseCost"`
	StockQuantity int             `json:"stockQuantity"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"imageUrl,omitempty"`
}

// DisplayName returns "code • brand model", or just "brand model" without a code.
func (p Phone) DisplayName() string {
	name := p.Brand + " " + p.Model
	if p.Code != "" {
		return p.Code + " • " + name
	}
	return name
}

// MovementKind classifies a stock movement.
type MovementKind string

const (
	MovementIn     MovementKind = "IN"
	MovementOut    MovementKind = "OUT"
	MovementAdjust MovementKind = "ADJUST"
)

// Movement origins.
const (
	OriginSale          = "SALE"
	OriginSaleReversal  = "SALE_REVERSAL"
	OriginPurchaseOrder = "PURCHASE_ORDER"
	OriginCatalogImport = "CATALOG_IMPORT"
)

// StockAdjustment describes a relative change to a phone's stock.
// Negative deltas are clamped so that stock never drops below zero.
type StockAdjustment struct {
	PhoneID    string
	Delta      int
	Origin     string
	DocumentID string
	UnitCost   decimal.Decimal
}

// StockMovement is one kardex entry: a stock change and its source document.
type StockMovement struct {
	ID          string          `json:"id"`
	PhoneID     string          `json:"phoneId"`
	MovedAt     time.Time       `json:"movedAt"`
	Kind        MovementKind    `json:"kind"`
	Origin      string          `json:"origin"`
	DocumentID  string          `json:"documentId"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	StockBefore int             `json:"stockBefore"`
	StockAfter  int             `json:"stockAfter"`
}

// Applied returns the signed change actually applied to stock, which can be
// smaller than the requested delta when a debit was clamped at zero.
func (m StockMovement) Applied() int {
	return m.StockAfter - m.StockBefore
}

// ClampedStock returns max(0, current+delta).
func ClampedStock(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// MovementKindFor returns the kind of movement a delta produces.
func MovementKindFor(delta int) MovementKind {
	switch {
	case delta > 0:
		return MovementIn
	case delta < 0:
		return MovementOut
	default:
		return MovementAdjust
	}
}
