package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartState is the lifecycle state of a cart.
type CartState string

const (
	CartOpen      CartState = "OPEN"
	CartPurchased CartState = "PURCHASED"
)

// Cart groups the lines a customer is about to buy.
type Cart struct {
	ID                string    `json:"id"`
	CustomerProfileID string    `json:"customerProfileId"`
	State             CartState `json:"state"`
	CreatedAt         time.Time `json:"createdAt"`
}

// CartLine is one phone in a cart. UnitPrice is captured when the line is
// written and does not follow later catalogue price changes.
type CartLine struct {
	ID        string          `json:"id"`
	CartID    string          `json:"cartId"`
	PhoneID   string          `json:"phoneId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns the rounded line amount.
func (l CartLine) Subtotal() decimal.Decimal {
	return RoundMoney(LineAmount(l.UnitPrice, l.Quantity))
}

// AddToCartRequest is the payload for adding a phone to the cart.
type AddToCartRequest struct {
	PhoneID  string `json:"phoneId" validate:"required"`
	Quantity int    `json:"quantity"`
}

// SetQuantityRequest is the payload for changing a line quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineView is a cart line decorated for display.
type CartLineView struct {
	CartLine
	PhoneName string          `json:"phoneName"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the open cart with its lines and totals.
type CartView struct {
	Cart    *Cart           `json:"cart"`
	Lines   []CartLineView  `json:"lines"`
	TaxRate decimal.Decimal `json:"taxRate"`
	Totals
}
