package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is recorded on the invoice; no payment is captured.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// ParsePaymentMethod accepts a payment method case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return m, nil
	case "":
		return PaymentCash, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported payment method %q", s))
	}
}

// Invoice is created once per successful checkout.
type Invoice struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	IssuedAt          time.Time       `json:"issuedAt"`
	CustomerProfileID string          `json:"customerProfileId"`
	UserID            string          `json:"userId"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
}

// InvoiceLine mirrors one cart line at checkout time.
type InvoiceLine struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoiceId"`
	PhoneID   string          `json:"phoneId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// InvoiceNumber formats the invoice number for the given issue time.
func InvoiceNumber(t time.Time) string {
	return "INV-" + t.Format("20060102-150405")
}

// InvoiceWithLines is an invoice and its lines, as shown in purchase history.
type InvoiceWithLines struct {
	Invoice
	Lines []InvoiceLine `json:"lines"`
}

// CheckoutRequest is the payload for the checkout endpoint.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// AccountView is the set of views refreshed after a checkout.
type AccountView struct {
	Profile  *CustomerProfile        `json:"profile"`
	Cart     *CartView               `json:"cart,omitempty"`
	Catalog  *Page[Phone]            `json:"catalog"`
	Invoices *Page[InvoiceWithLines] `json:"invoices"`
}

// CheckoutResult is returned by a successful checkout.
type CheckoutResult struct {
	Invoice Invoice       `json:"invoice"`
	Lines   []InvoiceLine `json:"lines"`
	View    *AccountView  `json:"view,omitempty"`
}
