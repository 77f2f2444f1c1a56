package model

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places money values are persisted with.
const MoneyPlaces = 2

// RoundMoney rounds a monetary amount half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineAmount returns unitPrice × quantity at full precision.
func LineAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Totals holds the amounts shown on a cart summary and persisted on an invoice.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums the lines and applies taxRate. Intermediate values keep
// full precision; only the returned amounts are rounded.
func ComputeTotals(lines []CartLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineAmount(l.UnitPrice, l.Quantity))
	}
	tax := subtotal.Mul(taxRate)

	return Totals{
		Subtotal: RoundMoney(subtotal),
		Tax:      RoundMoney(tax),
		Total:    RoundMoney(subtotal.Add(tax)),
	}
}
