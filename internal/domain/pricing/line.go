// Package pricing provides the monetary totals engine: line items, the
// document pricing policy and the pure totals calculator. Everything in
// this package is synchronous, side-effect free and safe to recompute.
package pricing

import (
	"facture/internal/core/id"
	"facture/internal/core/types"
)

// LineItem is one billable row of a document.
// Monetary fields are decimals; raw float input must be sanitized at the
// API boundary (see types.SanitizeAmount) so no NaN or negative value
// ever reaches the calculator.
type LineItem struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Optional product reference (seeded from the product catalog)
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	Description string `db:"description" json:"description"`

	// Quantity and pricing
	Quantity  types.Money `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// TaxRate is this line's own rate in percent. Ignored entirely when
	// the document tax mode is global.
	TaxRate types.Money `db:"tax_rate" json:"taxRate"`

	// LineDiscount is a fixed per-line discount amount. The effective
	// value is clamped to the gross line amount, never producing a
	// negative net line.
	LineDiscount types.Money `db:"line_discount" json:"lineDiscount"`
}

// NewLineItem creates a line with a fresh ID and sanitized values.
func NewLineItem(description string, quantity, unitPrice, taxRate types.Money) LineItem {
	return LineItem{
		LineID:      id.New(),
		Description: description,
		Quantity:    types.SanitizeMoney(quantity),
		UnitPrice:   types.SanitizeMoney(unitPrice),
		TaxRate:     types.ClampPercent(taxRate),
	}
}

// Sanitize coerces out-of-range fields into the valid domain.
// Negative amounts become zero, tax rate is clamped to [0,100].
func (l *LineItem) Sanitize() {
	l.Quantity = types.SanitizeMoney(l.Quantity)
	l.UnitPrice = types.SanitizeMoney(l.UnitPrice)
	l.TaxRate = types.ClampPercent(l.TaxRate)
	l.LineDiscount = types.SanitizeMoney(l.LineDiscount)
}

// GrossAmount is quantity × unitPrice before any discount.
func (l LineItem) GrossAmount() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// EffectiveDiscount is the per-line discount clamped to [0, gross].
func (l LineItem) EffectiveDiscount() types.Money {
	return types.ClampMoney(l.LineDiscount, types.Zero(), l.GrossAmount())
}

// NetAmount is the gross line amount minus the effective discount.
func (l LineItem) NetAmount() types.Money {
	return l.GrossAmount().Sub(l.EffectiveDiscount())
}

// Rescale multiplies the monetary fields (unit price and line discount)
// by an exchange rate. Quantity and tax rate are dimensionless and stay.
func (l *LineItem) Rescale(rate types.Money) {
	l.UnitPrice = l.UnitPrice.Mul(rate)
	l.LineDiscount = l.LineDiscount.Mul(rate)
}
