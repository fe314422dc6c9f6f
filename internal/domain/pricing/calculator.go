package pricing

import (
	"facture/internal/core/types"
)

// Totals is the derived monetary summary of a line set under a policy.
// It is never stored independently of its inputs except inside a frozen
// commit snapshot.
type Totals struct {
	// Subtotal is the taxable base: line subtotal minus the document
	// discount, floored at zero.
	Subtotal types.Money `db:"subtotal" json:"subtotal"`

	// TaxTotal is the tax per the active tax mode.
	TaxTotal types.Money `db:"tax_total" json:"taxTotal"`

	// Shipping is the sanitized shipping charge included in the total.
	Shipping types.Money `db:"shipping" json:"shipping"`

	// TotalAmount = Subtotal + TaxTotal + Shipping, by construction.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
}

// ZeroTotals returns all-zero totals (the empty line list result).
func ZeroTotals() Totals {
	return Totals{
		Subtotal:    types.Zero(),
		TaxTotal:    types.Zero(),
		Shipping:    types.Zero(),
		TotalAmount: types.Zero(),
	}
}

// Equal reports whether two totals carry identical amounts.
func (t Totals) Equal(other Totals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.TaxTotal.Equal(other.TaxTotal) &&
		t.Shipping.Equal(other.Shipping) &&
		t.TotalAmount.Equal(other.TotalAmount)
}

// Compute derives totals from a line set and a pricing policy.
// Pure and idempotent: no inputs are mutated, identical inputs always
// yield identical outputs, and the decomposition invariant
// TotalAmount = Subtotal + TaxTotal + Shipping holds exactly.
//
// Steps:
//  1. per line: gross = quantity × unitPrice; discount clamped to gross
//  2. lineSubtotal = Σ net line amounts
//  3. document discount per mode (percent of lineSubtotal, or amount
//     clamped to lineSubtotal)
//  4. taxable base = max(0, lineSubtotal − discount)
//  5. tax per mode (per-line on gross amounts, or global on the base)
//  6. published figures rounded to the money scale; the total is the
//     sum of the rounded figures so the invariant survives rounding.
func Compute(lines []LineItem, policy Policy) Totals {
	if len(lines) == 0 {
		return ZeroTotals()
	}

	sanitized := make([]LineItem, len(lines))
	copy(sanitized, lines)
	for i := range sanitized {
		sanitized[i].Sanitize()
	}
	policy.Sanitize()

	lineSubtotal := types.Zero()
	for _, l := range sanitized {
		lineSubtotal = lineSubtotal.Add(l.NetAmount())
	}

	discount := documentDiscount(policy, lineSubtotal)

	taxableBase := lineSubtotal.Sub(discount)
	if taxableBase.IsNegative() {
		taxableBase = types.Zero()
	}

	var taxTotal types.Money
	switch policy.TaxMode {
	case TaxGlobal:
		taxTotal = taxableBase.Mul(policy.GlobalTaxRate).Div(hundred)
	default:
		taxTotal = types.Zero()
		for _, l := range sanitized {
			taxTotal = taxTotal.Add(l.GrossAmount().Mul(l.TaxRate).Div(hundred))
		}
	}

	subtotal := types.RoundMoney(taxableBase)
	taxTotal = types.RoundMoney(taxTotal)
	shipping := types.RoundMoney(policy.Shipping)

	return Totals{
		Subtotal:    subtotal,
		TaxTotal:    taxTotal,
		Shipping:    shipping,
		TotalAmount: subtotal.Add(taxTotal).Add(shipping),
	}
}

// documentDiscount resolves the document-level discount amount.
func documentDiscount(policy Policy, lineSubtotal types.Money) types.Money {
	switch policy.DiscountMode {
	case DiscountPercent:
		pct := types.ClampPercent(policy.Discount)
		return lineSubtotal.Mul(pct).Div(hundred)
	default:
		return types.ClampMoney(policy.Discount, types.Zero(), lineSubtotal)
	}
}

var hundred = types.MustMoney("100")
