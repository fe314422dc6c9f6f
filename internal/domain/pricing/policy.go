package pricing

import (
	"context"

	"facture/internal/core/apperror"
	"facture/internal/core/types"
)

// DiscountMode defines how the document-level discount is interpreted.
type DiscountMode string

const (
	// DiscountAmount treats Policy.Discount as a fixed currency amount.
	DiscountAmount DiscountMode = "amount"
	// DiscountPercent treats Policy.Discount as a percentage of the
	// line subtotal, clamped to [0,100].
	DiscountPercent DiscountMode = "percent"
)

// TaxMode defines how tax is computed for a document.
type TaxMode string

const (
	// TaxPerLine sums each line's own tax rate applied to its gross
	// amount. Per-line tax is computed on the gross line amount, not
	// net of discounts - preserved behavior of the billing rules.
	TaxPerLine TaxMode = "per_line"
	// TaxGlobal applies one rate to the taxable base; individual line
	// rates are ignored entirely in this mode.
	TaxGlobal TaxMode = "global"
)

// Policy bundles the document-level pricing knobs. Switching a mode never
// mutates line data - only the interpretation inside the calculator
// changes, so totals recompute idempotently from the same lines.
type Policy struct {
	DiscountMode DiscountMode `db:"discount_mode" json:"discountMode"`
	Discount     types.Money  `db:"discount" json:"discount"`
	Shipping     types.Money  `db:"shipping" json:"shipping"`

	TaxMode TaxMode `db:"tax_mode" json:"taxMode"`

	// GlobalTaxRate is meaningful only when TaxMode is TaxGlobal.
	GlobalTaxRate types.Money `db:"global_tax_rate" json:"globalTaxRate"`
}

// DefaultPolicy returns the policy applied to freshly opened drafts.
func DefaultPolicy() Policy {
	return Policy{
		DiscountMode:  DiscountAmount,
		Discount:      types.Zero(),
		Shipping:      types.Zero(),
		TaxMode:       TaxPerLine,
		GlobalTaxRate: types.Zero(),
	}
}

// Sanitize coerces out-of-range policy values into the valid domain.
func (p *Policy) Sanitize() {
	p.Discount = types.SanitizeMoney(p.Discount)
	p.Shipping = types.SanitizeMoney(p.Shipping)
	p.GlobalTaxRate = types.ClampPercent(p.GlobalTaxRate)
	if p.DiscountMode != DiscountPercent {
		p.DiscountMode = DiscountAmount
	}
	if p.TaxMode != TaxGlobal {
		p.TaxMode = TaxPerLine
	}
}

// Validate implements entity.Validatable semantics for embedded use.
func (p *Policy) Validate(ctx context.Context) error {
	switch p.DiscountMode {
	case DiscountAmount, DiscountPercent:
	default:
		return apperror.NewValidation("invalid discount mode").
			WithDetail("field", "discountMode").
			WithDetail("value", string(p.DiscountMode))
	}

	switch p.TaxMode {
	case TaxPerLine, TaxGlobal:
	default:
		return apperror.NewValidation("invalid tax mode").
			WithDetail("field", "taxMode").
			WithDetail("value", string(p.TaxMode))
	}

	if p.Discount.IsNegative() {
		return apperror.NewValidation("discount must be non-negative").
			WithDetail("field", "discount")
	}

	if p.Shipping.IsNegative() {
		return apperror.NewValidation("shipping must be non-negative").
			WithDetail("field", "shipping")
	}

	return nil
}
