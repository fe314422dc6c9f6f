package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/types"
)

func money(s string) types.Money {
	return types.MustMoney(s)
}

func sampleLine() LineItem {
	return LineItem{
		Description: "Consulting",
		Quantity:    money("2"),
		UnitPrice:   money("100"),
		TaxRate:     money("10"),
	}
}

func TestComputeEmptyLines(t *testing.T) {
	totals := Compute(nil, DefaultPolicy())
	assert.True(t, totals.Equal(ZeroTotals()))

	totals = Compute([]LineItem{}, DefaultPolicy())
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestComputeAmountDiscountPerLineTax(t *testing.T) {
	// One line {qty:2, unitPrice:100, taxRate:10}, amount discount 20,
	// shipping 5, per-line tax.
	policy := Policy{
		DiscountMode:  DiscountAmount,
		Discount:      money("20"),
		Shipping:      money("5"),
		TaxMode:       TaxPerLine,
		GlobalTaxRate: types.Zero(),
	}

	totals := Compute([]LineItem{sampleLine()}, policy)

	assert.Equal(t, "180.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "205.00", totals.TotalAmount.StringFixed(2))
}

func TestComputeGlobalTaxIgnoresLineRates(t *testing.T) {
	policy := Policy{
		DiscountMode:  DiscountAmount,
		Discount:      types.Zero(),
		Shipping:      money("5"),
		TaxMode:       TaxGlobal,
		GlobalTaxRate: money("15"),
	}

	totals := Compute([]LineItem{sampleLine()}, policy)

	// No discount: taxable base is the full 200; the line's own 10% is
	// ignored in global mode.
	assert.Equal(t, "200.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "235.00", totals.TotalAmount.StringFixed(2))
}

func TestComputePercentDiscountMatchesAmount(t *testing.T) {
	amountPolicy := Policy{
		DiscountMode: DiscountAmount,
		Discount:     money("20"),
		Shipping:     money("5"),
		TaxMode:      TaxPerLine,
	}
	percentPolicy := amountPolicy
	percentPolicy.DiscountMode = DiscountPercent
	percentPolicy.Discount = money("10") // 10% of 200 == 20

	lines := []LineItem{sampleLine()}
	assert.True(t, Compute(lines, amountPolicy).Equal(Compute(lines, percentPolicy)))
}

func TestComputePerLineTaxOnGrossAmount(t *testing.T) {
	// Per-line tax is computed on the gross line amount, not net of the
	// line discount.
	line := sampleLine()
	line.LineDiscount = money("50")

	policy := DefaultPolicy()
	totals := Compute([]LineItem{line}, policy)

	// Net 150 but tax still 10% of gross 200.
	assert.Equal(t, "150.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.TaxTotal.StringFixed(2))
}

func TestLineDiscountClamped(t *testing.T) {
	line := sampleLine()
	line.LineDiscount = money("500") // exceeds gross 200

	assert.Equal(t, "200", line.EffectiveDiscount().String())
	assert.True(t, line.NetAmount().IsZero())

	totals := Compute([]LineItem{line}, DefaultPolicy())
	assert.True(t, totals.Subtotal.IsZero())
	assert.False(t, totals.TotalAmount.IsNegative())
}

func TestDocumentDiscountClamped(t *testing.T) {
	policy := Policy{
		DiscountMode: DiscountAmount,
		Discount:     money("10000"),
		TaxMode:      TaxPerLine,
	}
	totals := Compute([]LineItem{sampleLine()}, policy)
	assert.True(t, totals.Subtotal.IsZero())

	policy.DiscountMode = DiscountPercent
	policy.Discount = money("250") // clamped to 100%
	totals = Compute([]LineItem{sampleLine()}, policy)
	assert.True(t, totals.Subtotal.IsZero())
}

func TestTotalDecomposition(t *testing.T) {
	lines := []LineItem{
		sampleLine(),
		{Description: "Hosting", Quantity: money("3"), UnitPrice: money("19.99"), TaxRate: money("20"), LineDiscount: money("5")},
		{Description: "Freebie", Quantity: money("1"), UnitPrice: money("0"), TaxRate: money("7")},
	}
	policies := []Policy{
		{DiscountMode: DiscountAmount, Discount: money("12.5"), Shipping: money("9.99"), TaxMode: TaxPerLine},
		{DiscountMode: DiscountPercent, Discount: money("33.3"), Shipping: money("0"), TaxMode: TaxGlobal, GlobalTaxRate: money("19")},
	}

	for _, p := range policies {
		totals := Compute(lines, p)
		sum := totals.Subtotal.Add(totals.TaxTotal).Add(totals.Shipping)
		assert.True(t, totals.TotalAmount.Equal(sum), "decomposition must hold")
		assert.False(t, totals.TotalAmount.LessThan(totals.Shipping))
	}
}

func TestModeSwitchPurity(t *testing.T) {
	lines := []LineItem{sampleLine()}
	policy := Policy{
		DiscountMode:  DiscountAmount,
		Discount:      money("20"),
		Shipping:      money("5"),
		TaxMode:       TaxPerLine,
		GlobalTaxRate: money("15"),
	}

	before := Compute(lines, policy)

	// Flip both modes and flip back without touching line data.
	flipped := policy
	flipped.DiscountMode = DiscountPercent
	flipped.TaxMode = TaxGlobal
	_ = Compute(lines, flipped)

	after := Compute(lines, policy)
	require.True(t, before.Equal(after), "mode round-trip must not change totals")
}

func TestComputeIdempotent(t *testing.T) {
	lines := []LineItem{sampleLine()}
	policy := DefaultPolicy()

	first := Compute(lines, policy)
	second := Compute(lines, policy)
	assert.True(t, first.Equal(second))
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	line := sampleLine()
	line.LineDiscount = money("-7") // invalid on purpose
	lines := []LineItem{line}

	_ = Compute(lines, DefaultPolicy())

	assert.Equal(t, "-7", lines[0].LineDiscount.String(), "caller's slice must stay untouched")
}

func TestNegativeInputsCoercedToZero(t *testing.T) {
	line := LineItem{
		Description:  "Broken import",
		Quantity:     money("-4"),
		UnitPrice:    money("-10"),
		TaxRate:      money("-5"),
		LineDiscount: money("-1"),
	}
	policy := Policy{
		DiscountMode: DiscountAmount,
		Discount:     money("-3"),
		Shipping:     money("-2"),
		TaxMode:      TaxPerLine,
	}

	totals := Compute([]LineItem{line}, policy)
	assert.True(t, totals.Equal(ZeroTotals()))
}

func TestRescale(t *testing.T) {
	line := LineItem{
		Quantity:     money("1"),
		UnitPrice:    money("100"),
		LineDiscount: money("20"),
		TaxRate:      money("10"),
	}
	line.Rescale(money("1.1"))

	assert.Equal(t, "110.00", line.UnitPrice.StringFixed(2))
	assert.Equal(t, "22.00", line.LineDiscount.StringFixed(2))
	assert.Equal(t, "1", line.Quantity.String())
	assert.Equal(t, "10", line.TaxRate.String())
}
