package estimate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/pricing"
)

func sampleEstimate() *Estimate {
	est := NewEstimate("org-1", id.New(), "EUR")
	est.Number = "EST-2026-00001"
	est.AddLine(pricing.LineItem{
		Description: "Consulting",
		Quantity:    types.MustMoney("2"),
		UnitPrice:   types.MustMoney("100"),
		TaxRate:     types.MustMoney("10"),
	})
	return est
}

func TestEstimateTotals(t *testing.T) {
	est := sampleEstimate()
	assert.Equal(t, "200.00", est.Subtotal.StringFixed(2))
	assert.Equal(t, "220.00", est.TotalAmount.StringFixed(2))
}

func TestEstimatePostsNothing(t *testing.T) {
	est := sampleEstimate()
	est.MarkCommitted()

	movements, err := est.GenerateMovements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestIsExpired(t *testing.T) {
	est := sampleEstimate()
	assert.False(t, est.IsExpired())

	est.ValidUntil = time.Now().UTC().AddDate(0, 0, -1)
	assert.True(t, est.IsExpired())
}

func TestConvertToInvoice(t *testing.T) {
	est := sampleEstimate()
	est.Discount = types.MustMoney("20")
	est.Shipping = types.MustMoney("5")
	est.RecalculateTotals()

	inv, err := est.ConvertToInvoice()
	require.NoError(t, err)

	assert.Equal(t, est.CustomerID, inv.CustomerID)
	assert.Equal(t, "EUR", inv.Currency)
	require.Len(t, inv.Lines, 1)
	assert.NotEqual(t, est.Lines[0].LineID, inv.Lines[0].LineID, "invoice lines get fresh IDs")
	assert.Equal(t, "Consulting", inv.Lines[0].Description)

	// Same lines, same policy, same money.
	assert.True(t, inv.TotalAmount.Equal(est.TotalAmount))
	assert.Contains(t, inv.Comment, est.Number)
}

func TestConvertTwiceRejected(t *testing.T) {
	est := sampleEstimate()

	inv, err := est.ConvertToInvoice()
	require.NoError(t, err)
	est.AcceptedInvoiceID = &inv.ID

	_, err = est.ConvertToInvoice()
	require.Error(t, err)
}
