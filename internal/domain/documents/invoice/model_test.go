package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/pricing"
)

func sampleInvoice() *Invoice {
	inv := NewInvoice("org-1", id.New(), "EUR")
	inv.AddLine(pricing.LineItem{
		Description: "Consulting",
		Quantity:    types.MustMoney("2"),
		UnitPrice:   types.MustMoney("100"),
		TaxRate:     types.MustMoney("10"),
	})
	return inv
}

func TestAddLineRecalculatesTotals(t *testing.T) {
	inv := sampleInvoice()

	assert.Equal(t, "200.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", inv.TaxTotal.StringFixed(2))
	assert.Equal(t, "220.00", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, inv.Lines[0].LineNo)
}

func TestSetPolicyRecalculates(t *testing.T) {
	inv := sampleInvoice()

	policy := inv.Policy()
	policy.Discount = types.MustMoney("20")
	policy.Shipping = types.MustMoney("5")
	inv.SetPolicy(policy)

	assert.Equal(t, "180.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "205.00", inv.TotalAmount.StringFixed(2))
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxTotal).Add(inv.Shipping)))
}

func TestValidate(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, inv.Validate(context.Background()))

	t.Run("customer required", func(t *testing.T) {
		bad := sampleInvoice()
		bad.CustomerID = id.Nil()
		require.Error(t, bad.Validate(context.Background()))
	})

	t.Run("currency must be ISO code", func(t *testing.T) {
		bad := sampleInvoice()
		bad.Currency = "EURO"
		require.Error(t, bad.Validate(context.Background()))
	})

	t.Run("lines required", func(t *testing.T) {
		bad := NewInvoice("org-1", id.New(), "EUR")
		require.Error(t, bad.Validate(context.Background()))
	})

	t.Run("due date before document date", func(t *testing.T) {
		bad := sampleInvoice()
		bad.DueDate = bad.Date.AddDate(0, 0, -1)
		require.Error(t, bad.Validate(context.Background()))
	})
}

func TestCanCommitRequiresNumber(t *testing.T) {
	inv := sampleInvoice()
	require.Error(t, inv.CanCommit(context.Background()))

	inv.Number = "INV-2026-00001"
	require.NoError(t, inv.CanCommit(context.Background()))
}

func TestGenerateMovements(t *testing.T) {
	inv := sampleInvoice()
	inv.Number = "INV-2026-00001"
	inv.MarkCommitted()

	movements, err := inv.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, movements, 1)

	m := movements[0]
	assert.Equal(t, inv.ID, m.RecorderID)
	assert.Equal(t, "Invoice", m.RecorderType)
	assert.Equal(t, inv.CommitVersion, m.RecorderVersion)
	assert.Equal(t, entity.RecordTypeReceipt, m.RecordType)
	assert.Equal(t, inv.CustomerID, m.CustomerID)
	assert.Equal(t, "EUR", m.Currency)
	assert.Equal(t, "220.00", m.Amount.StringFixed(2))
	assert.Equal(t, inv.DueDate, m.DueDate)
	assert.Equal(t, "220.00", m.SignedAmount().StringFixed(2))
}

func TestGenerateMovementsZeroTotal(t *testing.T) {
	inv := NewInvoice("org-1", id.New(), "EUR")
	inv.AddLine(pricing.LineItem{
		Description: "Freebie",
		Quantity:    types.MustMoney("1"),
		UnitPrice:   types.Zero(),
	})

	movements, err := inv.GenerateMovements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movements, "zero-total invoices post nothing")
}

func TestCommitInput(t *testing.T) {
	inv := sampleInvoice()
	inv.Number = "INV-2026-00001"

	input := inv.CommitInput()
	assert.Equal(t, "Invoice", input.DocumentType)
	assert.Equal(t, "EUR", input.Currency)
	assert.InDelta(t, 220.0, input.TotalAmount, 1e-9)
}

func TestClone(t *testing.T) {
	inv := sampleInvoice()
	inv.Number = "INV-2026-00001"
	inv.MarkCommitted()

	clone := inv.Clone()

	assert.NotEqual(t, inv.ID, clone.ID)
	assert.Empty(t, clone.Number)
	assert.False(t, clone.Committed)
	assert.Equal(t, inv.CustomerID, clone.CustomerID)
	assert.Equal(t, inv.Currency, clone.Currency)
	assert.Equal(t, inv.TotalAmount.StringFixed(2), clone.TotalAmount.StringFixed(2))
	assert.Equal(t, "Copy of INV-2026-00001", clone.Comment)

	require.Len(t, clone.Lines, len(inv.Lines))
	assert.NotEqual(t, inv.Lines[0].LineID, clone.Lines[0].LineID)
}
