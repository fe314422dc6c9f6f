package recurring

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

func sampleTemplate() *RecurringTemplate {
	tpl := NewRecurringTemplate("org-1", id.New(), "EUR")
	tpl.Number = "RT-2026-00001"
	tpl.Lines = append(tpl.Lines, pricing.LineItem{
		LineID:      id.New(),
		LineNo:      1,
		Description: "Hosting",
		Quantity:    types.MustMoney("1"),
		UnitPrice:   types.MustMoney("49.99"),
		TaxRate:     types.MustMoney("20"),
	})
	return tpl
}

func TestIsDue(t *testing.T) {
	tpl := sampleTemplate()
	now := time.Now().UTC()

	tpl.NextRunAt = now.AddDate(0, 0, 1)
	assert.False(t, tpl.IsDue(now))

	tpl.NextRunAt = now.AddDate(0, 0, -1)
	assert.True(t, tpl.IsDue(now))

	tpl.Active = false
	assert.False(t, tpl.IsDue(now), "paused templates are never due")
}

func TestAdvance(t *testing.T) {
	tpl := sampleTemplate()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tpl.NextRunAt = start

	now := time.Now().UTC()

	tpl.Interval = IntervalWeekly
	tpl.Advance(now)
	assert.Equal(t, start.AddDate(0, 0, 7), tpl.NextRunAt)
	require.NotNil(t, tpl.LastRunAt)
	assert.Equal(t, now, *tpl.LastRunAt)

	tpl.Interval = IntervalMonthly
	tpl.NextRunAt = start
	tpl.Advance(now)
	assert.Equal(t, start.AddDate(0, 1, 0), tpl.NextRunAt)

	tpl.Interval = IntervalYearly
	tpl.NextRunAt = start
	tpl.Advance(now)
	assert.Equal(t, start.AddDate(1, 0, 0), tpl.NextRunAt)
}

func TestMaterialize(t *testing.T) {
	tpl := sampleTemplate()
	tpl.GlobalTaxRate = types.MustMoney("19")
	tpl.TaxMode = pricing.TaxGlobal

	now := time.Now().UTC()
	inv := tpl.Materialize(now)

	assert.Equal(t, tpl.CustomerID, inv.CustomerID)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, now, inv.Date)
	require.Len(t, inv.Lines, 1)
	assert.NotEqual(t, tpl.Lines[0].LineID, inv.Lines[0].LineID)
	assert.Equal(t, pricing.TaxGlobal, inv.TaxMode)
	assert.False(t, inv.Committed, "generated invoices start uncommitted")

	// 49.99 + 19% global tax.
	assert.Equal(t, "59.49", inv.TotalAmount.StringFixed(2))
}

func TestValidateInterval(t *testing.T) {
	tpl := sampleTemplate()
	require.NoError(t, tpl.Validate(context.Background()))

	tpl.Interval = "daily"
	require.Error(t, tpl.Validate(context.Background()))
}
