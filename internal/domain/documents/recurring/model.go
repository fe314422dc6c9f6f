// Package recurring provides the RecurringTemplate document: an invoice
// blueprint with a schedule. A worker materializes due templates into
// draft invoices and advances their next run time.
package recurring

import (
	"context"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/pricing"
)

// Interval defines how often a template produces an invoice.
type Interval string

const (
	IntervalWeekly    Interval = "weekly"
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// RecurringTemplate is the blueprint a scheduled invoice is built from.
type RecurringTemplate struct {
	entity.Document

	// Customer invoices are generated for
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Currency is the ISO code amounts are expressed in
	Currency string `db:"currency" json:"currency"`

	// Active templates are picked up by the scheduler
	Active bool `db:"active" json:"active"`

	// Interval between generated invoices
	Interval Interval `db:"interval" json:"interval"`

	// NextRunAt is when the next invoice is due to be generated
	NextRunAt time.Time `db:"next_run_at" json:"nextRunAt"`

	// LastRunAt records the previous materialization
	LastRunAt *time.Time `db:"last_run_at" json:"lastRunAt,omitempty"`

	// Pricing policy copied onto generated invoices
	DiscountMode  pricing.DiscountMode `db:"discount_mode" json:"discountMode"`
	Discount      types.Money          `db:"discount" json:"discount"`
	Shipping      types.Money          `db:"shipping" json:"shipping"`
	TaxMode       pricing.TaxMode      `db:"tax_mode" json:"taxMode"`
	GlobalTaxRate types.Money          `db:"global_tax_rate" json:"globalTaxRate"`

	// Table part: blueprint lines
	Lines []pricing.LineItem `db:"-" json:"lines"`
}

// NewRecurringTemplate creates an active monthly template.
func NewRecurringTemplate(organizationID string, customerID id.ID, currency string) *RecurringTemplate {
	tpl := &RecurringTemplate{
		Document:      entity.NewDocument(organizationID),
		CustomerID:    customerID,
		Currency:      currency,
		Active:        true,
		Interval:      IntervalMonthly,
		DiscountMode:  pricing.DiscountAmount,
		TaxMode:       pricing.TaxPerLine,
		Discount:      types.Zero(),
		Shipping:      types.Zero(),
		GlobalTaxRate: types.Zero(),
		Lines:         make([]pricing.LineItem, 0),
	}
	tpl.NextRunAt = tpl.Date.AddDate(0, 1, 0)
	return tpl
}

// Policy assembles the pricing policy from the stored columns.
func (t *RecurringTemplate) Policy() pricing.Policy {
	return pricing.Policy{
		DiscountMode:  t.DiscountMode,
		Discount:      t.Discount,
		Shipping:      t.Shipping,
		TaxMode:       t.TaxMode,
		GlobalTaxRate: t.GlobalTaxRate,
	}
}

// IsDue reports whether the template should produce an invoice now.
func (t *RecurringTemplate) IsDue(now time.Time) bool {
	return t.Active && !t.NextRunAt.IsZero() && !t.NextRunAt.After(now)
}

// Advance moves the schedule one interval forward from the given run
// time and records it.
func (t *RecurringTemplate) Advance(ranAt time.Time) {
	at := ranAt
	t.LastRunAt = &at

	switch t.Interval {
	case IntervalWeekly:
		t.NextRunAt = t.NextRunAt.AddDate(0, 0, 7)
	case IntervalQuarterly:
		t.NextRunAt = t.NextRunAt.AddDate(0, 3, 0)
	case IntervalYearly:
		t.NextRunAt = t.NextRunAt.AddDate(1, 0, 0)
	default:
		t.NextRunAt = t.NextRunAt.AddDate(0, 1, 0)
	}
	t.Touch()
}

// Materialize builds a fresh invoice from the blueprint.
func (t *RecurringTemplate) Materialize(now time.Time) *invoice.Invoice {
	inv := invoice.NewInvoice(t.OrganizationID, t.CustomerID, t.Currency)
	inv.Date = now.UTC()
	inv.DueDate = inv.Date.AddDate(0, 0, 14)
	for _, line := range t.Lines {
		copied := line
		copied.LineID = id.Nil()
		inv.AddLine(copied)
	}
	inv.SetPolicy(t.Policy())
	inv.Comment = "Generated from recurring template " + t.Number

	return inv
}

// Validate implements entity.Validatable.
func (t *RecurringTemplate) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(t.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(t.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency")
	}

	if !isValidInterval(t.Interval) {
		return apperror.NewValidation("invalid interval").
			WithDetail("field", "interval").
			WithDetail("value", string(t.Interval))
	}

	if t.NextRunAt.IsZero() {
		return apperror.NewValidation("next run time is required").
			WithDetail("field", "nextRunAt")
	}

	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}

func isValidInterval(i Interval) bool {
	switch i {
	case IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}
