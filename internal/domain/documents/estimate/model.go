// Package estimate provides the Estimate document: a quoted offer with
// the same pricing mechanics as an invoice, but committing it records
// no receivable. An accepted estimate converts into an invoice.
package estimate

import (
	"context"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/security"
	"facture/internal/core/types"
	"facture/internal/domain/commit"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/pricing"
)

// Estimate represents a quote offered to a customer.
type Estimate struct {
	entity.Document

	// Customer the quote is addressed to
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Currency is the ISO code amounts are expressed in
	Currency string `db:"currency" json:"currency"`

	// ExchangeRate is the rate snapshot from the last conversion
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	// ValidUntil is the offer expiry date
	ValidUntil time.Time `db:"valid_until" json:"validUntil"`

	// AcceptedInvoiceID links to the invoice this estimate converted into
	AcceptedInvoiceID *id.ID `db:"accepted_invoice_id" json:"acceptedInvoiceId,omitempty"`

	// Pricing policy
	DiscountMode  pricing.DiscountMode `db:"discount_mode" json:"discountMode"`
	Discount      types.Money          `db:"discount" json:"discount"`
	Shipping      types.Money          `db:"shipping" json:"shipping"`
	TaxMode       pricing.TaxMode      `db:"tax_mode" json:"taxMode"`
	GlobalTaxRate types.Money          `db:"global_tax_rate" json:"globalTaxRate"`

	// Totals (calculated from lines, frozen at commit)
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxTotal    types.Money `db:"tax_total" json:"taxTotal"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Table part: quoted lines
	Lines []pricing.LineItem `db:"-" json:"lines"`
}

// NewEstimate creates a new estimate for a customer.
func NewEstimate(organizationID string, customerID id.ID, currency string) *Estimate {
	est := &Estimate{
		Document:      entity.NewDocument(organizationID),
		CustomerID:    customerID,
		Currency:      currency,
		ExchangeRate:  types.MustMoney("1"),
		DiscountMode:  pricing.DiscountAmount,
		TaxMode:       pricing.TaxPerLine,
		Discount:      types.Zero(),
		Shipping:      types.Zero(),
		GlobalTaxRate: types.Zero(),
		Lines:         make([]pricing.LineItem, 0),
	}
	est.ValidUntil = est.Date.AddDate(0, 1, 0)
	est.RecalculateTotals()
	return est
}

// Policy assembles the pricing policy from the stored columns.
func (e *Estimate) Policy() pricing.Policy {
	return pricing.Policy{
		DiscountMode:  e.DiscountMode,
		Discount:      e.Discount,
		Shipping:      e.Shipping,
		TaxMode:       e.TaxMode,
		GlobalTaxRate: e.GlobalTaxRate,
	}
}

// SetPolicy stores the policy columns and recalculates totals.
func (e *Estimate) SetPolicy(p pricing.Policy) {
	p.Sanitize()
	e.DiscountMode = p.DiscountMode
	e.Discount = p.Discount
	e.Shipping = p.Shipping
	e.TaxMode = p.TaxMode
	e.GlobalTaxRate = p.GlobalTaxRate
	e.RecalculateTotals()
}

// AddLine appends a line and recalculates totals.
func (e *Estimate) AddLine(line pricing.LineItem) {
	line.Sanitize()
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(e.Lines) + 1
	e.Lines = append(e.Lines, line)
	e.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (e *Estimate) RecalculateTotals() {
	totals := pricing.Compute(e.Lines, e.Policy())
	e.Subtotal = totals.Subtotal
	e.TaxTotal = totals.TaxTotal
	e.Shipping = totals.Shipping
	e.TotalAmount = totals.TotalAmount
}

// IsExpired reports whether the offer has lapsed.
func (e *Estimate) IsExpired() bool {
	return !e.ValidUntil.IsZero() && e.ValidUntil.Before(time.Now().UTC())
}

// Validate implements entity.Validatable.
func (e *Estimate) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(e.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(e.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency").
			WithDetail("value", e.Currency)
	}

	if len(e.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}

// CanCommit requires a number on top of base validation.
func (e *Estimate) CanCommit(ctx context.Context) error {
	if e.Number == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "number")
	}
	return e.Validate(ctx)
}

// ConvertToInvoice builds a new invoice draft from the estimate's lines
// and policy. The estimate itself is left untouched; the caller links
// AcceptedInvoiceID after the invoice is persisted.
func (e *Estimate) ConvertToInvoice() (*invoice.Invoice, error) {
	if e.AcceptedInvoiceID != nil {
		return nil, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Estimate was already converted",
		).WithDetail("invoice_id", e.AcceptedInvoiceID.String())
	}

	inv := invoice.NewInvoice(e.OrganizationID, e.CustomerID, e.Currency)
	inv.ExchangeRate = e.ExchangeRate
	for _, line := range e.Lines {
		copied := line
		copied.LineID = id.Nil() // fresh IDs on the invoice
		inv.AddLine(copied)
	}
	inv.SetPolicy(e.Policy())
	inv.Comment = "From estimate " + e.Number

	return inv, nil
}

// --- Committable interface implementation ---

// GetDocumentType returns the document type name.
func (e *Estimate) GetDocumentType() string {
	return "Estimate"
}

// GenerateMovements returns nothing: committing an estimate only
// freezes its totals.
func (e *Estimate) GenerateMovements(ctx context.Context) ([]entity.ReceivableMovement, error) {
	return nil, nil
}

// CommitInput exposes the figures commit rules see.
func (e *Estimate) CommitInput() security.CommitInput {
	return security.CommitInput{
		DocumentType: e.GetDocumentType(),
		Number:       e.Number,
		Currency:     e.Currency,
		TotalAmount:  e.TotalAmount.InexactFloat64(),
		Date:         e.Date,
	}
}

// Ensure interface compliance at compile time.
var _ commit.Committable = (*Estimate)(nil)
