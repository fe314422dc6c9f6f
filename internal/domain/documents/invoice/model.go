// Package invoice provides the Invoice document: a committed bill that
// posts a receivable against the customer.
package invoice

import (
	"context"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/security"
	"facture/internal/core/types"
	"facture/internal/domain/commit"
	"facture/internal/domain/pricing"
)

// Invoice represents a customer bill. Totals are stored exactly as
// computed at save time; committing freezes them and records a
// receivable movement.
type Invoice struct {
	entity.Document

	// Customer being billed
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Currency is the ISO code amounts are expressed in
	Currency string `db:"currency" json:"currency"`

	// ExchangeRate is the rate snapshot from the last conversion
	// (1 when the invoice never changed currency)
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	// DueDate is when payment falls due
	DueDate time.Time `db:"due_date" json:"dueDate"`

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

	// Table part: billed lines
	Lines []pricing.LineItem `db:"-" json:"lines"`
}

// NewInvoice creates a new invoice for a customer.
func NewInvoice(organizationID string, customerID id.ID, currency string) *Invoice {
	inv := &Invoice{
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
	inv.DueDate = inv.Date.AddDate(0, 0, 14)
	inv.RecalculateTotals()
	return inv
}

// Policy assembles the pricing policy from the stored columns.
func (inv *Invoice) Policy() pricing.Policy {
	return pricing.Policy{
		DiscountMode:  inv.DiscountMode,
		Discount:      inv.Discount,
		Shipping:      inv.Shipping,
		TaxMode:       inv.TaxMode,
		GlobalTaxRate: inv.GlobalTaxRate,
	}
}

// SetPolicy stores the policy columns and recalculates totals.
func (inv *Invoice) SetPolicy(p pricing.Policy) {
	p.Sanitize()
	inv.DiscountMode = p.DiscountMode
	inv.Discount = p.Discount
	inv.Shipping = p.Shipping
	inv.TaxMode = p.TaxMode
	inv.GlobalTaxRate = p.GlobalTaxRate
	inv.RecalculateTotals()
}

// AddLine appends a line and recalculates totals.
func (inv *Invoice) AddLine(line pricing.LineItem) {
	line.Sanitize()
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(inv.Lines) + 1
	inv.Lines = append(inv.Lines, line)
	inv.RecalculateTotals()
}

// Clone returns a fresh uncommitted copy of the invoice: same customer,
// currency, lines and policy, new identity and number.
func (inv *Invoice) Clone() *Invoice {
	clone := NewInvoice(inv.OrganizationID, inv.CustomerID, inv.Currency)
	clone.ExchangeRate = inv.ExchangeRate
	for _, line := range inv.Lines {
		copied := line
		copied.LineID = id.Nil() // fresh IDs on the copy
		clone.AddLine(copied)
	}
	clone.SetPolicy(inv.Policy())
	clone.Comment = "Copy of " + inv.Number
	return clone
}

// RecalculateTotals updates document totals from lines.
func (inv *Invoice) RecalculateTotals() {
	totals := pricing.Compute(inv.Lines, inv.Policy())
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Shipping = totals.Shipping
	inv.TotalAmount = totals.TotalAmount
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(inv.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency").
			WithDetail("value", inv.Currency)
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range inv.Lines {
		if line.Description == "" && (line.ProductID == nil || id.IsNil(*line.ProductID)) {
			return apperror.NewValidation("line needs a product or a description").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	if !inv.DueDate.IsZero() && inv.DueDate.Before(inv.Date) {
		return apperror.NewValidation("due date cannot precede document date").
			WithDetail("field", "dueDate")
	}

	return nil
}

// CanCommit requires a number on top of base validation.
func (inv *Invoice) CanCommit(ctx context.Context) error {
	if inv.Number == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "number")
	}
	return inv.Validate(ctx)
}

// --- Committable interface implementation ---
// GetID, GetNumber, GetDate, GetCommitVersion, IsCommitted are
// inherited from entity.Document.

// GetDocumentType returns the document type name.
func (inv *Invoice) GetDocumentType() string {
	return "Invoice"
}

// GenerateMovements creates the receivable entry for this invoice.
func (inv *Invoice) GenerateMovements(ctx context.Context) ([]entity.ReceivableMovement, error) {
	if !inv.TotalAmount.IsPositive() {
		return nil, nil
	}

	movement := entity.NewReceivableMovement(
		inv.ID,
		inv.GetDocumentType(),
		inv.CommitVersion,
		inv.Date,
		entity.RecordTypeReceipt,
		inv.CustomerID,
		inv.Currency,
		inv.TotalAmount,
		inv.DueDate,
	)

	return []entity.ReceivableMovement{movement}, nil
}

// CommitInput exposes the figures commit rules see.
func (inv *Invoice) CommitInput() security.CommitInput {
	return security.CommitInput{
		DocumentType: inv.GetDocumentType(),
		Number:       inv.Number,
		Currency:     inv.Currency,
		TotalAmount:  inv.TotalAmount.InexactFloat64(),
		Date:         inv.Date,
	}
}

// Ensure interface compliance at compile time.
var _ commit.Committable = (*Invoice)(nil)
