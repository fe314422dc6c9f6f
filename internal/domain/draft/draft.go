// Package draft implements the interactive lifecycle of a billing
// document: a mutable set of lines and a pricing policy whose totals are
// kept consistent on every edit, until the draft is committed into an
// immutable snapshot or cancelled.
package draft

import (
	"context"
	"errors"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/fx"
	"facture/internal/domain/pricing"
)

// Status is the lifecycle state of a draft.
type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusCommitted  Status = "committed"
	StatusCancelled  Status = "cancelled"
)

// DocumentDraft holds one document being edited. All mutations keep
// Totals consistent with the current lines and policy; no intermediate
// state with stale totals is ever observable.
//
// Drafts are single-writer: one user edits one draft at a time. The
// only suspending operation is the exchange-rate lookup inside
// ChangeCurrency.
type DocumentDraft struct {
	ID         id.ID
	Number     string
	Date       time.Time
	CustomerID *id.ID

	Lines  []pricing.LineItem
	Policy pricing.Policy
	FX     *fx.State
	Totals pricing.Totals

	status      Status
	persistedID *id.ID
	snapshot    *CommitSnapshot
}

// New creates an empty editable draft priced in the given currency.
func New(currency string) *DocumentDraft {
	return &DocumentDraft{
		ID:     id.New(),
		Date:   time.Now().UTC(),
		Lines:  make([]pricing.LineItem, 0),
		Policy: pricing.DefaultPolicy(),
		FX:     fx.NewState(currency),
		Totals: pricing.ZeroTotals(),
		status: StatusEditing,
	}
}

// Restore rebuilds an editable draft over an existing persisted
// document so further edits produce an update instead of a create.
func Restore(persistedID id.ID, number string, date time.Time, customerID *id.ID, lines []pricing.LineItem, policy pricing.Policy, state *fx.State) *DocumentDraft {
	d := &DocumentDraft{
		ID:          id.New(),
		Number:      number,
		Date:        date,
		CustomerID:  customerID,
		Lines:       append([]pricing.LineItem(nil), lines...),
		Policy:      policy,
		FX:          state,
		status:      StatusEditing,
		persistedID: &persistedID,
	}
	d.recompute()
	return d
}

// Status returns the current lifecycle state.
func (d *DocumentDraft) Status() Status {
	return d.status
}

// Snapshot returns the frozen commit result, or nil before commit.
func (d *DocumentDraft) Snapshot() *CommitSnapshot {
	return d.snapshot
}

func (d *DocumentDraft) ensureEditable() error {
	if d.status != StatusEditing {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentCommitted,
			"Draft is no longer editable",
		).WithDetail("status", string(d.status))
	}
	return nil
}

func (d *DocumentDraft) recompute() {
	d.Totals = pricing.Compute(d.Lines, d.Policy)
}

// AddLine appends a line and refreshes totals.
func (d *DocumentDraft) AddLine(line pricing.LineItem) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	line.Sanitize()
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(d.Lines) + 1
	d.Lines = append(d.Lines, line)
	d.recompute()
	return nil
}

// UpdateLine replaces the line with the same LineID and refreshes
// totals.
func (d *DocumentDraft) UpdateLine(line pricing.LineItem) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	for i := range d.Lines {
		if d.Lines[i].LineID == line.LineID {
			line.LineNo = d.Lines[i].LineNo
			line.Sanitize()
			d.Lines[i] = line
			d.recompute()
			return nil
		}
	}
	return apperror.NewNotFound("line", line.LineID.String())
}

// RemoveLine deletes a line, renumbers the rest and refreshes totals.
func (d *DocumentDraft) RemoveLine(lineID id.ID) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	for i := range d.Lines {
		if d.Lines[i].LineID == lineID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			for j := range d.Lines {
				d.Lines[j].LineNo = j + 1
			}
			d.recompute()
			return nil
		}
	}
	return apperror.NewNotFound("line", lineID.String())
}

// SetPolicy swaps the pricing policy and refreshes totals. Line data is
// never touched: switching discount or tax mode only changes how the
// same lines are interpreted.
func (d *DocumentDraft) SetPolicy(ctx context.Context, policy pricing.Policy) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	if err := policy.Validate(ctx); err != nil {
		return err
	}
	policy.Sanitize()
	d.Policy = policy
	d.recompute()
	return nil
}

// ChangeCurrency switches the working currency through the conversion
// engine. A rate failure leaves the draft editable and consistent; the
// returned error only signals that amounts were not rescaled.
func (d *DocumentDraft) ChangeCurrency(ctx context.Context, engine *fx.Engine, newCurrency string) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	totals, err := engine.ChangeCurrency(ctx, d.FX, d.Lines, d.Policy, newCurrency)
	d.Totals = totals
	if errors.Is(err, fx.ErrSuperseded) {
		// A newer change already owns the state; the current state is
		// the outcome, not an error.
		return nil
	}
	return err
}

// SetFXOptions toggles the rate lock and auto-convert flags. Unlocking
// takes effect on the next currency change; amounts are not rescaled
// retroactively.
func (d *DocumentDraft) SetFXOptions(rateLocked, autoConvert bool) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	d.FX.SetOptions(rateLocked, autoConvert)
	return nil
}

// SetCustomer assigns the customer and, when the customer's profile
// currency differs from the draft's, runs the same conversion path as
// an explicit currency change.
func (d *DocumentDraft) SetCustomer(ctx context.Context, engine *fx.Engine, customerID id.ID, profileCurrency string) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	d.CustomerID = &customerID
	if profileCurrency != "" && profileCurrency != d.FX.Currency {
		return d.ChangeCurrency(ctx, engine, profileCurrency)
	}
	return nil
}

// SetNumber assigns the document number used at commit time.
func (d *DocumentDraft) SetNumber(number string) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	d.Number = number
	return nil
}

// Cancel discards the draft. No side effects are produced.
func (d *DocumentDraft) Cancel() error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	d.status = StatusCancelled
	return nil
}

// validateForCommit rejects a commit synchronously, before any network
// call, when required fields are missing.
func (d *DocumentDraft) validateForCommit(ctx context.Context) error {
	if d.CustomerID == nil || id.IsNil(*d.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if d.Number == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "number")
	}
	return nil
}

// Payload is the wire contract handed to the persistence collaborator
// at commit time.
type Payload struct {
	Number         string               `json:"number"`
	Date           time.Time            `json:"date"`
	CustomerID     id.ID                `json:"customerId"`
	Lines          []pricing.LineItem   `json:"lines"`
	DiscountMode   pricing.DiscountMode `json:"discountMode"`
	Discount       types.Money          `json:"discount"`
	Shipping       types.Money          `json:"shipping"`
	TaxMode        pricing.TaxMode      `json:"taxMode"`
	GlobalTaxRate  types.Money          `json:"globalTaxRate"`
	Currency       string               `json:"currency"`
	Subtotal       types.Money          `json:"subtotal"`
	TaxTotal       types.Money          `json:"taxTotal"`
	TotalAmount    types.Money          `json:"totalAmount"`
	FXRateSnapshot types.Money          `json:"fxRateSnapshot"`
}

func (d *DocumentDraft) buildPayload() Payload {
	return Payload{
		Number:         d.Number,
		Date:           d.Date,
		CustomerID:     *d.CustomerID,
		Lines:          append([]pricing.LineItem(nil), d.Lines...),
		DiscountMode:   d.Policy.DiscountMode,
		Discount:       d.Policy.Discount,
		Shipping:       d.Policy.Shipping,
		TaxMode:        d.Policy.TaxMode,
		GlobalTaxRate:  d.Policy.GlobalTaxRate,
		Currency:       d.FX.Currency,
		Subtotal:       d.Totals.Subtotal,
		TaxTotal:       d.Totals.TaxTotal,
		TotalAmount:    d.Totals.TotalAmount,
		FXRateSnapshot: d.FX.ExchangeRate,
	}
}

// CommitSnapshot freezes what was persisted. It is never recomputed:
// later changes to defaults or rates cannot alter a committed
// document's recorded figures.
type CommitSnapshot struct {
	DocumentID  id.ID
	Payload     Payload
	CommittedAt time.Time
}

// Persister stores commit payloads. Create is used for a draft never
// saved before, Update when the draft was restored over an existing
// document. Repeating a commit is guarded here, not in the draft.
type Persister interface {
	Create(ctx context.Context, p Payload) (id.ID, error)
	Update(ctx context.Context, documentID id.ID, p Payload) error
}

// Commit validates the draft, hands the payload to the persister and
// freezes a CommitSnapshot. On any failure the draft returns to Editing
// with no snapshot; on success the draft is terminal.
func (d *DocumentDraft) Commit(ctx context.Context, persister Persister) (*CommitSnapshot, error) {
	if err := d.ensureEditable(); err != nil {
		return nil, err
	}
	if err := d.validateForCommit(ctx); err != nil {
		return nil, err
	}

	d.status = StatusSubmitting
	payload := d.buildPayload()

	var docID id.ID
	var err error
	if d.persistedID != nil {
		docID = *d.persistedID
		err = persister.Update(ctx, docID, payload)
	} else {
		docID, err = persister.Create(ctx, payload)
	}
	if err != nil {
		d.status = StatusEditing
		return nil, err
	}

	d.snapshot = &CommitSnapshot{
		DocumentID:  docID,
		Payload:     payload,
		CommittedAt: time.Now().UTC(),
	}
	d.status = StatusCommitted
	return d.snapshot, nil
}
