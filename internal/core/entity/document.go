package entity

import (
	"context"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Invoice, Estimate, Payment.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Committed indicates if document movements are recorded in registers
	Committed bool `db:"committed" json:"committed"`

	// CommitVersion tracks commit iterations for movement reconciliation.
	// Incremented each time the document is committed or modified while committed.
	CommitVersion int `db:"commit_version" json:"commitVersion"`

	// OrganizationID is the owning organization (required for multi-org support)
	OrganizationID string `db:"organization_id" json:"organizationId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(organizationID string) Document {
	return Document{
		BaseDocument:   NewBaseDocument(),
		Date:           time.Now().UTC(),
		OrganizationID: organizationID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.OrganizationID == "" {
		return apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if document can be modified.
// Committed documents require voiding first.
func (d *Document) CanModify() error {
	if d.Committed {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentCommitted,
			"Cannot modify committed document. Void it first.",
		).WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkCommitted sets the committed flag and increments version.
func (d *Document) MarkCommitted() {
	d.Committed = true
	d.CommitVersion++
	d.Touch()
}

// MarkVoided clears the committed flag.
func (d *Document) MarkVoided() {
	d.Committed = false
	d.Touch()
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// --- Committable interface default implementations ---
// Document-specific types only need to implement GetDocumentType() and
// GenerateMovements().

// GetID returns the document ID (Committable interface).
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetNumber returns the document number (Committable interface).
func (d *Document) GetNumber() string {
	return d.Number
}

// GetDate returns the document business date (Committable interface).
func (d *Document) GetDate() time.Time {
	return d.Date
}

// GetCommitVersion returns the current commit version (Committable interface).
func (d *Document) GetCommitVersion() int {
	return d.CommitVersion
}

// IsCommitted returns true if document is currently committed (Committable interface).
func (d *Document) IsCommitted() bool {
	return d.Committed
}

// CanCommit validates if document can be committed (Committable interface default).
// Override in specific document types if additional validation is needed.
func (d *Document) CanCommit(ctx context.Context) error {
	return d.Validate(ctx)
}
