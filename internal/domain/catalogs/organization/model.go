// Package organization provides the Organization catalog: the issuer
// profiles invoices and estimates are billed from.
package organization

import (
	"context"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
)

// Organization represents an issuing legal entity. Its base currency
// is the fallback for documents whose customer has no profile currency.
type Organization struct {
	entity.Catalog

	// LegalName is the official registered name printed on documents
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// TaxID is the VAT / tax registration number shown on invoices
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Email is the billing contact address
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the issuer address printed on documents
	Address *string `db:"address" json:"address,omitempty"`

	// BaseCurrencyID is the currency the organization accounts in
	BaseCurrencyID id.ID `db:"base_currency_id" json:"baseCurrencyId,omitempty"`

	// IsDefault marks the organization new documents are filed under
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewOrganization creates a new Organization with required fields.
func NewOrganization(code, name string, baseCurrencyID id.ID) *Organization {
	return &Organization{
		Catalog:        entity.NewCatalog(code, name),
		BaseCurrencyID: baseCurrencyID,
	}
}

// Validate implements entity.Validatable interface.
func (o *Organization) Validate(ctx context.Context) error {
	if err := o.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.BaseCurrencyID) {
		return apperror.NewValidation("organization requires a base currency").
			WithDetail("field", "baseCurrencyId")
	}

	return nil
}
