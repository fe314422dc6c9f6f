// Package customer provides the Customer catalog.
// Customers are the parties invoices and estimates are billed to.
package customer

import (
	"context"
	"regexp"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	emailRE        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)
)

// CustomerKind distinguishes companies from private individuals.
type CustomerKind string

const (
	KindCompany    CustomerKind = "company"
	KindIndividual CustomerKind = "individual"
)

// Customer represents a billed party.
type Customer struct {
	entity.Catalog

	// Kind defines whether this is a company or an individual
	Kind CustomerKind `db:"kind" json:"kind"`

	// LegalName is the official registered name (for companies)
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// TaxID is the customer's tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Email is the primary billing email
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// BillingAddress is the address printed on documents
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// ShippingAddress is the delivery address, when different
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`

	// ProfileCurrency is the customer's preferred ISO 4217 currency code.
	// Selecting the customer on a draft switches the draft to this currency.
	ProfileCurrency *string `db:"profile_currency" json:"profileCurrency,omitempty"`

	// PaymentTermsDays is the default due offset for invoices (net-N)
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string, kind CustomerKind) *Customer {
	return &Customer{
		Catalog:          entity.NewCatalog(code, name),
		Kind:             kind,
		PaymentTermsDays: 14,
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(c.Kind) {
		return apperror.NewValidation("invalid customer kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	// Email validation (if provided)
	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	// Profile currency must be an ISO 4217 alpha code
	if c.ProfileCurrency != nil && *c.ProfileCurrency != "" && !currencyCodeRE.MatchString(*c.ProfileCurrency) {
		return apperror.NewValidation("profile currency must be 3 uppercase letters").
			WithDetail("field", "profileCurrency").
			WithDetail("value", *c.ProfileCurrency)
	}

	if c.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}

	return nil
}

// Currency returns the profile currency or empty when unset.
func (c *Customer) Currency() string {
	if c.ProfileCurrency == nil {
		return ""
	}
	return *c.ProfileCurrency
}

func isValidKind(k CustomerKind) bool {
	switch k {
	case KindCompany, KindIndividual:
		return true
	}
	return false
}
