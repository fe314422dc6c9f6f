// Package currency provides the Currency catalog. Documents carry an
// ISO code from this catalog; rate snapshots come from the rates
// client, not from the catalog row.
package currency

import (
	"context"
	"regexp"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
)

// Currency represents a monetary unit documents can be priced in.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "USD", "EUR", "GBP")
	ISOCode *string `db:"iso_code" json:"isoCode"`

	// ISONumericCode is the ISO 4217 numeric code (e.g., 840, 978, 826)
	ISONumericCode *string `db:"iso_numeric_code" json:"isoNumericCode,omitempty"`

	// Symbol is the currency symbol (e.g., "$", "€", "£")
	Symbol *string `db:"symbol" json:"symbol"`

	// DecimalPlaces is the minor-unit exponent (0 for JPY, 2 for USD)
	DecimalPlaces int `db:"decimal_places" json:"decimalPlaces"`

	// IsBase marks the accounting currency; documents with no explicit
	// or customer-profile currency fall back to it
	IsBase bool `db:"is_base" json:"isBase"`

	// Country is the primary country for this currency
	Country *string `db:"country" json:"country,omitempty"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(code, name string, isoCode, symbol *string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(code, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
	}
}

// Validate implements entity.Validatable interface.
func (c *Currency) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	// ISO code is required and must be 3 uppercase letters
	if !isValidISOCode(c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode").
			WithDetail("value", c.ISOCode)
	}

	// Symbol is required
	if c.Symbol == nil || *c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	// Decimal places must be non-negative
	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}

	return nil
}

// --- Validation Helpers ---

func isValidISOCode(code *string) bool {
	if code == nil {
		return false
	}
	return regexp.MustCompile(`^[A-Z]{3}$`).MatchString(*code)
}
