// Package unit provides the Unit catalog. Units say what an invoice
// line's quantity counts: pieces, hours, days, kilograms, packs.
package unit

import (
	"context"

	"github.com/shopspring/decimal"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
)

// UnitType groups units that can be converted into one another.
type UnitType string

const (
	TypePiece  UnitType = "piece"
	TypeTime   UnitType = "time"
	TypeWeight UnitType = "weight"
	TypeVolume UnitType = "volume"
	TypePack   UnitType = "pack"
)

// Unit represents a billing unit of measure.
type Unit struct {
	entity.Catalog

	// Type defines the unit category
	Type UnitType `db:"type" json:"type"`

	// Symbol is the short form printed on invoice lines (e.g. "h", "pcs")
	Symbol string `db:"symbol" json:"symbol"`

	// UNECECode is the UN/ECE Recommendation 20 code carried on
	// electronic invoices (e.g. "HUR" for hours, "H87" for pieces)
	UNECECode *string `db:"unece_code" json:"uneceCode,omitempty"`

	// BaseUnitID is the base unit this one is derived from
	BaseUnitID *string `db:"base_unit_id" json:"baseUnitId,omitempty"`

	// ConversionFactor is the multiplier to the base unit
	// (a day billed against an hourly base has factor 8)
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`

	// IsBase indicates the unit is not derived from another
	IsBase bool `db:"is_base" json:"isBase"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewUnit creates a new Unit with required fields.
func NewUnit(code, name, symbol string, unitType UnitType) *Unit {
	return &Unit{
		Catalog:          entity.NewCatalog(code, name),
		Type:             unitType,
		Symbol:           symbol,
		ConversionFactor: decimal.NewFromInt(1),
		IsBase:           true,
	}
}

// Validate implements entity.Validatable interface.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if !isValidUnitType(u.Type) {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "type").
			WithDetail("value", string(u.Type))
	}

	if !u.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive").
			WithDetail("field", "conversionFactor")
	}

	// A derived unit cannot double as its own base
	if u.BaseUnitID != nil && *u.BaseUnitID != "" && u.IsBase {
		return apperror.NewValidation("unit with base unit reference cannot be marked as base").
			WithDetail("field", "isBase")
	}

	return nil
}

func isValidUnitType(t UnitType) bool {
	switch t {
	case TypePiece, TypeTime, TypeWeight, TypeVolume, TypePack:
		return true
	}
	return false
}
