// Package product provides the Product catalog.
// Products are the goods and services placed on document lines; the
// catalog seeds a new line's unit price, description and tax rate.
package product

import (
	"context"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/types"
)

// ProductKind defines the type of item.
type ProductKind string

const (
	KindGoods   ProductKind = "goods"
	KindService ProductKind = "service"
)

// Product represents a sellable good or service.
type Product struct {
	entity.Catalog

	// Kind defines item category
	Kind ProductKind `db:"kind" json:"kind"`

	// SKU is the item article/stock keeping unit
	SKU *string `db:"sku" json:"sku,omitempty"`

	// SalePrice is the default unit price for new lines
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// DefaultTaxRate is the tax percentage applied to new lines
	DefaultTaxRate types.Money `db:"default_tax_rate" json:"defaultTaxRate"`

	// UnitID is the reference to the unit of measure
	UnitID *string `db:"unit_id" json:"unitId,omitempty"`

	// Description is the text placed on document lines
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, kind ProductKind) *Product {
	return &Product{
		Catalog:        entity.NewCatalog(code, name),
		Kind:           kind,
		SalePrice:      types.Zero(),
		DefaultTaxRate: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid product kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	if p.DefaultTaxRate.IsNegative() || p.DefaultTaxRate.GreaterThan(types.MustMoney("100")) {
		return apperror.NewValidation("default tax rate must be between 0 and 100").
			WithDetail("field", "defaultTaxRate")
	}

	return nil
}

// LineDescription returns the text to seed a document line with.
func (p *Product) LineDescription() string {
	if p.Description != nil && *p.Description != "" {
		return *p.Description
	}
	return p.Name
}

func isValidKind(k ProductKind) bool {
	switch k {
	case KindGoods, KindService:
		return true
	}
	return false
}
