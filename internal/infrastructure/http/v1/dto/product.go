package dto

import (
	"facture/internal/core/entity"
	"facture/internal/core/types"
	"facture/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code           string              `json:"code"`
	Name           string              `json:"name" binding:"required"`
	Kind           product.ProductKind `json:"kind" binding:"required"`
	SKU            *string             `json:"sku"`
	SalePrice      float64             `json:"salePrice"`
	DefaultTaxRate float64             `json:"defaultTaxRate"`
	UnitID         *string             `json:"unitId"`
	Description    *string             `json:"description"`
	ParentID       *string             `json:"parentId"`
	IsFolder       bool                `json:"isFolder"`
	Attributes     entity.Attributes   `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Kind)
	p.SKU = r.SKU
	p.SalePrice = types.SanitizeAmount(r.SalePrice)
	p.DefaultTaxRate = types.SanitizeAmount(r.DefaultTaxRate)
	p.UnitID = r.UnitID
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code           string              `json:"code"`
	Name           string              `json:"name" binding:"required"`
	Kind           product.ProductKind `json:"kind" binding:"required"`
	SKU            *string             `json:"sku"`
	SalePrice      float64             `json:"salePrice"`
	DefaultTaxRate float64             `json:"defaultTaxRate"`
	UnitID         *string             `json:"unitId"`
	Description    *string             `json:"description"`
	ParentID       *string             `json:"parentId"`
	IsFolder       bool                `json:"isFolder"`
	Attributes     entity.Attributes   `json:"attributes"`
	Version        int                 `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Kind = r.Kind
	p.SKU = r.SKU
	p.SalePrice = types.SanitizeAmount(r.SalePrice)
	p.DefaultTaxRate = types.SanitizeAmount(r.DefaultTaxRate)
	p.UnitID = r.UnitID
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	Kind           product.ProductKind `json:"kind"`
	SKU            *string             `json:"sku,omitempty"`
	SalePrice      types.Money         `json:"salePrice"`
	DefaultTaxRate types.Money         `json:"defaultTaxRate"`
	UnitID         *string             `json:"unitId,omitempty"`
	Description    *string             `json:"description,omitempty"`
	ParentID       *string             `json:"parentId,omitempty"`
	IsFolder       bool                `json:"isFolder"`
	DeletionMark   bool                `json:"deletionMark"`
	Version        int                 `json:"version"`
	Attributes     entity.Attributes   `json:"attributes,omitempty"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID.String(),
		Code:           p.Code,
		Name:           p.Name,
		Kind:           p.Kind,
		SKU:            p.SKU,
		SalePrice:      p.SalePrice,
		DefaultTaxRate: p.DefaultTaxRate,
		UnitID:         p.UnitID,
		Description:    p.Description,
		ParentID:       p.ParentID,
		IsFolder:       p.IsFolder,
		DeletionMark:   p.DeletionMark,
		Version:        p.Version,
		Attributes:     p.Attributes,
	}
}
