package dto

import (
	"facture/internal/core/id"
	"facture/internal/domain/catalogs/organization"
)

// CreateOrganizationRequest is the DTO for creating an organization.
type CreateOrganizationRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name" binding:"required"`
	LegalName      string `json:"legalName"`
	TaxID          string `json:"taxId"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	BaseCurrencyID id.ID  `json:"baseCurrencyId"`
	IsDefault      bool   `json:"isDefault"`
}

func (r CreateOrganizationRequest) ToEntity() *organization.Organization {
	org := organization.NewOrganization(r.Code, r.Name, r.BaseCurrencyID)
	if r.LegalName != "" {
		org.LegalName = &r.LegalName
	}
	if r.TaxID != "" {
		org.TaxID = &r.TaxID
	}
	if r.Email != "" {
		org.Email = &r.Email
	}
	if r.Address != "" {
		org.Address = &r.Address
	}
	org.IsDefault = r.IsDefault
	return org
}

// UpdateOrganizationRequest is the DTO for updating an organization.
type UpdateOrganizationRequest struct {
	ID             id.ID  `json:"id" binding:"required"`
	Version        int    `json:"version" binding:"required"`
	Code           string `json:"code"`
	Name           string `json:"name" binding:"required"`
	LegalName      string `json:"legalName"`
	TaxID          string `json:"taxId"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	BaseCurrencyID id.ID  `json:"baseCurrencyId"`
	IsDefault      bool   `json:"isDefault"`
	DeletionMark   bool   `json:"deletionMark"`
}

func (r UpdateOrganizationRequest) ApplyTo(org *organization.Organization) {
	org.Code = r.Code
	org.Name = r.Name
	org.LegalName = optional(r.LegalName)
	org.TaxID = optional(r.TaxID)
	org.Email = optional(r.Email)
	org.Address = optional(r.Address)
	org.BaseCurrencyID = r.BaseCurrencyID
	org.IsDefault = r.IsDefault
	org.DeletionMark = r.DeletionMark
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OrganizationResponse is the DTO for returning organization data.
type OrganizationResponse struct {
	ID             id.ID  `json:"id"`
	Version        int    `json:"version"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	LegalName      string `json:"legalName,omitempty"`
	TaxID          string `json:"taxId,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	BaseCurrencyID id.ID  `json:"baseCurrencyId"`
	IsDefault      bool   `json:"isDefault"`
	DeletionMark   bool   `json:"deletionMark"`
}

func FromOrganization(org *organization.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:             org.ID,
		Version:        org.Version,
		Code:           org.Code,
		Name:           org.Name,
		BaseCurrencyID: org.BaseCurrencyID,
		IsDefault:      org.IsDefault,
		DeletionMark:   org.DeletionMark,
	}
	if org.LegalName != nil {
		resp.LegalName = *org.LegalName
	}
	if org.TaxID != nil {
		resp.TaxID = *org.TaxID
	}
	if org.Email != nil {
		resp.Email = *org.Email
	}
	if org.Address != nil {
		resp.Address = *org.Address
	}
	return resp
}
