package dto

import (
	"facture/internal/core/entity"
	"facture/internal/domain/catalogs/customer"
)

// --- Request DTOs ---

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Code             string                `json:"code"`
	Name             string                `json:"name" binding:"required"`
	Kind             customer.CustomerKind `json:"kind" binding:"required"`
	LegalName        *string               `json:"legalName"`
	TaxID            *string               `json:"taxId"`
	Email            *string               `json:"email"`
	Phone            *string               `json:"phone"`
	BillingAddress   *string               `json:"billingAddress"`
	ShippingAddress  *string               `json:"shippingAddress"`
	ProfileCurrency  *string               `json:"profileCurrency"`
	PaymentTermsDays int                   `json:"paymentTermsDays"`
	ContactPerson    *string               `json:"contactPerson"`
	Comment          *string               `json:"comment"`
	ParentID         *string               `json:"parentId"`
	IsFolder         bool                  `json:"isFolder"`
	Attributes       entity.Attributes     `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name, r.Kind)
	c.LegalName = r.LegalName
	c.TaxID = r.TaxID
	c.Email = r.Email
	c.Phone = r.Phone
	c.BillingAddress = r.BillingAddress
	c.ShippingAddress = r.ShippingAddress
	c.ProfileCurrency = r.ProfileCurrency
	if r.PaymentTermsDays > 0 {
		c.PaymentTermsDays = r.PaymentTermsDays
	}
	c.ContactPerson = r.ContactPerson
	c.Comment = r.Comment
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	c.Attributes = r.Attributes
	return c
}

// UpdateCustomerRequest is the request body for updating a customer.
type UpdateCustomerRequest struct {
	Code             string                `json:"code"`
	Name             string                `json:"name" binding:"required"`
	Kind             customer.CustomerKind `json:"kind" binding:"required"`
	LegalName        *string               `json:"legalName"`
	TaxID            *string               `json:"taxId"`
	Email            *string               `json:"email"`
	Phone            *string               `json:"phone"`
	BillingAddress   *string               `json:"billingAddress"`
	ShippingAddress  *string               `json:"shippingAddress"`
	ProfileCurrency  *string               `json:"profileCurrency"`
	PaymentTermsDays int                   `json:"paymentTermsDays"`
	ContactPerson    *string               `json:"contactPerson"`
	Comment          *string               `json:"comment"`
	ParentID         *string               `json:"parentId"`
	IsFolder         bool                  `json:"isFolder"`
	Attributes       entity.Attributes     `json:"attributes"`
	Version          int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	c.Code = r.Code
	c.Name = r.Name
	c.Kind = r.Kind
	c.LegalName = r.LegalName
	c.TaxID = r.TaxID
	c.Email = r.Email
	c.Phone = r.Phone
	c.BillingAddress = r.BillingAddress
	c.ShippingAddress = r.ShippingAddress
	c.ProfileCurrency = r.ProfileCurrency
	if r.PaymentTermsDays > 0 {
		c.PaymentTermsDays = r.PaymentTermsDays
	}
	c.ContactPerson = r.ContactPerson
	c.Comment = r.Comment
	c.ParentID = r.ParentID
	c.IsFolder = r.IsFolder
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// --- Response DTOs ---

// CustomerResponse is the response body for a customer.
type CustomerResponse struct {
	ID               string                `json:"id"`
	Code             string                `json:"code"`
	Name             string                `json:"name"`
	Kind             customer.CustomerKind `json:"kind"`
	LegalName        *string               `json:"legalName,omitempty"`
	TaxID            *string               `json:"taxId,omitempty"`
	Email            *string               `json:"email,omitempty"`
	Phone            *string               `json:"phone,omitempty"`
	BillingAddress   *string               `json:"billingAddress,omitempty"`
	ShippingAddress  *string               `json:"shippingAddress,omitempty"`
	ProfileCurrency  *string               `json:"profileCurrency,omitempty"`
	PaymentTermsDays int                   `json:"paymentTermsDays"`
	ContactPerson    *string               `json:"contactPerson,omitempty"`
	Comment          *string               `json:"comment,omitempty"`
	ParentID         *string               `json:"parentId,omitempty"`
	IsFolder         bool                  `json:"isFolder"`
	DeletionMark     bool                  `json:"deletionMark"`
	Version          int                   `json:"version"`
	Attributes       entity.Attributes     `json:"attributes,omitempty"`
}

// FromCustomer creates response DTO from domain entity.
func FromCustomer(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:               c.ID.String(),
		Code:             c.Code,
		Name:             c.Name,
		Kind:             c.Kind,
		LegalName:        c.LegalName,
		TaxID:            c.TaxID,
		Email:            c.Email,
		Phone:            c.Phone,
		BillingAddress:   c.BillingAddress,
		ShippingAddress:  c.ShippingAddress,
		ProfileCurrency:  c.ProfileCurrency,
		PaymentTermsDays: c.PaymentTermsDays,
		ContactPerson:    c.ContactPerson,
		Comment:          c.Comment,
		ParentID:         c.ParentID,
		IsFolder:         c.IsFolder,
		DeletionMark:     c.DeletionMark,
		Version:          c.Version,
		Attributes:       c.Attributes,
	}
}
