package dto

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// CreateInvoiceRequest represents a request to create an invoice.
type CreateInvoiceRequest struct {
	Number            string            `json:"number,omitempty"`
	Date              time.Time         `json:"date" binding:"required"`
	OrganizationID    string            `json:"organizationId" binding:"required"`
	CustomerID        string            `json:"customerId" binding:"required"`
	Currency          string            `json:"currency,omitempty"`
	DueDate           *time.Time        `json:"dueDate,omitempty"`
	Policy            *PolicyRequest    `json:"policy,omitempty"`
	Comment           string            `json:"comment,omitempty"`
	Lines             []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
	CommitImmediately bool              `json:"commitImmediately,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateInvoiceRequest) ToEntity() *invoice.Invoice {
	customerID, _ := id.Parse(r.CustomerID)

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	doc := invoice.NewInvoice(r.OrganizationID, customerID, currency)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Comment = r.Comment
	if r.DueDate != nil {
		doc.DueDate = *r.DueDate
	} else {
		doc.DueDate = r.Date.AddDate(0, 0, 14)
	}

	if r.Policy != nil {
		doc.SetPolicy(r.Policy.ToPolicy())
	}

	for _, line := range r.Lines {
		doc.AddLine(line.ToLineItem())
	}

	return doc
}

// UpdateInvoiceRequest represents a request to update an invoice.
type UpdateInvoiceRequest struct {
	Number     *string           `json:"number,omitempty"`
	Date       *time.Time        `json:"date,omitempty"`
	CustomerID *string           `json:"customerId,omitempty"`
	Currency   *string           `json:"currency,omitempty"`
	DueDate    *time.Time        `json:"dueDate,omitempty"`
	Policy     *PolicyRequest    `json:"policy,omitempty"`
	Comment    *string           `json:"comment,omitempty"`
	Lines      []LineItemRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateInvoiceRequest) ApplyTo(doc *invoice.Invoice) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		customerID, _ := id.Parse(*r.CustomerID)
		doc.CustomerID = customerID
	}
	if r.Currency != nil {
		doc.Currency = *r.Currency
	}
	if r.DueDate != nil {
		doc.DueDate = *r.DueDate
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	// If lines are provided, rebuild them
	if r.Lines != nil {
		doc.Lines = nil
		for _, line := range r.Lines {
			doc.AddLine(line.ToLineItem())
		}
	}

	if r.Policy != nil {
		doc.SetPolicy(r.Policy.ToPolicy())
	} else {
		doc.RecalculateTotals()
	}
}

// --- Response DTOs ---

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	Date           time.Time          `json:"date"`
	Committed      bool               `json:"committed"`
	CommitVersion  int                `json:"commitVersion,omitempty"`
	OrganizationID string             `json:"organizationId"`
	CustomerID     string             `json:"customerId"`
	Currency       string             `json:"currency"`
	ExchangeRate   types.Money        `json:"exchangeRate"`
	DueDate        time.Time          `json:"dueDate"`
	Policy         PolicyResponse     `json:"policy"`
	Subtotal       types.Money        `json:"subtotal"`
	TaxTotal       types.Money        `json:"taxTotal"`
	TotalAmount    types.Money        `json:"totalAmount"`
	Comment        string             `json:"comment,omitempty"`
	Lines          []LineItemResponse `json:"lines,omitempty"`
	DeletionMark   bool               `json:"deletionMark,omitempty"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// FromInvoice converts domain entity to response DTO.
func FromInvoice(doc *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:             doc.ID.String(),
		Number:         doc.Number,
		Date:           doc.Date,
		Committed:      doc.Committed,
		CommitVersion:  doc.CommitVersion,
		OrganizationID: doc.OrganizationID,
		CustomerID:     doc.CustomerID.String(),
		Currency:       doc.Currency,
		ExchangeRate:   doc.ExchangeRate,
		DueDate:        doc.DueDate,
		Policy:         FromPolicy(doc.Policy()),
		Subtotal:       doc.Subtotal,
		TaxTotal:       doc.TaxTotal,
		TotalAmount:    doc.TotalAmount,
		Comment:        doc.Comment,
		Lines:          FromLineItems(doc.Lines),
		DeletionMark:   doc.DeletionMark,
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// InvoiceListResponse represents a list of invoices.
type InvoiceListResponse struct {
	Items      []*InvoiceResponse `json:"items"`
	TotalCount int64              `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}
