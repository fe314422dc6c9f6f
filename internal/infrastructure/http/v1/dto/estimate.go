package dto

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/documents/estimate"
)

// --- Request DTOs ---

// CreateEstimateRequest represents a request to create an estimate.
type CreateEstimateRequest struct {
	Number         string            `json:"number,omitempty"`
	Date           time.Time         `json:"date" binding:"required"`
	OrganizationID string            `json:"organizationId" binding:"required"`
	CustomerID     string            `json:"customerId" binding:"required"`
	Currency       string            `json:"currency,omitempty"`
	ValidUntil     *time.Time        `json:"validUntil,omitempty"`
	Policy         *PolicyRequest    `json:"policy,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	Lines          []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity converts request to domain entity.
func (r *CreateEstimateRequest) ToEntity() *estimate.Estimate {
	customerID, _ := id.Parse(r.CustomerID)

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	doc := estimate.NewEstimate(r.OrganizationID, customerID, currency)
	doc.Number = r.Number
	doc.Date = r.Date
	doc.Comment = r.Comment
	if r.ValidUntil != nil {
		doc.ValidUntil = *r.ValidUntil
	} else {
		doc.ValidUntil = r.Date.AddDate(0, 1, 0)
	}

	if r.Policy != nil {
		doc.SetPolicy(r.Policy.ToPolicy())
	}

	for _, line := range r.Lines {
		doc.AddLine(line.ToLineItem())
	}

	return doc
}

// UpdateEstimateRequest represents a request to update an estimate.
type UpdateEstimateRequest struct {
	Number     *string           `json:"number,omitempty"`
	Date       *time.Time        `json:"date,omitempty"`
	CustomerID *string           `json:"customerId,omitempty"`
	Currency   *string           `json:"currency,omitempty"`
	ValidUntil *time.Time        `json:"validUntil,omitempty"`
	Policy     *PolicyRequest    `json:"policy,omitempty"`
	Comment    *string           `json:"comment,omitempty"`
	Lines      []LineItemRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateEstimateRequest) ApplyTo(doc *estimate.Estimate) {
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
	if r.ValidUntil != nil {
		doc.ValidUntil = *r.ValidUntil
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

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

// EstimateResponse represents an estimate in API responses.
type EstimateResponse struct {
	ID                string             `json:"id"`
	Number            string             `json:"number"`
	Date              time.Time          `json:"date"`
	Committed         bool               `json:"committed"`
	CommitVersion     int                `json:"commitVersion,omitempty"`
	OrganizationID    string             `json:"organizationId"`
	CustomerID        string             `json:"customerId"`
	Currency          string             `json:"currency"`
	ExchangeRate      types.Money        `json:"exchangeRate"`
	ValidUntil        time.Time          `json:"validUntil"`
	Expired           bool               `json:"expired"`
	AcceptedInvoiceID *string            `json:"acceptedInvoiceId,omitempty"`
	Policy            PolicyResponse     `json:"policy"`
	Subtotal          types.Money        `json:"subtotal"`
	TaxTotal          types.Money        `json:"taxTotal"`
	TotalAmount       types.Money        `json:"totalAmount"`
	Comment           string             `json:"comment,omitempty"`
	Lines             []LineItemResponse `json:"lines,omitempty"`
	DeletionMark      bool               `json:"deletionMark,omitempty"`
	Version           int                `json:"version"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// FromEstimate converts domain entity to response DTO.
func FromEstimate(doc *estimate.Estimate) *EstimateResponse {
	resp := &EstimateResponse{
		ID:             doc.ID.String(),
		Number:         doc.Number,
		Date:           doc.Date,
		Committed:      doc.Committed,
		CommitVersion:  doc.CommitVersion,
		OrganizationID: doc.OrganizationID,
		CustomerID:     doc.CustomerID.String(),
		Currency:       doc.Currency,
		ExchangeRate:   doc.ExchangeRate,
		ValidUntil:     doc.ValidUntil,
		Expired:        doc.IsExpired(),
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
	if doc.AcceptedInvoiceID != nil {
		s := doc.AcceptedInvoiceID.String()
		resp.AcceptedInvoiceID = &s
	}
	return resp
}

// EstimateListResponse represents a list of estimates.
type EstimateListResponse struct {
	Items      []*EstimateResponse `json:"items"`
	TotalCount int64               `json:"totalCount"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ConvertEstimateResponse is returned when an estimate becomes an invoice.
type ConvertEstimateResponse struct {
	EstimateID string `json:"estimateId"`
	InvoiceID  string `json:"invoiceId"`
}
