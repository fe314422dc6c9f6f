package dto

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/domain/documents/recurring"
)

// --- Request DTOs ---

// CreateRecurringTemplateRequest represents a request to create a template.
type CreateRecurringTemplateRequest struct {
	Number         string             `json:"number,omitempty"`
	OrganizationID string             `json:"organizationId" binding:"required"`
	CustomerID     string             `json:"customerId" binding:"required"`
	Currency       string             `json:"currency,omitempty"`
	Interval       recurring.Interval `json:"interval" binding:"required,oneof=weekly monthly quarterly yearly"`
	NextRunAt      *time.Time         `json:"nextRunAt,omitempty"`
	Active         *bool              `json:"active,omitempty"`
	Policy         *PolicyRequest     `json:"policy,omitempty"`
	Comment        string             `json:"comment,omitempty"`
	Lines          []LineItemRequest  `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity converts request to domain entity.
func (r *CreateRecurringTemplateRequest) ToEntity() *recurring.RecurringTemplate {
	customerID, _ := id.Parse(r.CustomerID)

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	tpl := recurring.NewRecurringTemplate(r.OrganizationID, customerID, currency)
	tpl.Number = r.Number
	tpl.Interval = r.Interval
	tpl.Comment = r.Comment
	if r.NextRunAt != nil {
		tpl.NextRunAt = *r.NextRunAt
	}
	if r.Active != nil {
		tpl.Active = *r.Active
	}

	if r.Policy != nil {
		p := r.Policy.ToPolicy()
		tpl.DiscountMode = p.DiscountMode
		tpl.Discount = p.Discount
		tpl.Shipping = p.Shipping
		tpl.TaxMode = p.TaxMode
		tpl.GlobalTaxRate = p.GlobalTaxRate
	}

	tpl.Lines = LinesToItems(r.Lines)
	for i := range tpl.Lines {
		tpl.Lines[i].LineNo = i + 1
	}

	return tpl
}

// UpdateRecurringTemplateRequest represents a request to update a template.
type UpdateRecurringTemplateRequest struct {
	CustomerID *string             `json:"customerId,omitempty"`
	Currency   *string             `json:"currency,omitempty"`
	Interval   *recurring.Interval `json:"interval,omitempty"`
	NextRunAt  *time.Time          `json:"nextRunAt,omitempty"`
	Active     *bool               `json:"active,omitempty"`
	Policy     *PolicyRequest      `json:"policy,omitempty"`
	Comment    *string             `json:"comment,omitempty"`
	Lines      []LineItemRequest   `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateRecurringTemplateRequest) ApplyTo(tpl *recurring.RecurringTemplate) {
	if r.CustomerID != nil {
		customerID, _ := id.Parse(*r.CustomerID)
		tpl.CustomerID = customerID
	}
	if r.Currency != nil {
		tpl.Currency = *r.Currency
	}
	if r.Interval != nil {
		tpl.Interval = *r.Interval
	}
	if r.NextRunAt != nil {
		tpl.NextRunAt = *r.NextRunAt
	}
	if r.Active != nil {
		tpl.Active = *r.Active
	}
	if r.Comment != nil {
		tpl.Comment = *r.Comment
	}

	if r.Policy != nil {
		p := r.Policy.ToPolicy()
		tpl.DiscountMode = p.DiscountMode
		tpl.Discount = p.Discount
		tpl.Shipping = p.Shipping
		tpl.TaxMode = p.TaxMode
		tpl.GlobalTaxRate = p.GlobalTaxRate
	}

	if r.Lines != nil {
		tpl.Lines = LinesToItems(r.Lines)
		for i := range tpl.Lines {
			tpl.Lines[i].LineNo = i + 1
		}
	}
}

// --- Response DTOs ---

// RecurringTemplateResponse represents a template in API responses.
type RecurringTemplateResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	OrganizationID string             `json:"organizationId"`
	CustomerID     string             `json:"customerId"`
	Currency       string             `json:"currency"`
	Interval       recurring.Interval `json:"interval"`
	Active         bool               `json:"active"`
	NextRunAt      time.Time          `json:"nextRunAt"`
	LastRunAt      *time.Time         `json:"lastRunAt,omitempty"`
	Policy         PolicyResponse     `json:"policy"`
	Comment        string             `json:"comment,omitempty"`
	Lines          []LineItemResponse `json:"lines,omitempty"`
	DeletionMark   bool               `json:"deletionMark,omitempty"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// FromRecurringTemplate converts domain entity to response DTO.
func FromRecurringTemplate(tpl *recurring.RecurringTemplate) *RecurringTemplateResponse {
	return &RecurringTemplateResponse{
		ID:             tpl.ID.String(),
		Number:         tpl.Number,
		OrganizationID: tpl.OrganizationID,
		CustomerID:     tpl.CustomerID.String(),
		Currency:       tpl.Currency,
		Interval:       tpl.Interval,
		Active:         tpl.Active,
		NextRunAt:      tpl.NextRunAt,
		LastRunAt:      tpl.LastRunAt,
		Policy:         FromPolicy(tpl.Policy()),
		Comment:        tpl.Comment,
		Lines:          FromLineItems(tpl.Lines),
		DeletionMark:   tpl.DeletionMark,
		Version:        tpl.Version,
		CreatedAt:      tpl.CreatedAt,
		UpdatedAt:      tpl.UpdatedAt,
	}
}

// RecurringTemplateListResponse represents a list of templates.
type RecurringTemplateListResponse struct {
	Items      []*RecurringTemplateResponse `json:"items"`
	TotalCount int64                        `json:"totalCount"`
	Limit      int                          `json:"limit"`
	Offset     int                          `json:"offset"`
}

// RunDueResponse reports a scheduler run outcome.
type RunDueResponse struct {
	Generated int `json:"generated"`
}
