package dto

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/draft"
)

// OpenDraftRequest starts a new draft session. When DocumentID is set
// the draft is restored over an existing invoice instead of starting
// empty.
type OpenDraftRequest struct {
	Currency   string  `json:"currency"`
	CustomerID *string `json:"customer_id,omitempty"`
	DocumentID *string `json:"document_id,omitempty"`
}

// DraftLineRequest adds or updates one line of a draft.
type DraftLineRequest struct {
	Line LineItemRequest `json:"line" binding:"required"`
}

// ChangeCurrencyRequest switches the draft pricing currency. The
// exchange rate is looked up server-side.
type ChangeCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,len=3"`
}

// FXOptionsRequest toggles how the draft reacts to currency changes:
// a locked rate keeps amounts as-is, disabled auto-convert relabels
// without rescaling.
type FXOptionsRequest struct {
	RateLocked  bool `json:"rate_locked"`
	AutoConvert bool `json:"auto_convert"`
}

// SetCustomerRequest binds a customer to the draft. The customer's
// profile currency may trigger a currency switch.
type SetCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// SetNumberRequest assigns a document number to the draft.
type SetNumberRequest struct {
	Number string `json:"number" binding:"required,max=50"`
}

// FXStateResponse exposes the currency-reconciliation state of a draft.
type FXStateResponse struct {
	Currency          string      `json:"currency"`
	LastPriceCurrency string      `json:"last_price_currency"`
	ExchangeRate      types.Money `json:"exchange_rate"`
	RateLocked        bool        `json:"rate_locked"`
	AutoConvert       bool        `json:"auto_convert"`
	Mismatched        bool        `json:"mismatched"`
}

// DraftResponse is the full observable state of a draft session.
type DraftResponse struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Number     string             `json:"number,omitempty"`
	Date       time.Time          `json:"date"`
	CustomerID *string            `json:"customer_id,omitempty"`
	Lines      []LineItemResponse `json:"lines"`
	Policy     PolicyResponse     `json:"policy"`
	FX         FXStateResponse    `json:"fx"`
	Totals     TotalsResponse     `json:"totals"`
}

// FromDraft converts a domain draft to a response DTO.
func FromDraft(d *draft.DocumentDraft) DraftResponse {
	resp := DraftResponse{
		ID:     d.ID.String(),
		Status: string(d.Status()),
		Number: d.Number,
		Date:   d.Date,
		Lines:  FromLineItems(d.Lines),
		Policy: FromPolicy(d.Policy),
		FX: FXStateResponse{
			Currency:          d.FX.Currency,
			LastPriceCurrency: d.FX.LastPriceCurrency,
			ExchangeRate:      d.FX.ExchangeRate,
			RateLocked:        d.FX.RateLocked,
			AutoConvert:       d.FX.AutoConvert,
			Mismatched:        d.FX.Mismatched,
		},
		Totals: FromTotals(d.Totals),
	}
	if d.CustomerID != nil && !id.IsNil(*d.CustomerID) {
		s := d.CustomerID.String()
		resp.CustomerID = &s
	}
	return resp
}

// CommitDraftResponse reports the outcome of committing a draft.
type CommitDraftResponse struct {
	DocumentID  string      `json:"document_id"`
	Number      string      `json:"number"`
	Currency    string      `json:"currency"`
	Subtotal    types.Money `json:"subtotal"`
	TaxTotal    types.Money `json:"tax_total"`
	TotalAmount types.Money `json:"total_amount"`
	CommittedAt time.Time   `json:"committed_at"`
}

// FromCommitSnapshot converts a commit snapshot to a response DTO.
func FromCommitSnapshot(s *draft.CommitSnapshot) CommitDraftResponse {
	return CommitDraftResponse{
		DocumentID:  s.DocumentID.String(),
		Number:      s.Payload.Number,
		Currency:    s.Payload.Currency,
		Subtotal:    s.Payload.Subtotal,
		TaxTotal:    s.Payload.TaxTotal,
		TotalAmount: s.Payload.TotalAmount,
		CommittedAt: s.CommittedAt,
	}
}
