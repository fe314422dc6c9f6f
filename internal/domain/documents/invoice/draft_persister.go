package invoice

import (
	"context"

	"facture/internal/core/id"
	"facture/internal/domain/draft"
	"facture/internal/domain/pricing"
)

// DraftPersister adapts the invoice service to the draft commit
// contract. Committing a draft produces a regular invoice that goes
// through the same validation and numbering as one created directly.
type DraftPersister struct {
	service        *Service
	organizationID string
}

// NewDraftPersister creates a persister that files committed drafts
// under the given organization.
func NewDraftPersister(service *Service, organizationID string) *DraftPersister {
	return &DraftPersister{
		service:        service,
		organizationID: organizationID,
	}
}

var _ draft.Persister = (*DraftPersister)(nil)

// Create stores a draft that was never persisted before as a new invoice.
func (p *DraftPersister) Create(ctx context.Context, payload draft.Payload) (id.ID, error) {
	inv := NewInvoice(p.organizationID, payload.CustomerID, payload.Currency)
	applyPayload(inv, payload)

	if err := p.service.Create(ctx, inv); err != nil {
		return id.Nil(), err
	}
	return inv.ID, nil
}

// Update overwrites an existing invoice with the draft's state.
func (p *DraftPersister) Update(ctx context.Context, documentID id.ID, payload draft.Payload) error {
	inv, err := p.service.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	applyPayload(inv, payload)
	return p.service.Update(ctx, inv)
}

func applyPayload(inv *Invoice, payload draft.Payload) {
	inv.Number = payload.Number
	inv.Date = payload.Date
	inv.CustomerID = payload.CustomerID
	inv.Currency = payload.Currency
	inv.ExchangeRate = payload.FXRateSnapshot

	inv.Lines = append([]pricing.LineItem(nil), payload.Lines...)
	inv.SetPolicy(pricing.Policy{
		DiscountMode:  payload.DiscountMode,
		Discount:      payload.Discount,
		Shipping:      payload.Shipping,
		TaxMode:       payload.TaxMode,
		GlobalTaxRate: payload.GlobalTaxRate,
	})
}
