package documents

import (
	"context"
	"fmt"

	"facture/internal/core/id"
	"facture/internal/domain/catalogs/currency"
	"facture/internal/domain/catalogs/customer"
	"facture/internal/domain/catalogs/organization"
)

// CurrencyResolver determines the currency code for a new document.
type CurrencyResolver struct {
	customers  customer.Repository
	orgs       organization.Repository
	currencies currency.Repository
}

// NewCurrencyResolver creates a new CurrencyResolver.
func NewCurrencyResolver(
	customers customer.Repository,
	orgs organization.Repository,
	currencies currency.Repository,
) *CurrencyResolver {
	return &CurrencyResolver{
		customers:  customers,
		orgs:       orgs,
		currencies: currencies,
	}
}

// ResolveForDocument determines the currency for a document based on explicit input,
// customer billing profile, or organization defaults.
func (r *CurrencyResolver) ResolveForDocument(
	ctx context.Context,
	explicitCode string,
	customerID id.ID,
	organizationID id.ID,
) (string, error) {
	// 1. Explicit currency in document
	if explicitCode != "" {
		return explicitCode, nil
	}

	// 2. Customer profile currency
	if !id.IsNil(customerID) {
		cust, err := r.customers.GetByID(ctx, customerID)
		if err == nil && cust != nil && cust.ProfileCurrency != nil && *cust.ProfileCurrency != "" {
			return *cust.ProfileCurrency, nil
		}
	}

	// 3. Organization base currency
	if !id.IsNil(organizationID) {
		org, err := r.orgs.GetByID(ctx, organizationID)
		if err == nil && org != nil && !id.IsNil(org.BaseCurrencyID) {
			base, err := r.currencies.GetByID(ctx, org.BaseCurrencyID)
			if err == nil && base != nil && base.ISOCode != nil {
				return *base.ISOCode, nil
			}
		}
	}

	// 4. System base currency
	base, err := r.currencies.FindBase(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to determine currency: %w", err)
	}
	if base.ISOCode == nil {
		return "", fmt.Errorf("base currency %s has no ISO code", base.Code)
	}

	return *base.ISOCode, nil
}
