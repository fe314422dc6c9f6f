package main

import (
	"facture/internal/domain/catalogs/currency"
	"facture/internal/domain/catalogs/customer"
	"facture/internal/domain/catalogs/organization"
	"facture/internal/domain/catalogs/product"
	"facture/internal/domain/catalogs/unit"
	"facture/internal/domain/documents/estimate"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/documents/recurring"
	"facture/internal/metadata"
)

// setupMetadataRegistry initializes and populates the metadata registry.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	// Helper to register entity with a display label
	register := func(entity interface{}, name string, typ metadata.EntityType, label string) {
		def := metadata.Inspect(entity, name, typ)
		def.Label = label

		// Field labels rely on Inspect's auto-guessing based on field names.

		reg.Register(def)
	}

	// --- Catalogs ---
	register(customer.Customer{}, "Customer", metadata.TypeCatalog, "Customers")
	register(product.Product{}, "Product", metadata.TypeCatalog, "Products")
	register(unit.Unit{}, "Unit", metadata.TypeCatalog, "Units of Measure")
	register(currency.Currency{}, "Currency", metadata.TypeCatalog, "Currencies")
	register(organization.Organization{}, "Organization", metadata.TypeCatalog, "Organizations")

	// --- Documents ---
	register(invoice.Invoice{}, "Invoice", metadata.TypeDocument, "Invoices")
	register(estimate.Estimate{}, "Estimate", metadata.TypeDocument, "Estimates")
	register(recurring.RecurringTemplate{}, "RecurringTemplate", metadata.TypeDocument, "Recurring Templates")

	return reg
}
