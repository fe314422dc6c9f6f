package product

import (
	"context"

	"facture/internal/core/id"
	"facture/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves a product by SKU (unique).
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// GetForUpdate retrieves product with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)
}
