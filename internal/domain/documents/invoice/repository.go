// Package invoice provides the Invoice document repository.
package invoice

import (
	"context"
	"time"

	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/pricing"
)

// Repository defines operations for invoice documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]pricing.LineItem, error)
	SaveLines(ctx context.Context, docID id.ID, lines []pricing.LineItem) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID *id.ID
	Currency   *string
	Committed  *bool
	DueBefore  *time.Time
	DateFrom   *time.Time
	DateTo     *time.Time
}
