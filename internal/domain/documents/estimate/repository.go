// Package estimate provides the Estimate document repository.
package estimate

import (
	"context"
	"time"

	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/pricing"
)

// Repository defines operations for estimate documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Estimate) error
	GetByID(ctx context.Context, docID id.ID) (*Estimate, error)
	GetByNumber(ctx context.Context, number string) (*Estimate, error)
	Update(ctx context.Context, doc *Estimate) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]pricing.LineItem, error)
	SaveLines(ctx context.Context, docID id.ID, lines []pricing.LineItem) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Estimate], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Estimate, error)
}

// ListFilter for filtering estimates.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	CustomerID   *id.ID
	Currency     *string
	Committed    *bool
	Converted    *bool
	ExpiredAsOf  *time.Time
	DateFrom     *time.Time
	DateTo       *time.Time
}
