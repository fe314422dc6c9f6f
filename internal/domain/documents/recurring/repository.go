// Package recurring provides the RecurringTemplate repository.
package recurring

import (
	"context"
	"time"

	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/pricing"
)

// Repository defines operations for recurring templates.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, tpl *RecurringTemplate) error
	GetByID(ctx context.Context, tplID id.ID) (*RecurringTemplate, error)
	Update(ctx context.Context, tpl *RecurringTemplate) error
	Delete(ctx context.Context, tplID id.ID) error

	// Line operations
	GetLines(ctx context.Context, tplID id.ID) ([]pricing.LineItem, error)
	SaveLines(ctx context.Context, tplID id.ID, lines []pricing.LineItem) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*RecurringTemplate], error)

	// ListDue returns active templates whose NextRunAt has passed,
	// locked for the scheduler run (SKIP LOCKED semantics).
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]*RecurringTemplate, error)
}

// ListFilter for filtering templates.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Active     *bool
	Interval   *Interval
	DueBefore  *time.Time
}
