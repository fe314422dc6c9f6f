package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/documents/recurring"
	"facture/internal/domain/pricing"
	"facture/internal/infrastructure/storage/postgres"
)

const (
	recurringTable      = "doc_recurring_templates"
	recurringLinesTable = "doc_recurring_template_lines"
)

// RecurringRepo implements recurring.Repository.
type RecurringRepo struct {
	*BaseDocumentRepo[*recurring.RecurringTemplate]
}

// NewRecurringRepo creates a new recurring template repository.
func NewRecurringRepo() *RecurringRepo {
	return &RecurringRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*recurring.RecurringTemplate](
			recurringTable,
			postgres.ExtractDBColumns[recurring.RecurringTemplate](),
			func() *recurring.RecurringTemplate { return &recurring.RecurringTemplate{} },
		),
	}
}

// GetLines retrieves lines for a template.
func (r *RecurringRepo) GetLines(ctx context.Context, tplID id.ID) ([]pricing.LineItem, error) {
	return selectLines(ctx, r.Builder(), r.getTxManager(ctx), recurringLinesTable, tplID)
}

// SaveLines saves lines for a template (delete existing + insert new).
func (r *RecurringRepo) SaveLines(ctx context.Context, tplID id.ID, lines []pricing.LineItem) error {
	return replaceLines(ctx, r.Builder(), r.getTxManager(ctx), recurringLinesTable, tplID, lines)
}

// List retrieves templates with filtering.
func (r *RecurringRepo) List(ctx context.Context, filter recurring.ListFilter) (domain.ListResult[*recurring.RecurringTemplate], error) {
	result := domain.ListResult[*recurring.RecurringTemplate]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.Active != nil {
		q = q.Where(squirrel.Eq{"active": *filter.Active})
	}

	if filter.Interval != nil {
		q = q.Where(squirrel.Eq{"interval": *filter.Interval})
	}

	if filter.DueBefore != nil {
		q = q.Where(squirrel.LtOrEq{"next_run_at": *filter.DueBefore})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"comment": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "next_run_at"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// ListDue returns active templates whose next run is due, skipping rows
// already locked by a concurrent scheduler run.
func (r *RecurringRepo) ListDue(ctx context.Context, asOf time.Time, limit int) ([]*recurring.RecurringTemplate, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.LtOrEq{"next_run_at": asOf}).
		OrderBy("next_run_at").
		Suffix("FOR UPDATE SKIP LOCKED")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*recurring.RecurringTemplate
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}

	return items, nil
}
