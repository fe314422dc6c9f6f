package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"facture/internal/core/id"
	"facture/internal/domain"
	"facture/internal/domain/documents/estimate"
	"facture/internal/domain/pricing"
	"facture/internal/infrastructure/storage/postgres"
)

const (
	estimatesTable     = "doc_estimates"
	estimateLinesTable = "doc_estimate_lines"
)

// EstimateRepo implements estimate.Repository.
type EstimateRepo struct {
	*BaseDocumentRepo[*estimate.Estimate]
}

// NewEstimateRepo creates a new estimate repository.
func NewEstimateRepo() *EstimateRepo {
	return &EstimateRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*estimate.Estimate](
			estimatesTable,
			postgres.ExtractDBColumns[estimate.Estimate](),
			func() *estimate.Estimate { return &estimate.Estimate{} },
		),
	}
}

// GetLines retrieves lines for an estimate.
func (r *EstimateRepo) GetLines(ctx context.Context, docID id.ID) ([]pricing.LineItem, error) {
	return selectLines(ctx, r.Builder(), r.getTxManager(ctx), estimateLinesTable, docID)
}

// SaveLines saves lines for an estimate (delete existing + insert new).
func (r *EstimateRepo) SaveLines(ctx context.Context, docID id.ID, lines []pricing.LineItem) error {
	return replaceLines(ctx, r.Builder(), r.getTxManager(ctx), estimateLinesTable, docID, lines)
}

// List retrieves estimates with filtering.
func (r *EstimateRepo) List(ctx context.Context, filter estimate.ListFilter) (domain.ListResult[*estimate.Estimate], error) {
	result := domain.ListResult[*estimate.Estimate]{
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

	if filter.Currency != nil {
		q = q.Where(squirrel.Eq{"currency": *filter.Currency})
	}

	if filter.Committed != nil {
		q = q.Where(squirrel.Eq{"committed": *filter.Committed})
	}

	if filter.Converted != nil {
		if *filter.Converted {
			q = q.Where("accepted_invoice_id IS NOT NULL")
		} else {
			q = q.Where("accepted_invoice_id IS NULL")
		}
	}

	if filter.ExpiredAsOf != nil {
		q = q.Where(squirrel.Lt{"valid_until": *filter.ExpiredAsOf})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
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

	orderBy := "date DESC"
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
