package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"facture/internal/core/id"
	"facture/internal/domain/pricing"
	"facture/internal/infrastructure/storage/postgres"
)

// lineColumns is the row shape shared by all document line tables.
var lineColumns = []string{
	"line_id", "line_no", "product_id", "description",
	"quantity", "unit_price", "tax_rate", "line_discount",
}

// selectLines loads the ordered line set of a document.
func selectLines(
	ctx context.Context,
	builder squirrel.StatementBuilderType,
	txManager *postgres.TxManager,
	table string,
	docID id.ID,
) ([]pricing.LineItem, error) {
	q := builder.
		Select(lineColumns...).
		From(table).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []pricing.LineItem
	querier := txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// replaceLines replaces the line set of a document (delete existing + insert new).
func replaceLines(
	ctx context.Context,
	builder squirrel.StatementBuilderType,
	txManager *postgres.TxManager,
	table string,
	docID id.ID,
	lines []pricing.LineItem,
) error {
	querier := txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + table + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := builder.
		Insert(table).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "description",
			"quantity", "unit_price", "tax_rate", "line_discount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID, line.Description,
			line.Quantity, line.UnitPrice, line.TaxRate, line.LineDiscount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}
