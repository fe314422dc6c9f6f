// Package report_repo provides PostgreSQL implementations for report repositories.
// TxManager is obtained from the request context.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"facture/internal/core/types"
	"facture/internal/domain/reports"
	"facture/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// GetRevenueSummary aggregates committed invoices by month or by customer.
func (r *ReportRepo) GetRevenueSummary(ctx context.Context, filter reports.RevenueSummaryFilter) (*reports.RevenueSummaryReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "d.deletion_mark = false AND d.committed = true AND d.date >= $1 AND d.date < $2"
	argIndex := 3

	if len(filter.CustomerIDs) > 0 {
		placeholders := make([]string, len(filter.CustomerIDs))
		for i, cID := range filter.CustomerIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, cID)
			argIndex++
		}
		conditions += fmt.Sprintf(" AND d.customer_id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.Currency != nil {
		conditions += fmt.Sprintf(" AND d.currency = $%d", argIndex)
		args = append(args, *filter.Currency)
		argIndex++
	}

	var query string
	switch filter.GroupBy {
	case reports.RevenueByCustomer:
		query = fmt.Sprintf(`
			SELECT
				d.customer_id,
				c.name as customer_name,
				d.currency,
				COUNT(*) as invoice_count,
				COALESCE(SUM(d.subtotal), 0) as subtotal,
				COALESCE(SUM(d.tax_total), 0) as tax_total,
				COALESCE(SUM(d.shipping), 0) as shipping,
				COALESCE(SUM(d.total_amount), 0) as total_amount
			FROM doc_invoices d
			JOIN cat_customers c ON d.customer_id = c.id
			WHERE %s
			GROUP BY d.customer_id, c.name, d.currency
			ORDER BY total_amount DESC
		`, conditions)
	default:
		query = fmt.Sprintf(`
			SELECT
				to_char(d.date, 'YYYY-MM') as period,
				d.currency,
				COUNT(*) as invoice_count,
				COALESCE(SUM(d.subtotal), 0) as subtotal,
				COALESCE(SUM(d.tax_total), 0) as tax_total,
				COALESCE(SUM(d.shipping), 0) as shipping,
				COALESCE(SUM(d.total_amount), 0) as total_amount
			FROM doc_invoices d
			WHERE %s
			GROUP BY to_char(d.date, 'YYYY-MM'), d.currency
			ORDER BY period, d.currency
		`, conditions)
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.RevenueSummaryItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("revenue summary: %w", err)
	}

	report := &reports.RevenueSummaryReport{
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
		Items:         items,
		TotalItems:    len(items),
		TotalSubtotal: types.Zero(),
		TotalTax:      types.Zero(),
		TotalAmount:   types.Zero(),
	}
	for _, item := range items {
		report.TotalSubtotal = report.TotalSubtotal.Add(item.Subtotal)
		report.TotalTax = report.TotalTax.Add(item.TaxTotal)
		report.TotalAmount = report.TotalAmount.Add(item.TotalAmount)
	}

	return report, nil
}

// GetTaxSummary aggregates collected tax by rate across committed invoices.
//
// Per-line documents contribute line-level bases grouped by line tax rate.
// Global-mode documents contribute header totals grouped by the global rate,
// with the taxable base derived from the stored tax total.
func (r *ReportRepo) GetTaxSummary(ctx context.Context, filter reports.TaxSummaryFilter) (*reports.TaxSummaryReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	args := []any{filter.FromDate, filter.ToDate}
	currencyCond := ""
	if filter.Currency != nil {
		currencyCond = " AND d.currency = $3"
		args = append(args, *filter.Currency)
	}

	query := fmt.Sprintf(`
		WITH per_line AS (
			SELECT
				l.tax_rate,
				d.currency,
				d.id as doc_id,
				SUM(round(l.quantity * l.unit_price, 2)) as base,
				SUM(round(round(l.quantity * l.unit_price, 2) * l.tax_rate / 100, 2)) as tax
			FROM doc_invoice_lines l
			JOIN doc_invoices d ON l.document_id = d.id
			WHERE d.deletion_mark = false AND d.committed = true
			  AND d.tax_mode = 'per_line'
			  AND d.date >= $1 AND d.date < $2%s
			GROUP BY l.tax_rate, d.currency, d.id
		), global AS (
			SELECT
				d.global_tax_rate as tax_rate,
				d.currency,
				d.id as doc_id,
				CASE WHEN d.global_tax_rate > 0
				     THEN round(d.tax_total * 100 / d.global_tax_rate, 2)
				     ELSE 0 END as base,
				d.tax_total as tax
			FROM doc_invoices d
			WHERE d.deletion_mark = false AND d.committed = true
			  AND d.tax_mode = 'global'
			  AND d.date >= $1 AND d.date < $2%s
		)
		SELECT
			tax_rate,
			currency,
			COALESCE(SUM(base), 0) as taxable_base,
			COALESCE(SUM(tax), 0) as tax_amount,
			COUNT(DISTINCT doc_id) as invoice_count
		FROM (
			SELECT * FROM per_line
			UNION ALL
			SELECT * FROM global
		) combined
		GROUP BY tax_rate, currency
		ORDER BY tax_rate, currency
	`, currencyCond, currencyCond)

	var items []reports.TaxSummaryItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("tax summary: %w", err)
	}

	report := &reports.TaxSummaryReport{
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
		Items:     items,
		TotalBase: types.Zero(),
		TotalTax:  types.Zero(),
	}
	for _, item := range items {
		report.TotalBase = report.TotalBase.Add(item.TaxableBase)
		report.TotalTax = report.TotalTax.Add(item.TaxAmount)
	}

	return report, nil
}

// GetDocumentJournal retrieves documents for the journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = []string{"invoice", "estimate"}
	}

	var unions []string
	var args []any
	argIndex := 1

	appendDocQuery := func(docType, table string) {
		q := fmt.Sprintf(`
			SELECT
				d.id, '%s' as document_type, d.number, d.date,
				d.committed,
				d.customer_id, COALESCE(c.name, '') as customer_name,
				d.total_amount, d.currency,
				d.comment, d.deletion_mark, d.created_at, d.updated_at
			FROM %s d
			LEFT JOIN cat_customers c ON d.customer_id = c.id
			WHERE d.deletion_mark = false
		`, docType, table)

		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND d.date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND d.date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Committed != nil {
			q += fmt.Sprintf(" AND d.committed = $%d", argIndex)
			args = append(args, *filter.Committed)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND d.number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		if len(filter.CustomerIDs) > 0 {
			placeholders := make([]string, len(filter.CustomerIDs))
			for i, cID := range filter.CustomerIDs {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, cID)
				argIndex++
			}
			q += fmt.Sprintf(" AND d.customer_id IN (%s)", strings.Join(placeholders, ","))
		}

		unions = append(unions, q)
	}

	for _, docType := range docTypes {
		switch docType {
		case "invoice":
			appendDocQuery("invoice", "doc_invoices")
		case "estimate":
			appendDocQuery("estimate", "doc_estimates")
		}
	}

	if len(unions) == 0 {
		return &reports.DocumentJournal{
			Items:      []reports.DocumentJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")
	query += " ORDER BY " + journalOrderBy(filter.SortBy, filter.SortOrder)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: len(items),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// journalOrderBy maps sort parameters to a safe ORDER BY clause.
func journalOrderBy(sortBy, sortOrder string) string {
	column := "date"
	switch sortBy {
	case "number":
		column = "number"
	case "type":
		column = "document_type"
	case "amount":
		column = "total_amount"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return column + " " + direction + ", number"
}

// GetDocumentTypeSummary returns document counts and totals by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	var result []reports.DocumentTypeSummary

	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = []string{"invoice", "estimate"}
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	for _, docType := range docTypes {
		var table string
		switch docType {
		case "invoice":
			table = "doc_invoices"
		case "estimate":
			table = "doc_estimates"
		default:
			continue
		}

		query := fmt.Sprintf(`
			SELECT
				COUNT(*) as count,
				COUNT(*) FILTER (WHERE committed = true) as committed_count,
				COALESCE(SUM(total_amount), 0) as total_amount
			FROM %s
			WHERE deletion_mark = false
		`, table)

		var args []any
		argIndex := 1

		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		summary := reports.DocumentTypeSummary{DocumentType: docType}
		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.CommittedCount,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

// GetReceivablesAging buckets open receivables by days past due.
//
// Receipt movements are bucketed by due date; expense movements (payments,
// credits) reduce the open total. A customer with a settled balance is
// filtered out when ExcludeZero is set.
func (r *ReportRepo) GetReceivablesAging(ctx context.Context, filter reports.AgingFilter) (*reports.AgingReport, error) {
	asOf := time.Now()
	if filter.AsOf != nil {
		asOf = *filter.AsOf
	}

	args := []any{asOf}
	conditions := "1=1"
	argIndex := 2

	if len(filter.CustomerIDs) > 0 {
		placeholders := make([]string, len(filter.CustomerIDs))
		for i, cID := range filter.CustomerIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, cID)
			argIndex++
		}
		conditions += fmt.Sprintf(" AND m.customer_id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.Currency != nil {
		conditions += fmt.Sprintf(" AND m.currency = $%d", argIndex)
		args = append(args, *filter.Currency)
		argIndex++
	}

	havingClause := ""
	if filter.ExcludeZero {
		havingClause = "HAVING SUM(CASE WHEN m.record_type = 'receipt' THEN m.amount ELSE -m.amount END) != 0"
	}

	query := fmt.Sprintf(`
		SELECT
			m.customer_id,
			c.name as customer_name,
			m.currency,
			COALESCE(SUM(m.amount) FILTER (
				WHERE m.record_type = 'receipt' AND m.due_date >= $1), 0) as current,
			COALESCE(SUM(m.amount) FILTER (
				WHERE m.record_type = 'receipt' AND m.due_date < $1 AND m.due_date >= $1 - interval '30 days'), 0) as days30,
			COALESCE(SUM(m.amount) FILTER (
				WHERE m.record_type = 'receipt' AND m.due_date < $1 - interval '30 days' AND m.due_date >= $1 - interval '60 days'), 0) as days60,
			COALESCE(SUM(m.amount) FILTER (
				WHERE m.record_type = 'receipt' AND m.due_date < $1 - interval '60 days' AND m.due_date >= $1 - interval '90 days'), 0) as days90,
			COALESCE(SUM(m.amount) FILTER (
				WHERE m.record_type = 'receipt' AND m.due_date < $1 - interval '90 days'), 0) as older,
			SUM(CASE WHEN m.record_type = 'receipt' THEN m.amount ELSE -m.amount END) as total
		FROM reg_receivable_movements m
		JOIN cat_customers c ON m.customer_id = c.id
		WHERE m.period <= $1 AND %s
		GROUP BY m.customer_id, c.name, m.currency
		%s
		ORDER BY total DESC
	`, conditions, havingClause)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.AgingRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("receivables aging: %w", err)
	}

	report := &reports.AgingReport{
		AsOf:       asOf,
		Items:      items,
		TotalItems: len(items),
		TotalOpen:  types.Zero(),
	}
	for _, item := range items {
		report.TotalOpen = report.TotalOpen.Add(item.Total)
	}

	return report, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
