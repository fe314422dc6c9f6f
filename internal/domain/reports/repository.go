package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Revenue and tax reports
	GetRevenueSummary(ctx context.Context, filter RevenueSummaryFilter) (*RevenueSummaryReport, error)
	GetTaxSummary(ctx context.Context, filter TaxSummaryFilter) (*TaxSummaryReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)

	// Receivables aging
	GetReceivablesAging(ctx context.Context, filter AgingFilter) (*AgingReport, error)
}
