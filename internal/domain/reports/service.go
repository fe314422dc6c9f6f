package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetRevenueSummary generates the revenue summary report.
func (s *Service) GetRevenueSummary(ctx context.Context, filter RevenueSummaryFilter) (*RevenueSummaryReport, error) {
	// Validate required dates
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	if filter.GroupBy == "" {
		filter.GroupBy = RevenueByMonth
	}
	if filter.GroupBy != RevenueByMonth && filter.GroupBy != RevenueByCustomer {
		return nil, fmt.Errorf("unknown groupBy: %s", filter.GroupBy)
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetRevenueSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get revenue summary: %w", err)
	}

	return report, nil
}

// GetTaxSummary generates the tax summary report.
func (s *Service) GetTaxSummary(ctx context.Context, filter TaxSummaryFilter) (*TaxSummaryReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	report, err := s.repo.GetTaxSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get tax summary: %w", err)
	}

	return report, nil
}

// GetDocumentJournal returns the document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	// Default sort
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// Get summary if requested (when no pagination offset)
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err == nil {
			journal.Summary = summary
		}
	}

	return journal, nil
}

// GetReceivablesAging generates the aging report.
func (s *Service) GetReceivablesAging(ctx context.Context, filter AgingFilter) (*AgingReport, error) {
	// Default to current time if not specified
	if filter.AsOf == nil {
		now := time.Now()
		filter.AsOf = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetReceivablesAging(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get receivables aging: %w", err)
	}

	return report, nil
}
