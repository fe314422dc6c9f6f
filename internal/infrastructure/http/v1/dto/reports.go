package dto

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/domain/reports"
)

// --- Revenue Summary ---

// RevenueSummaryRequest contains query parameters for the revenue summary.
type RevenueSummaryRequest struct {
	FromDate    time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate      time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
	CustomerIDs []string  `form:"customerIds"`
	Currency    string    `form:"currency"`
	GroupBy     string    `form:"groupBy"`
	Limit       int       `form:"limit"`
	Offset      int       `form:"offset"`
}

// ToFilter converts request to domain filter.
func (r *RevenueSummaryRequest) ToFilter() reports.RevenueSummaryFilter {
	filter := reports.RevenueSummaryFilter{
		FromDate: r.FromDate,
		ToDate:   r.ToDate,
		GroupBy:  reports.RevenueGroupBy(r.GroupBy),
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
	if r.Currency != "" {
		filter.Currency = &r.Currency
	}
	filter.CustomerIDs = parseIDList(r.CustomerIDs)
	return filter
}

// --- Tax Summary ---

// TaxSummaryRequest contains query parameters for the tax summary.
type TaxSummaryRequest struct {
	FromDate time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate   time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
	Currency string    `form:"currency"`
}

// ToFilter converts request to domain filter.
func (r *TaxSummaryRequest) ToFilter() reports.TaxSummaryFilter {
	filter := reports.TaxSummaryFilter{
		FromDate: r.FromDate,
		ToDate:   r.ToDate,
	}
	if r.Currency != "" {
		filter.Currency = &r.Currency
	}
	return filter
}

// --- Document Journal ---

// DocumentJournalRequest contains query parameters for the journal.
type DocumentJournalRequest struct {
	FromDate       *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate         *time.Time `form:"toDate" time_format:"2006-01-02"`
	DocumentTypes  []string   `form:"documentTypes"`
	Committed      *bool      `form:"committed"`
	NumberContains string     `form:"number"`
	CustomerIDs    []string   `form:"customerIds"`
	SortBy         string     `form:"sortBy"`
	SortOrder      string     `form:"sortOrder"`
	Limit          int        `form:"limit"`
	Offset         int        `form:"offset"`
}

// ToFilter converts request to domain filter.
func (r *DocumentJournalRequest) ToFilter() reports.DocumentJournalFilter {
	return reports.DocumentJournalFilter{
		FromDate:       r.FromDate,
		ToDate:         r.ToDate,
		DocumentTypes:  r.DocumentTypes,
		Committed:      r.Committed,
		NumberContains: r.NumberContains,
		CustomerIDs:    parseIDList(r.CustomerIDs),
		SortBy:         r.SortBy,
		SortOrder:      r.SortOrder,
		Limit:          r.Limit,
		Offset:         r.Offset,
	}
}

// --- Receivables Aging ---

// AgingRequest contains query parameters for the aging report.
type AgingRequest struct {
	AsOf        *time.Time `form:"asOf" time_format:"2006-01-02"`
	CustomerIDs []string   `form:"customerIds"`
	Currency    string     `form:"currency"`
	ExcludeZero bool       `form:"excludeZero"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// ToFilter converts request to domain filter.
func (r *AgingRequest) ToFilter() reports.AgingFilter {
	filter := reports.AgingFilter{
		AsOf:        r.AsOf,
		ExcludeZero: r.ExcludeZero,
		Limit:       r.Limit,
		Offset:      r.Offset,
	}
	if r.Currency != "" {
		filter.Currency = &r.Currency
	}
	filter.CustomerIDs = parseIDList(r.CustomerIDs)
	return filter
}

// parseIDList drops malformed IDs instead of failing the whole request.
func parseIDList(raw []string) []id.ID {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		if parsed, err := id.Parse(s); err == nil {
			ids = append(ids, parsed)
		}
	}
	return ids
}
