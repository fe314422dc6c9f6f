// Package reports provides report generation services.
package reports

import (
	"time"

	"facture/internal/core/id"
	"facture/internal/core/types"
)

// --- Revenue Summary Report ---

// RevenueGroupBy selects the grouping axis of the revenue summary.
type RevenueGroupBy string

const (
	RevenueByMonth    RevenueGroupBy = "month"
	RevenueByCustomer RevenueGroupBy = "customer"
)

// RevenueSummaryFilter defines filter for the revenue summary report.
type RevenueSummaryFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	CustomerIDs []id.ID
	Currency    *string

	// Grouping axis (defaults to month)
	GroupBy RevenueGroupBy

	// Pagination
	Limit  int
	Offset int
}

// RevenueSummaryItem represents a single row in the revenue summary.
type RevenueSummaryItem struct {
	// Period in YYYY-MM form when grouped by month
	Period string `json:"period,omitempty"`

	// Customer info when grouped by customer
	CustomerID   *id.ID `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`

	Currency     string      `json:"currency"`
	InvoiceCount int         `json:"invoiceCount"`
	Subtotal     types.Money `json:"subtotal"`
	TaxTotal     types.Money `json:"taxTotal"`
	Shipping     types.Money `json:"shipping"`
	TotalAmount  types.Money `json:"totalAmount"`
}

// RevenueSummaryReport represents the full revenue summary.
type RevenueSummaryReport struct {
	FromDate   time.Time            `json:"fromDate"`
	ToDate     time.Time            `json:"toDate"`
	Items      []RevenueSummaryItem `json:"items"`
	TotalItems int                  `json:"totalItems"`

	// Summary across all rows (per-currency mixing is the caller's problem;
	// pass a Currency filter for meaningful totals)
	TotalSubtotal types.Money `json:"totalSubtotal"`
	TotalTax      types.Money `json:"totalTax"`
	TotalAmount   types.Money `json:"totalAmount"`
}

// --- Tax Summary Report ---

// TaxSummaryFilter defines filter for the tax summary report.
type TaxSummaryFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	Currency *string
}

// TaxSummaryItem represents collected tax grouped by rate.
type TaxSummaryItem struct {
	TaxRate      types.Money `json:"taxRate"`
	Currency     string      `json:"currency"`
	TaxableBase  types.Money `json:"taxableBase"`
	TaxAmount    types.Money `json:"taxAmount"`
	InvoiceCount int         `json:"invoiceCount"`
}

// TaxSummaryReport represents the full tax summary.
type TaxSummaryReport struct {
	FromDate time.Time        `json:"fromDate"`
	ToDate   time.Time        `json:"toDate"`
	Items    []TaxSummaryItem `json:"items"`

	TotalBase types.Money `json:"totalBase"`
	TotalTax  types.Money `json:"totalTax"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for the document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter ("invoice", "estimate")
	DocumentTypes []string

	// Status filter
	Committed *bool

	// Search by number
	NumberContains string

	// Filters by references
	CustomerIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type", "amount"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Committed    bool      `json:"committed"`

	CustomerID   *id.ID `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`

	TotalAmount types.Money `json:"totalAmount"`
	Currency    string      `json:"currency"`

	Comment      string    `json:"comment,omitempty"`
	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType   string      `json:"documentType"`
	Count          int         `json:"count"`
	CommittedCount int         `json:"committedCount"`
	TotalAmount    types.Money `json:"totalAmount"`
}

// --- Receivables Aging Report ---

// AgingFilter defines filter for the receivables aging report.
type AgingFilter struct {
	// AsOf - report date (defaults to now)
	AsOf *time.Time

	CustomerIDs []id.ID
	Currency    *string

	// Exclude customers with zero open balance
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// AgingRow buckets a customer's open receivables by days past due.
type AgingRow struct {
	CustomerID   id.ID  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Currency     string `json:"currency"`

	Current types.Money `json:"current"` // not yet due
	Days30  types.Money `json:"days30"`  // 1-30 days past due
	Days60  types.Money `json:"days60"`  // 31-60 days past due
	Days90  types.Money `json:"days90"`  // 61-90 days past due
	Older   types.Money `json:"older"`   // over 90 days past due

	Total types.Money `json:"total"`
}

// AgingReport represents the full aging report.
type AgingReport struct {
	AsOf       time.Time  `json:"asOf"`
	Items      []AgingRow `json:"items"`
	TotalItems int        `json:"totalItems"`

	TotalOpen types.Money `json:"totalOpen"`
}
