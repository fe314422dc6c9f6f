// Package receivable provides the accounts-receivable accumulation register.
package receivable

import (
	"context"
	"time"

	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
)

// Repository defines operations for the receivables register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during commit)
	CreateMovements(ctx context.Context, movements []entity.ReceivableMovement) error

	// DeleteMovementsByRecorder removes all movements for a document version
	// Used during voiding or re-committing
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.ReceivableMovement, error)

	// Balance operations

	// GetBalance returns current balance for customer+currency
	GetBalance(ctx context.Context, customerID id.ID, currency string) (entity.ReceivableBalance, error)

	// GetBalancesByCustomer returns balances across all currencies for a customer
	GetBalancesByCustomer(ctx context.Context, customerID id.ID) ([]entity.ReceivableBalance, error)

	// ListBalances returns balances matching the filter
	ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.ReceivableBalance, error)

	// GetBalanceAtDate calculates the balance as of a specific date (for reports)
	GetBalanceAtDate(ctx context.Context, customerID id.ID, currency string, date time.Time) (types.Money, error)

	// Reporting

	// GetMovementHistory returns movement history for a customer
	GetMovementHistory(ctx context.Context, customerID id.ID, filter MovementFilter) ([]entity.ReceivableMovement, error)

	// GetTurnover calculates receipt and expense totals for period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)

	// GetOverdue returns movements past their due date and still uncovered
	GetOverdue(ctx context.Context, asOf time.Time, limit int) ([]entity.ReceivableMovement, error)

	// Maintenance

	// RecalculateBalances rebuilds balance table from movements
	RecalculateBalances(ctx context.Context, customerID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	CustomerIDs []id.ID
	Currency    *string
	ExcludeZero bool
	MinAmount   *types.Money
	MaxAmount   *types.Money
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Currency   *string
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	CustomerID *id.ID
	Currency   *string
	FromDate   time.Time
	ToDate     time.Time
}

// Turnover represents receipt/expense totals.
type Turnover struct {
	CustomerID     id.ID       `json:"customerId,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	OpeningBalance types.Money `json:"openingBalance"`
	Receipt        types.Money `json:"receipt"`
	Expense        types.Money `json:"expense"`
	ClosingBalance types.Money `json:"closingBalance"`
}
