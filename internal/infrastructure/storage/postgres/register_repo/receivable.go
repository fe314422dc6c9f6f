// Package register_repo provides PostgreSQL implementations for register repositories.
// TxManager is obtained from the request context.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain/registers/receivable"
	"facture/internal/infrastructure/storage/postgres"
)

const (
	receivableMovementsTable = "reg_receivable_movements"
	receivableBalancesTable  = "reg_receivable_balances"
)

var receivableMovementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"customer_id", "currency", "amount", "due_date", "created_at",
}

// ReceivableRepo implements receivable.Repository.
type ReceivableRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReceivableRepo creates a new receivables register repository.
func NewReceivableRepo() *ReceivableRepo {
	return &ReceivableRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReceivableRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// CreateMovements batch inserts movements.
func (r *ReceivableRepo) CreateMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.CustomerID, m.Currency, m.Amount, m.DueDate, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, receivableMovementsTable, receivableMovementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateMovements within tx.
	q := r.builder.Insert(receivableMovementsTable).Columns(receivableMovementColumns...)

	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.CustomerID, m.Currency, m.Amount, m.DueDate, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document version.
func (r *ReceivableRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	q := r.builder.Delete(receivableMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *ReceivableRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.ReceivableMovement, error) {
	q := r.builder.Select(receivableMovementColumns...).
		From(receivableMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.ReceivableMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current balance for customer+currency.
func (r *ReceivableRepo) GetBalance(ctx context.Context, customerID id.ID, currency string) (entity.ReceivableBalance, error) {
	var balance entity.ReceivableBalance

	q := r.builder.Select(
		"customer_id", "currency",
		"amount", "last_movement_at", "updated_at",
	).From(receivableBalancesTable).
		Where(squirrel.Eq{
			"customer_id": customerID,
			"currency":    currency,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.ReceivableBalance{
				CustomerID: customerID,
				Currency:   currency,
				Amount:     types.Zero(),
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalancesByCustomer returns balances across all currencies for a customer.
func (r *ReceivableRepo) GetBalancesByCustomer(ctx context.Context, customerID id.ID) ([]entity.ReceivableBalance, error) {
	q := r.builder.Select(
		"customer_id", "currency",
		"amount", "last_movement_at", "updated_at",
	).From(receivableBalancesTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.NotEq{"amount": 0}).
		OrderBy("currency")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.ReceivableBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// ListBalances returns balances matching the filter.
func (r *ReceivableRepo) ListBalances(ctx context.Context, filter receivable.BalanceFilter) ([]entity.ReceivableBalance, error) {
	q := r.builder.Select(
		"customer_id", "currency",
		"amount", "last_movement_at", "updated_at",
	).From(receivableBalancesTable)

	if len(filter.CustomerIDs) > 0 {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerIDs})
	}

	if filter.Currency != nil {
		q = q.Where(squirrel.Eq{"currency": *filter.Currency})
	}

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"amount": 0})
	}

	if filter.MinAmount != nil {
		q = q.Where(squirrel.GtOrEq{"amount": *filter.MinAmount})
	}

	if filter.MaxAmount != nil {
		q = q.Where(squirrel.LtOrEq{"amount": *filter.MaxAmount})
	}

	q = q.OrderBy("customer_id", "currency")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.ReceivableBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates balance as of a specific date.
func (r *ReceivableRepo) GetBalanceAtDate(ctx context.Context, customerID id.ID, currency string, date time.Time) (types.Money, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_receivable_movements
		WHERE customer_id = $1
		  AND currency = $2
		  AND period <= $3
	`

	var balance types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, customerID, currency, date).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("calculate balance at date: %w", err)
	}

	return balance, nil
}

// GetMovementHistory returns movement history for a customer.
func (r *ReceivableRepo) GetMovementHistory(ctx context.Context, customerID id.ID, filter receivable.MovementFilter) ([]entity.ReceivableMovement, error) {
	q := r.builder.Select(receivableMovementColumns...).
		From(receivableMovementsTable).
		Where(squirrel.Eq{"customer_id": customerID})

	if filter.Currency != nil {
		q = q.Where(squirrel.Eq{"currency": *filter.Currency})
	}

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.ReceivableMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates receipt and expense totals for period.
func (r *ReceivableRepo) GetTurnover(ctx context.Context, filter receivable.TurnoverFilter) (receivable.Turnover, error) {
	var result receivable.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	baseConditions := "period >= $1 AND period < $2"
	argIndex := 3

	if filter.CustomerID != nil {
		baseConditions += fmt.Sprintf(" AND customer_id = $%d", argIndex)
		args = append(args, *filter.CustomerID)
		result.CustomerID = *filter.CustomerID
		argIndex++
	}

	if filter.Currency != nil {
		baseConditions += fmt.Sprintf(" AND currency = $%d", argIndex)
		args = append(args, *filter.Currency)
		result.Currency = *filter.Currency
		argIndex++
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE 0 END), 0) as receipt,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN amount ELSE 0 END), 0) as expense
		FROM reg_receivable_movements
		WHERE %s
	`, baseConditions)

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, args...).Scan(&result.Receipt, &result.Expense)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	// Opening balance: everything before the period start.
	openingArgs := []any{filter.FromDate}
	openingConditions := "period < $1"
	argIndex = 2

	if filter.CustomerID != nil {
		openingConditions += fmt.Sprintf(" AND customer_id = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.CustomerID)
		argIndex++
	}

	if filter.Currency != nil {
		openingConditions += fmt.Sprintf(" AND currency = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.Currency)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_receivable_movements
		WHERE %s
	`, openingConditions)

	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&result.OpeningBalance)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}

	result.ClosingBalance = result.OpeningBalance.Add(result.Receipt).Sub(result.Expense)

	return result, nil
}

// GetOverdue returns receipt movements past their due date whose customer
// still carries an open balance in the movement currency.
func (r *ReceivableRepo) GetOverdue(ctx context.Context, asOf time.Time, limit int) ([]entity.ReceivableMovement, error) {
	sql := `
		SELECT m.line_id, m.recorder_id, m.recorder_type, m.recorder_version,
		       m.period, m.record_type,
		       m.customer_id, m.currency, m.amount, m.due_date, m.created_at
		FROM reg_receivable_movements m
		JOIN reg_receivable_balances b
		  ON b.customer_id = m.customer_id AND b.currency = m.currency
		WHERE m.record_type = 'receipt'
		  AND m.due_date < $1
		  AND b.amount > 0
		ORDER BY m.due_date
	`
	args := []any{asOf}
	if limit > 0 {
		sql += " LIMIT $2"
		args = append(args, limit)
	}

	var movements []entity.ReceivableMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select overdue: %w", err)
	}

	return movements, nil
}

// RecalculateBalances rebuilds the balance table from movements.
func (r *ReceivableRepo) RecalculateBalances(ctx context.Context, customerID *id.ID) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM reg_receivable_balances"
	args := []any{}
	if customerID != nil {
		deleteSQL += " WHERE customer_id = $1"
		args = append(args, *customerID)
	}
	if _, err := querier.Exec(ctx, deleteSQL, args...); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}

	rebuildSQL := `
		INSERT INTO reg_receivable_balances (customer_id, currency, amount, last_movement_at, updated_at)
		SELECT customer_id, currency,
		       SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
		       MAX(period),
		       NOW()
		FROM reg_receivable_movements
	`
	if customerID != nil {
		rebuildSQL += " WHERE customer_id = $1"
	}
	rebuildSQL += " GROUP BY customer_id, currency"

	if _, err := querier.Exec(ctx, rebuildSQL, args...); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ receivable.Repository = (*ReceivableRepo)(nil)
