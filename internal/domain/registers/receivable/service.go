// Package receivable provides the receivables register service.
package receivable

import (
	"context"
	"fmt"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/pkg/logger"
)

// Service provides business operations for the receivables register.
// Transactions are managed by the caller (commit engine).
type Service struct {
	repo Repository
}

// NewService creates a new receivables register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records receivable movements from a document commit.
// This is called during document commit within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Validate movements
	for i, m := range movements {
		if !m.Amount.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: amount must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if m.Currency == "" {
			return apperror.NewValidation(fmt.Sprintf("movement %d: currency is required", i))
		}
	}

	// Create movements (triggers will update balances)
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded receivable movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during voiding).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed receivable movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// GetCustomerBalance returns what a customer owes in one currency.
func (s *Service) GetCustomerBalance(ctx context.Context, customerID id.ID, currency string) (types.Money, error) {
	balance, err := s.repo.GetBalance(ctx, customerID, currency)
	if err != nil {
		if apperror.IsNotFound(err) {
			return types.Zero(), nil
		}
		return types.Zero(), fmt.Errorf("get balance: %w", err)
	}
	return balance.Amount, nil
}

// GetCustomerExposure returns a customer's balances across currencies.
func (s *Service) GetCustomerExposure(ctx context.Context, customerID id.ID) ([]entity.ReceivableBalance, error) {
	return s.repo.GetBalancesByCustomer(ctx, customerID)
}

// ListBalances returns open balances matching the filter.
func (s *Service) ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.ReceivableBalance, error) {
	return s.repo.ListBalances(ctx, filter)
}

// GetMovementHistory returns movement history for a customer.
func (s *Service) GetMovementHistory(ctx context.Context, customerID id.ID, filter MovementFilter) ([]entity.ReceivableMovement, error) {
	return s.repo.GetMovementHistory(ctx, customerID, filter)
}

// GetTurnover generates a turnover report for the period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}

// GetOverdue returns receivables past their due date.
func (s *Service) GetOverdue(ctx context.Context, asOf time.Time, limit int) ([]entity.ReceivableMovement, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return s.repo.GetOverdue(ctx, asOf, limit)
}
