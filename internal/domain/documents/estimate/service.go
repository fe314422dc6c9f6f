// Package estimate provides the Estimate document service.
package estimate

import (
	"context"
	"fmt"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/dbctx"
	"facture/internal/core/id"
	"facture/internal/core/numerator"
	"facture/internal/core/tx"
	"facture/internal/domain"
	"facture/internal/domain/commit"
	"facture/internal/domain/documents/invoice"
	"facture/pkg/logger"
)

// Service provides business operations for estimate documents.
type Service struct {
	repo         Repository
	invoices     *invoice.Service
	commitEngine *commit.Engine
	numerator    numerator.Generator
	txManager    tx.Manager // Optional. If nil, obtained from context.
	hooks        *domain.HookRegistry[*Estimate]
}

// NewService creates a new estimate service.
func NewService(
	repo Repository,
	invoices *invoice.Service,
	commitEngine *commit.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:         repo,
		invoices:     invoices,
		commitEngine: commitEngine,
		numerator:    numerator,
		txManager:    txManager,
		hooks:        domain.NewHookRegistry[*Estimate](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Estimate] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return dbctx.GetTxManager(ctx)
}

func (s *Service) ensureNumber(ctx context.Context, doc *Estimate) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig(NumberPrefix)
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// Create creates a new estimate document.
func (s *Service) Create(ctx context.Context, doc *Estimate) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "estimate created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves an estimate with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Estimate, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates an estimate document.
func (s *Service) Update(ctx context.Context, doc *Estimate) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes an estimate.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Committed {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Commit freezes the estimate's totals. No register entries are
// produced.
func (s *Service) Commit(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.commitEngine.Commit(ctx, doc, save)
}

// Void releases a committed estimate back to editable state.
func (s *Service) Void(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.commitEngine.Void(ctx, doc, save)
}

// CommitAndSave commits an estimate and saves changes atomically.
// Used when creating and committing in one operation.
func (s *Service) CommitAndSave(ctx context.Context, doc *Estimate) error {
	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		if doc.Version == 1 {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		return s.repo.Update(ctx, doc)
	}

	return s.commitEngine.Commit(ctx, doc, save)
}

// Convert turns an accepted estimate into a new invoice and links the
// two documents. The invoice is created uncommitted so it can still be
// adjusted before billing.
func (s *Service) Convert(ctx context.Context, docID id.ID) (*invoice.Invoice, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.IsExpired() {
		return nil, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Estimate has expired",
		).WithDetail("valid_until", doc.ValidUntil)
	}

	inv, err := doc.ConvertToInvoice()
	if err != nil {
		return nil, err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		doc.AcceptedInvoiceID = &inv.ID
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "estimate converted",
		"estimate_id", doc.ID,
		"invoice_id", inv.ID,
		"invoice_number", inv.Number)

	return inv, nil
}

// List retrieves estimates with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Estimate], error) {
	return s.repo.List(ctx, filter)
}
