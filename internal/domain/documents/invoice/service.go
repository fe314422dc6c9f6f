// Package invoice provides the Invoice document service.
package invoice

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
	"facture/pkg/logger"
)

// Service provides business operations for invoice documents.
type Service struct {
	repo         Repository
	commitEngine *commit.Engine
	numerator    numerator.Generator
	txManager    tx.Manager // Optional. If nil, obtained from context.
	hooks        *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	commitEngine *commit.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:         repo,
		commitEngine: commitEngine,
		numerator:    numerator,
		txManager:    txManager,
		hooks:        domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return dbctx.GetTxManager(ctx)
}

func (s *Service) ensureNumber(ctx context.Context, doc *Invoice) error {
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

// Create creates a new invoice document.
func (s *Service) Create(ctx context.Context, doc *Invoice) error {
	// Run before-create hooks (for enrichment, validation, etc.)
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.RecalculateTotals()

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	// Create in transaction
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

	// Run after-create hooks
	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "invoice created",
		"id", doc.ID,
		"number", doc.Number)

	return nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
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

// Update updates an invoice document.
func (s *Service) Update(ctx context.Context, doc *Invoice) error {
	// Run before-update hooks
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	// Check if can modify
	if err := doc.CanModify(); err != nil {
		return err
	}

	doc.RecalculateTotals()

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Update in transaction
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})

	return err
}

// Delete soft-deletes an invoice.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	// Cannot delete committed document
	if doc.Committed {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Commit freezes totals and records the receivable entry.
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

// Void reverses the receivable entry. The invoice keeps its recorded
// totals and number.
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

// CommitAndSave commits an invoice and saves changes atomically.
// Used when creating and committing in one operation.
func (s *Service) CommitAndSave(ctx context.Context, doc *Invoice) error {
	doc.RecalculateTotals()

	// Validate
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		if doc.Version == 1 {
			// New document - create
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		// Existing document - update
		return s.repo.Update(ctx, doc)
	}

	return s.commitEngine.Commit(ctx, doc, save)
}

// Copy duplicates an invoice into a fresh uncommitted document.
func (s *Service) Copy(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	clone := doc.Clone()
	if err := s.Create(ctx, clone); err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice copied",
		"source_id", doc.ID,
		"id", clone.ID,
		"number", clone.Number)

	return clone, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
