// Package recurring provides the RecurringTemplate service and the
// scheduler entry point used by the worker.
package recurring

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
	"facture/internal/domain/documents/invoice"
	"facture/pkg/logger"
)

const (
	// NumeratorStrategy for template codes; restart gaps are harmless here.
	NumeratorStrategy = numerator.StrategyCached

	// NumberPrefix for generated template numbers, e.g. RT-2026-00007.
	NumberPrefix = "RT"
)

// Service provides business operations for recurring templates.
type Service struct {
	repo      Repository
	invoices  *invoice.Service
	numerator numerator.Generator
	txManager tx.Manager // Optional. If nil, obtained from context.
	hooks     *domain.HookRegistry[*RecurringTemplate]
}

// NewService creates a new recurring template service.
func NewService(
	repo Repository,
	invoices *invoice.Service,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		invoices:  invoices,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*RecurringTemplate](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*RecurringTemplate] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return dbctx.GetTxManager(ctx)
}

// Create creates a new recurring template.
func (s *Service) Create(ctx context.Context, tpl *RecurringTemplate) error {
	if err := s.hooks.RunBeforeCreate(ctx, tpl); err != nil {
		return err
	}

	if err := tpl.Validate(ctx); err != nil {
		return err
	}

	if tpl.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		tpl.Number = number
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, tpl); err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		return s.repo.SaveLines(ctx, tpl.ID, tpl.Lines)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, tpl); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "recurring template created",
		"id", tpl.ID,
		"number", tpl.Number,
		"next_run_at", tpl.NextRunAt)

	return nil
}

// GetByID retrieves a template with lines.
func (s *Service) GetByID(ctx context.Context, tplID id.ID) (*RecurringTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, tplID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, tplID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	tpl.Lines = lines

	return tpl, nil
}

// Update updates a recurring template.
func (s *Service) Update(ctx context.Context, tpl *RecurringTemplate) error {
	if err := s.hooks.RunBeforeUpdate(ctx, tpl); err != nil {
		return err
	}

	if err := tpl.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, tpl); err != nil {
			return fmt.Errorf("update template: %w", err)
		}
		return s.repo.SaveLines(ctx, tpl.ID, tpl.Lines)
	})
}

// Delete soft-deletes a template.
func (s *Service) Delete(ctx context.Context, tplID id.ID) error {
	return s.repo.Delete(ctx, tplID)
}

// SetActive pauses or resumes a template.
func (s *Service) SetActive(ctx context.Context, tplID id.ID, active bool) error {
	tpl, err := s.repo.GetByID(ctx, tplID)
	if err != nil {
		return err
	}
	tpl.Active = active
	tpl.Touch()
	return s.repo.Update(ctx, tpl)
}

// List retrieves templates with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*RecurringTemplate], error) {
	return s.repo.List(ctx, filter)
}

// RunDue materializes every due template into an uncommitted invoice
// and advances its schedule. Each template runs in its own transaction
// so one failure does not block the batch. Returns the number of
// invoices generated.
func (s *Service) RunDue(ctx context.Context, now time.Time, limit int) (int, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	due, err := s.repo.ListDue(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("list due templates: %w", err)
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return 0, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	generated := 0
	for _, tpl := range due {
		lines, err := s.repo.GetLines(ctx, tpl.ID)
		if err != nil {
			logger.Error(ctx, "load template lines failed", "template_id", tpl.ID, "error", err)
			continue
		}
		tpl.Lines = lines

		err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
			inv := tpl.Materialize(now)
			if err := s.invoices.Create(ctx, inv); err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}

			tpl.Advance(now)
			return s.repo.Update(ctx, tpl)
		})
		if err != nil {
			logger.Error(ctx, "materialize template failed",
				"template_id", tpl.ID,
				"number", tpl.Number,
				"error", err)
			continue
		}

		generated++
	}

	if generated > 0 {
		logger.Info(ctx, "recurring run complete",
			"due", len(due),
			"generated", generated)
	}

	return generated, nil
}
