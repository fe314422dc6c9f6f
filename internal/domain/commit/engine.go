// Package commit turns validated documents into recorded facts: it
// marks a document committed, writes its register movements and saves
// it, all in one transaction. Voiding reverses the movements and clears
// the flag while keeping the document's recorded totals intact.
package commit

import (
	"context"
	"fmt"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/dbctx"
	"facture/internal/core/entity"
	"facture/internal/core/id"
	"facture/internal/core/security"
	"facture/internal/core/tx"
	"facture/internal/domain/registers/receivable"
	"facture/pkg/logger"
)

// Committable is a document the engine can commit. entity.Document
// provides most of these; document types add GetDocumentType,
// GenerateMovements and CommitInput.
type Committable interface {
	GetID() id.ID
	GetNumber() string
	GetDate() time.Time
	GetDocumentType() string
	GetCommitVersion() int
	IsCommitted() bool
	CanCommit(ctx context.Context) error
	MarkCommitted()
	MarkVoided()

	// GenerateMovements produces the register entries this commit
	// records. An empty slice is valid (estimates post nothing).
	GenerateMovements(ctx context.Context) ([]entity.ReceivableMovement, error)

	// CommitInput is the snapshot commit rules are evaluated against.
	CommitInput() security.CommitInput
}

// Event describes a committed or voided document for downstream
// consumers (outbox, integrations).
type Event struct {
	DocumentType string
	DocumentID   id.ID
	Number       string
	Kind         string // "committed" or "voided"
}

// EventSink records lifecycle events in the same transaction as the
// commit itself.
type EventSink interface {
	Record(ctx context.Context, event Event) error
}

// Engine commits and voids documents.
type Engine struct {
	receivables *receivable.Service
	policy      security.CommitPolicy
	rules       *security.RuleGuard
	txManager   tx.Manager // Optional. If nil, obtained from context.
	events      EventSink  // Optional.
}

// NewEngine creates a commit engine. rules may be nil when no
// admin-defined guards are configured.
func NewEngine(receivables *receivable.Service, policy security.CommitPolicy, rules *security.RuleGuard, txManager tx.Manager) *Engine {
	if policy == nil {
		policy = security.OpenPolicy{}
	}
	return &Engine{
		receivables: receivables,
		policy:      policy,
		rules:       rules,
		txManager:   txManager,
	}
}

// WithEvents attaches an event sink. Events are recorded inside the
// commit transaction, so they appear if and only if the commit lands.
func (e *Engine) WithEvents(sink EventSink) *Engine {
	e.events = sink
	return e
}

func (e *Engine) recordEvent(ctx context.Context, doc Committable, kind string) error {
	if e.events == nil {
		return nil
	}
	return e.events.Record(ctx, Event{
		DocumentType: doc.GetDocumentType(),
		DocumentID:   doc.GetID(),
		Number:       doc.GetNumber(),
		Kind:         kind,
	})
}

func (e *Engine) getTxManager(ctx context.Context) (tx.Manager, error) {
	if e.txManager != nil {
		return e.txManager, nil
	}
	return dbctx.GetTxManager(ctx)
}

// Commit validates the document against period policy and commit rules,
// marks it committed, records its movements and saves it atomically.
// save must persist the document including the new commit flags.
func (e *Engine) Commit(ctx context.Context, doc Committable, save func(ctx context.Context) error) error {
	if doc.IsCommitted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentCommitted,
			"Document is already committed",
		).WithDetail("document_id", doc.GetID().String())
	}

	if err := e.policy.CanCommit(ctx, doc.GetDate()); err != nil {
		return err
	}
	if e.rules != nil {
		if err := e.rules.Check(ctx, doc.CommitInput()); err != nil {
			return err
		}
	}
	if err := doc.CanCommit(ctx); err != nil {
		return err
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	prevVersion := doc.GetCommitVersion()
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc.MarkCommitted()

		movements, err := doc.GenerateMovements(ctx)
		if err != nil {
			return fmt.Errorf("generate movements: %w", err)
		}

		// Drop entries of older commit iterations before recording.
		if err := e.receivables.ReverseMovements(ctx, doc.GetID(), doc.GetCommitVersion()); err != nil {
			return err
		}
		if err := e.receivables.RecordMovements(ctx, movements); err != nil {
			return err
		}

		if err := save(ctx); err != nil {
			return err
		}

		return e.recordEvent(ctx, doc, "committed")
	})
	if err != nil {
		// The transaction rolled back; undo the in-memory flags too.
		e.restore(doc, prevVersion)
		return err
	}

	logger.Info(ctx, "document committed",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
		"commit_version", doc.GetCommitVersion(),
	)

	return nil
}

// Void reverses a committed document's movements and clears the commit
// flag. The document keeps its frozen totals and number.
func (e *Engine) Void(ctx context.Context, doc Committable, save func(ctx context.Context) error) error {
	if !doc.IsCommitted() {
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"Document is not committed",
		).WithDetail("document_id", doc.GetID().String())
	}

	if err := e.policy.CanVoid(ctx, doc.GetDate()); err != nil {
		return err
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Delete everything up to and including the current iteration.
		if err := e.receivables.ReverseMovements(ctx, doc.GetID(), doc.GetCommitVersion()+1); err != nil {
			return err
		}

		doc.MarkVoided()
		if err := save(ctx); err != nil {
			return err
		}

		return e.recordEvent(ctx, doc, "voided")
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document voided",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
	)

	return nil
}

// ClosedPeriod exposes the policy's closed-period boundary (for APIs).
func (e *Engine) ClosedPeriod(ctx context.Context) time.Time {
	return e.policy.GetClosedPeriod(ctx)
}

func (e *Engine) restore(doc Committable, prevVersion int) {
	// MarkVoided clears the flag; versions only matter for register
	// cleanup, where a rolled-back iteration never reached the tables.
	if doc.IsCommitted() && doc.GetCommitVersion() != prevVersion {
		doc.MarkVoided()
	}
}
