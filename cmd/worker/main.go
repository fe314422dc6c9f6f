// Package main is the entry point for the facture background worker.
// It generates invoices from recurring templates that are due and runs
// periodic housekeeping (expired sessions, stale idempotency keys).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"facture/internal/core/dbctx"
	"facture/internal/core/security"
	"facture/internal/domain/commit"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/documents/recurring"
	"facture/internal/domain/registers/receivable"
	"facture/internal/infrastructure/numerator"
	"facture/internal/infrastructure/storage/postgres"
	"facture/internal/infrastructure/storage/postgres/document_repo"
	"facture/internal/infrastructure/storage/postgres/register_repo"
	"facture/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting facture worker")

	pool, err := pgxpool.New(ctx, mustEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}

	worker := NewWorker(pool, log)
	worker.pollInterval = getEnvDuration("RECURRING_POLL_INTERVAL", time.Minute)
	worker.batchLimit = getEnvInt("RECURRING_BATCH_LIMIT", 100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs scheduled jobs against the billing database.
type Worker struct {
	pool         *pgxpool.Pool
	txManager    *postgres.TxManager
	recurring    *recurring.Service
	relay        *postgres.OutboxRelay
	log          *logger.Logger
	pollInterval time.Duration
	batchLimit   int
}

func NewWorker(pool *pgxpool.Pool, log *logger.Logger) *Worker {
	txManager := postgres.NewTxManagerFromRawPool(pool)

	// Invoices generated from templates stay as drafts, so the commit
	// engine only needs an open policy here.
	receivableService := receivable.NewService(register_repo.NewReceivableRepo())
	commitEngine := commit.NewEngine(receivableService, security.OpenPolicy{}, nil, txManager)

	numeratorService := numerator.NewFromContext()
	invoiceService := invoice.NewService(document_repo.NewInvoiceRepo(), commitEngine, numeratorService, txManager)
	recurringService := recurring.NewService(document_repo.NewRecurringRepo(), invoiceService, numeratorService, txManager)

	w := &Worker{
		pool:         pool,
		txManager:    txManager,
		recurring:    recurringService,
		log:          log.WithComponent("worker"),
		pollInterval: time.Minute,
		batchLimit:   100,
	}
	w.relay = postgres.NewOutboxRelay(pool, 100, &loggingOutboxHandler{log: w.log})
	return w
}

// loggingOutboxHandler is the default delivery target: it logs the
// event and acknowledges it. Swap in a broker-backed handler when an
// external consumer appears.
type loggingOutboxHandler struct {
	log *logger.Logger
}

func (h *loggingOutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("outbox event",
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"event_type", msg.EventType,
	)
	return nil
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	// Repos resolve their pool and transaction manager from context,
	// same as HTTP requests do.
	ctx = dbctx.WithPool(ctx, w.pool)
	ctx = dbctx.WithTxManager(ctx, w.txManager)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	relayTicker := time.NewTicker(5 * time.Second)
	defer relayTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	w.runDueTemplates(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runDueTemplates(ctx)
		case <-relayTicker.C:
			w.relayOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupSessions(ctx)
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) relayOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox relay failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("relayed outbox batch", "count", processed)
	}
}

func (w *Worker) runDueTemplates(ctx context.Context) {
	generated, err := w.recurring.RunDue(ctx, time.Now().UTC(), w.batchLimit)
	if err != nil {
		w.log.Errorw("recurring run failed", "error", err)
		return
	}
	if generated > 0 {
		w.log.Infow("generated invoices from recurring templates", "count", generated)
	}
}

func (w *Worker) cleanupSessions(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "count", result.RowsAffected())
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
