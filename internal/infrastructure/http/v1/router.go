// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"facture/internal/core/dbctx"
	"facture/internal/core/id"
	"facture/internal/core/numerator"
	"facture/internal/core/security"
	"facture/internal/domain/audit"
	"facture/internal/domain/auth"
	"facture/internal/domain/catalogs/currency"
	"facture/internal/domain/catalogs/customer"
	"facture/internal/domain/catalogs/organization"
	"facture/internal/domain/catalogs/product"
	"facture/internal/domain/catalogs/unit"
	"facture/internal/domain/commit"
	"facture/internal/domain/documents"
	"facture/internal/domain/documents/estimate"
	"facture/internal/domain/documents/invoice"
	"facture/internal/domain/documents/recurring"
	"facture/internal/domain/draft"
	"facture/internal/domain/fx"
	"facture/internal/domain/registers/receivable"
	"facture/internal/domain/reports"
	"facture/internal/infrastructure/cache"
	"facture/internal/infrastructure/http/v1/handlers"
	"facture/internal/infrastructure/http/v1/middleware"
	"facture/internal/infrastructure/storage/postgres"
	"facture/internal/infrastructure/storage/postgres/catalog_repo"
	"facture/internal/infrastructure/storage/postgres/document_repo"
	"facture/internal/infrastructure/storage/postgres/register_repo"
	"facture/internal/infrastructure/storage/postgres/report_repo"
	"facture/internal/metadata"
	"facture/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// RateSource supplies exchange rates for currency conversion
	RateSource fx.RateSource

	// CommitPolicy guards commit/void against closed periods.
	// Nil means open policy (everything allowed).
	CommitPolicy security.CommitPolicy

	// CommitRules holds CEL-based commit guards, may be nil
	CommitRules *security.RuleGuard

	// DefaultOrganizationID is the organization committed drafts are filed under
	DefaultOrganizationID string

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry

	// FeatureFlags evaluates runtime feature toggles. Optional.
	FeatureFlags security.FeatureFlagProvider

	// SchemaCache serves admin-defined custom field schemas. Optional.
	SchemaCache *cache.SchemaCache
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need database middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints - Database runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.Database(cfg.Pool.Unwrap()))    // 1. Inject DB pool + TxManager
		protected.Use(middleware.Auth(cfg.JWTValidator)) // 2. Validate JWT
		protected.Use(middleware.UserContext())          // 3. Add UserID to context for domain layer

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		// Audit trail is best-effort: without it documents still work,
		// they just leave no history.
		auditService, err := postgres.NewAuditService(nil)
		if err != nil {
			cfg.Logger.Warnw("audit service disabled", "error", err)
			auditService = nil
		}

		// Register entity routes
		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg, auditService)
		registerRegisterRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerAuditRoutes(protected, cfg, auditService)
		registerMetaRoutes(protected, cfg)
	}

	return router
}

// idempotencyMiddleware creates idempotency middleware that uses the pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := dbctx.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.Database(cfg.Pool.Unwrap()))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Database(cfg.Pool.Unwrap()))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Note: Repos and services are created once but TxManager is obtained from context per-request

	// --- CUSTOMERS ---
	{
		repo := catalog_repo.NewCustomerRepo()
		service := customer.NewService(repo, cfg.Numerator)
		handler := handlers.NewCustomerHandler(baseHandler, service)
		group := catalogs.Group("/customers")
		group.GET("/by-email", middleware.RequirePermission("catalog:customer:read"), handler.FindByEmail)
		RegisterCatalogRoutes(group, handler, "catalog:customer")
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo()
		service := product.NewService(repo, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)
		group := catalogs.Group("/products")
		group.GET("/:id/lookup", middleware.RequirePermission("catalog:product:read"), handler.Lookup)
		RegisterCatalogRoutes(group, handler, "catalog:product")
	}

	// --- UNITS ---
	{
		repo := catalog_repo.NewUnitRepo()
		service := unit.NewService(repo, cfg.Numerator)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler, "catalog:unit")
	}

	// --- CURRENCIES ---
	{
		repo := catalog_repo.NewCurrencyRepo()
		service := currency.NewService(repo, cfg.Numerator)
		handler := handlers.NewCurrencyHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/currencies"), handler, "catalog:currency")
	}

	// --- ORGANIZATIONS ---
	{
		repo := catalog_repo.NewOrganizationRepo()
		service := organization.NewService(repo, cfg.Numerator)
		handler := handlers.NewOrganizationHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/organizations"), handler, "catalog:organization")
	}
}

// registerDocumentRoutes registers document and draft endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig, auditService *postgres.AuditService) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// Shared dependencies: the receivables register feeds the commit engine
	receivableRepo := register_repo.NewReceivableRepo()
	receivableService := receivable.NewService(receivableRepo)
	eventSink := postgres.NewDocumentEventSink(postgres.NewOutboxPublisher(nil))
	commitEngine := commit.NewEngine(receivableService, cfg.CommitPolicy, cfg.CommitRules, nil).WithEvents(eventSink)

	invoiceRepo := document_repo.NewInvoiceRepo()
	invoiceService := invoice.NewService(invoiceRepo, commitEngine, cfg.Numerator, nil)

	// Register audit hooks
	invoiceService.Hooks().OnBeforeCreate(func(ctx context.Context, doc *invoice.Invoice) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})
	invoiceService.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *invoice.Invoice) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return nil
	})
	if auditService != nil {
		invoiceService.Hooks().OnAfterCreate(func(ctx context.Context, doc *invoice.Invoice) error {
			_ = auditService.LogChange(ctx, "invoice", doc.ID, postgres.AuditActionCreate, map[string]any{
				"number":      doc.Number,
				"currency":    doc.Currency,
				"totalAmount": doc.TotalAmount,
			})
			return nil
		})
	}

	// --- INVOICE ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, invoiceService, auditService)
		group := docsGroup.Group("/invoice")
		RegisterDocumentRoutes(group, handler, "document:invoice")
	}

	// --- ESTIMATE ---
	{
		repo := document_repo.NewEstimateRepo()
		service := estimate.NewService(repo, invoiceService, commitEngine, cfg.Numerator, nil)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *estimate.Estimate) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *estimate.Estimate) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})
		if auditService != nil {
			service.Hooks().OnAfterCreate(func(ctx context.Context, doc *estimate.Estimate) error {
				_ = auditService.LogChange(ctx, "estimate", doc.ID, postgres.AuditActionCreate, map[string]any{
					"number":      doc.Number,
					"currency":    doc.Currency,
					"totalAmount": doc.TotalAmount,
				})
				return nil
			})
		}

		handler := handlers.NewEstimateHandler(baseHandler, service, auditService)
		group := docsGroup.Group("/estimate")
		group.POST("/:id/convert", middleware.RequirePermission("document:estimate:commit"), handler.Convert)
		RegisterDocumentRoutes(group, handler, "document:estimate")
	}

	// --- RECURRING TEMPLATES ---
	{
		repo := document_repo.NewRecurringRepo()
		service := recurring.NewService(repo, invoiceService, cfg.Numerator, nil)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, tpl *recurring.RecurringTemplate) error {
			audit.EnrichCreatedByDirect(ctx, &tpl.CreatedBy, &tpl.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, tpl *recurring.RecurringTemplate) error {
			audit.EnrichUpdatedByDirect(ctx, &tpl.UpdatedBy)
			return nil
		})

		handler := handlers.NewRecurringHandler(baseHandler, service)
		group := docsGroup.Group("/recurring")
		group.Use(middleware.RequirePermission("document:recurring:write"))
		handler.RegisterRoutes(group)
	}

	// --- DRAFT SESSIONS ---
	{
		customerRepo := catalog_repo.NewCustomerRepo()
		customerService := customer.NewService(customerRepo, cfg.Numerator)
		productService := product.NewService(catalog_repo.NewProductRepo(), cfg.Numerator)
		resolver := documents.NewCurrencyResolver(customerRepo, catalog_repo.NewOrganizationRepo(), catalog_repo.NewCurrencyRepo())

		defaultOrgID := id.Nil()
		if parsed, err := id.Parse(cfg.DefaultOrganizationID); err == nil {
			defaultOrgID = parsed
		}

		engine := fx.NewEngine(cfg.RateSource, cfg.Logger)
		store := draft.NewStore(draft.DefaultSessionTTL)
		persister := invoice.NewDraftPersister(invoiceService, cfg.DefaultOrganizationID)

		handler := handlers.NewDraftHandler(baseHandler, store, engine, invoiceService, customerService, productService, persister, resolver, defaultOrgID)
		group := docsGroup.Group("/drafts")
		group.Use(middleware.RequirePermission("document:invoice:create"))
		handler.RegisterRoutes(group)
	}
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Receivables register
	{
		repo := register_repo.NewReceivableRepo()
		service := receivable.NewService(repo)
		handler := handlers.NewReceivableHandler(baseHandler, service, repo)

		group := registers.Group("/receivables")
		group.Use(middleware.RequirePermission("register:receivable:read"))
		handler.RegisterRoutes(group)
	}
}

// registerAuditRoutes registers audit history endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig, auditService *postgres.AuditService) {
	if auditService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAuditHandler(baseHandler, auditService)

	group := rg.Group("/audit")
	group.Use(middleware.RequirePermission("audit:read"))
	handler.RegisterRoutes(group)
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}

	handler := handlers.NewMetadataHandler(cfg.MetadataRegistry)
	meta := rg.Group("/meta")
	{
		meta.GET("", handler.ListEntities)
		if cfg.FeatureFlags != nil {
			meta.GET("/feature-flags", handlers.FeatureFlagsHandler(cfg.FeatureFlags))
		}
		if cfg.SchemaCache != nil {
			meta.GET("/custom-fields/:entityType", handlers.CustomFieldsHandler(cfg.SchemaCache))
		}
		meta.GET("/:name", handler.GetEntity)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo()
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/revenue-summary", middleware.RequirePermission("report:revenue:read"), reportHandler.GetRevenueSummary)
	reportsGroup.GET("/tax-summary", middleware.RequirePermission("report:tax:read"), reportHandler.GetTaxSummary)
	reportsGroup.GET("/document-journal", middleware.RequirePermission("report:documents:read"), reportHandler.GetDocumentJournal)
	reportsGroup.GET("/receivables-aging", middleware.RequirePermission("report:receivable:read"), reportHandler.GetReceivablesAging)
}
