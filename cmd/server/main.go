// Package main is the entry point for the facture API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facture/internal/core/security"
	"facture/internal/domain/auth"
	v1 "facture/internal/infrastructure/http/v1"
	"facture/internal/infrastructure/cache"
	"facture/internal/infrastructure/numerator"
	"facture/internal/infrastructure/rates"
	"facture/internal/infrastructure/storage/postgres"
	"facture/internal/infrastructure/storage/postgres/auth_repo"
	"facture/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting facture server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	if minConns := getEnvInt("DB_MIN_CONNS", 0); minConns > 0 {
		poolCfg.MinConns = int32(minConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Schema cache (custom fields, feature flags) ---
	var featureFlags security.FeatureFlagProvider
	schemaCache := cache.NewSchemaCache(pool.Unwrap())
	if err := schemaCache.Start(ctx); err != nil {
		log.Warnw("schema cache unavailable, falling back to in-memory flags", "error", err)
		schemaCache = nil
		featureFlags = security.NewInMemoryFlags()
	} else {
		defer schemaCache.Stop()
		featureFlags = cache.NewCacheBackedFlags(schemaCache)
	}

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Auth Service ---
	// Auth repos resolve their TxManager from the request context.
	userRepo := auth_repo.NewUserRepo()
	roleRepo := auth_repo.NewRoleRepo()
	permRepo := auth_repo.NewPermissionRepo()
	tokenRepo := auth_repo.NewTokenRepo()

	authConfig := auth.DefaultServiceConfig()
	authService := auth.NewService(
		userRepo,
		roleRepo,
		permRepo,
		tokenRepo,
		nil, // TxManager comes from context
		jwtService,
		authConfig,
	)

	// --- Numerator Service ---
	numeratorService := numerator.NewFromContext()

	// --- Exchange rate source ---
	var rateClientOpts []rates.ClientOption
	if baseURL := getEnv("RATES_API_URL", ""); baseURL != "" {
		rateClientOpts = append(rateClientOpts, rates.WithBaseURL(baseURL))
	}
	rateClient := rates.NewClient(log, rateClientOpts...)
	rateSource := rates.NewCachedSource(rateClient, getEnvDuration("RATES_CACHE_TTL", time.Hour))

	// --- Commit policy and rules ---
	commitPolicy := buildCommitPolicy(log)
	commitRules, err := buildCommitRules()
	if err != nil {
		log.Fatalw("failed to compile commit rules", "error", err)
	}

	// --- Metadata Registry ---
	metadataRegistry := setupMetadataRegistry()
	log.Info("metadata registry initialized")

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:                  pool,
		Logger:                log,
		JWTValidator:          jwtService,
		AuthService:           authService,
		Numerator:             numeratorService,
		RateSource:            rateSource,
		CommitPolicy:          commitPolicy,
		CommitRules:           commitRules,
		DefaultOrganizationID: getEnv("DEFAULT_ORGANIZATION_ID", ""),
		IdempotencyEnabled:    getEnv("IDEMPOTENCY_ENABLED", "false") == "true",
		MetadataRegistry:      metadataRegistry,
		FeatureFlags:          featureFlags,
		SchemaCache:           schemaCache,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// buildCommitPolicy resolves the period-closing policy from environment.
// COMMIT_POLICY: open (default), flexible, strict.
// CLOSED_PERIOD_UNTIL: RFC3339 or YYYY-MM-DD date, documents before it are locked.
func buildCommitPolicy(log *logger.Logger) security.CommitPolicy {
	closedUntil := parseEnvDate("CLOSED_PERIOD_UNTIL")

	switch getEnv("COMMIT_POLICY", "open") {
	case "strict":
		return security.NewStrictPolicy(closedUntil)
	case "flexible":
		threshold := getEnvDuration("BACKDATE_WARNING_THRESHOLD", 30*24*time.Hour)
		return security.NewFlexiblePolicy(threshold, closedUntil)
	case "open":
		return security.OpenPolicy{}
	default:
		log.Warnw("unknown COMMIT_POLICY, falling back to open", "value", os.Getenv("COMMIT_POLICY"))
		return security.OpenPolicy{}
	}
}

// buildCommitRules compiles the built-in commit guard expressions.
// COMMIT_RULES_ENABLED=false disables the guard entirely.
func buildCommitRules() (*security.RuleGuard, error) {
	if getEnv("COMMIT_RULES_ENABLED", "true") != "true" {
		return nil, nil
	}

	rules := []security.CommitRule{
		{
			Name:       "backdated_requires_admin",
			Expression: `!backdated || "admin" in roles`,
			Message:    "backdated documents can only be committed by administrators",
		},
		{
			Name:       "number_required",
			Expression: `number != ""`,
			Message:    "document number must be assigned before commit",
		},
	}
	if maxTotal := getEnv("COMMIT_MAX_TOTAL", ""); maxTotal != "" {
		rules = append(rules, security.CommitRule{
			Name:       "total_limit",
			Expression: fmt.Sprintf(`totalAmount <= %s || "admin" in roles`, maxTotal),
			Message:    "document total exceeds the commit limit",
		})
	}

	return security.NewRuleGuard(rules)
}

func parseEnvDate(key string) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
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
