// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"facture/internal/core/id"
	"facture/internal/infrastructure/storage/postgres"
	"facture/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed admin user
	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@facture.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	// Create admin user
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminUserID id.ID) error {
	log.Info("seeding demo data...")

	// 1. Seed Currencies
	// USD is the base currency; invoices may be issued in any of these.
	currencies := []struct {
		name          string
		isoCode       string
		symbol        string
		decimalPlaces int
		isBase        bool
	}{
		{"US Dollar", "USD", "$", 2, true},
		{"Euro", "EUR", "€", 2, false},
		{"Pound Sterling", "GBP", "£", 2, false},
		{"Japanese Yen", "JPY", "¥", 0, false},
		{"Swiss Franc", "CHF", "Fr", 2, false},
	}

	currencyIDs := make(map[string]id.ID)

	for _, c := range currencies {
		currID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_currencies (
				id, code, name, iso_code, symbol,
				decimal_places, is_base,
				version, deletion_mark, attributes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, currID, c.isoCode, c.name, c.isoCode, c.symbol, c.decimalPlaces, c.isBase)
		if err != nil {
			log.Warnw("failed to seed currency", "name", c.name, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_currencies WHERE code = $1 AND deletion_mark = FALSE
			`, c.isoCode).Scan(&currID)
			if err != nil {
				log.Warnw("failed to fetch existing currency id", "code", c.isoCode, "error", err)
				continue
			}
		}
		currencyIDs[c.isoCode] = currID
	}

	// 2. Seed Organization (the issuer on generated documents)
	orgID := id.New()
	orgCode := "ORG-001"
	var baseCurrencyValue interface{}
	if baseID, ok := currencyIDs["USD"]; ok {
		baseCurrencyValue = baseID
	}
	commandTag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_organizations (id, code, name, legal_name, base_currency_id, is_default, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $4, $5, true, 1, false, '{}')
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, orgID, orgCode, "Acme Consulting", "Acme Consulting LLC", baseCurrencyValue)
	if err != nil {
		log.Warnw("failed to seed organization", "error", err)
	}

	orgAvailable := err == nil
	if orgAvailable && commandTag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx, `
			SELECT id FROM cat_organizations WHERE code = $1 AND deletion_mark = FALSE
		`, orgCode).Scan(&orgID)
		if err != nil {
			log.Warnw("failed to fetch existing organization", "code", orgCode, "error", err)
			orgAvailable = false
		}
	}

	if orgAvailable && !id.IsNil(adminUserID) && !id.IsNil(orgID) {
		_, orgErr := pool.Pool.Exec(ctx, `
			INSERT INTO user_organizations (user_id, organization_id, is_default)
			VALUES ($1, $2, true)
			ON CONFLICT (user_id, organization_id) DO NOTHING
		`, adminUserID, orgID)
		if orgErr != nil {
			log.Warnw("failed to link admin user to organization", "error", orgErr)
		}
	}

	// 3. Seed Units
	// IDs are captured so products can reference them.
	type unitSeed struct {
		name   string
		symbol string
		uType  string // piece, time, weight, etc.
	}

	units := []unitSeed{
		{"Piece", "pcs", "piece"},
		{"Hour", "h", "time"},
		{"Day", "d", "time"},
		{"Kilogram", "kg", "weight"},
		{"Pack", "pk", "pack"},
	}

	// Map symbol -> UUID for product references
	unitIDs := make(map[string]id.ID)

	for _, u := range units {
		uid := id.New()
		// Try to insert
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_units (id, code, name, symbol, type, is_base, conversion_factor, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, true, 1, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, uid, u.symbol, u.name, u.symbol, u.uType)

		if err != nil {
			log.Warnw("failed to seed unit", "name", u.name, "error", err)
			continue
		}

		// If inserted, use new ID. If conflict, fetch the existing ID.
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_units
				WHERE code = $1 AND deletion_mark = FALSE
			`, u.symbol).Scan(&uid)
			if err != nil {
				log.Warnw("failed to fetch existing unit id", "symbol", u.symbol, "error", err)
				continue
			}
		}

		unitIDs[u.symbol] = uid
	}

	// 4. Seed Customers
	customers := []struct {
		name            string
		kind            string // company, individual
		email           string
		profileCurrency string
		termsDays       int
	}{
		{"Globex Industries", "company", "ap@globex.example", "USD", 30},
		{"Initech GmbH", "company", "billing@initech.example", "EUR", 14},
		{"Stark & Partners", "company", "accounts@stark.example", "GBP", 45},
		{"Jane Cooper", "individual", "jane.cooper@example.com", "USD", 0},
	}

	for i, c := range customers {
		custID := id.New()
		code := fmt.Sprintf("CU-%03d", i+1)
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_customers (id, code, name, kind, email, profile_currency, payment_terms_days, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, custID, code, c.name, c.kind, c.email, c.profileCurrency, c.termsDays)
		if err != nil {
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	// 5. Seed Products
	products := []struct {
		name       string
		sku        string
		kind       string // goods, service
		salePrice  string
		taxRate    string
		unitSymbol string
	}{
		{"Consulting (senior)", "CONS-SR", "service", "180.00", "20", "h"},
		{"Consulting (junior)", "CONS-JR", "service", "95.00", "20", "h"},
		{"On-site workshop day", "WRK-DAY", "service", "1200.00", "20", "d"},
		{"Support retainer", "SUP-RET", "service", "450.00", "20", "pcs"},
		{"USB license dongle", "DNG-001", "goods", "35.00", "20", "pcs"},
		{"Printed manual pack", "MAN-PK", "goods", "18.50", "10", "pk"},
	}

	for i, p := range products {
		prodID := id.New()
		code := fmt.Sprintf("PR-%05d", i+1)

		// Find Unit ID
		unitID, ok := unitIDs[p.unitSymbol]
		if !ok {
			// Fallback to 'pcs' if specific unit not found
			unitID = unitIDs["pcs"]
		}

		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, code, name, kind, sku, sale_price, default_tax_rate, unit_id, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, prodID, code, p.name, p.kind, p.sku, p.salePrice, p.taxRate, unitID)

		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
