// Package main provides a CLI tool that creates the database schema and seeds
// the initial currency ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"facturo/internal/core/id"
	"facturo/internal/domain/currency"
	"facturo/internal/infrastructure/storage/postgres"
	"facturo/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		id UUID PRIMARY KEY,
		code CHAR(3) NOT NULL UNIQUE,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL DEFAULT '',
		is_base BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_currencies_single_base
		ON currencies (is_base) WHERE is_base`,

	`CREATE TABLE IF NOT EXISTS exchange_rates (
		id UUID PRIMARY KEY,
		from_currency_id UUID NOT NULL REFERENCES currencies(id) ON DELETE CASCADE,
		to_currency_id UUID NOT NULL REFERENCES currencies(id) ON DELETE CASCADE,
		rate NUMERIC(20, 10) NOT NULL CHECK (rate > 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (from_currency_id, to_currency_id)
	)`,

	`CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		tax_id TEXT UNIQUE,
		email TEXT,
		phone TEXT,
		address TEXT,
		iban TEXT,
		bic TEXT,
		rib TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_suppliers_name ON suppliers (name)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		invoice_number TEXT,
		supplier_id UUID NOT NULL REFERENCES suppliers(id),
		issue_date TIMESTAMPTZ,
		due_date TIMESTAMPTZ,
		total_amount NUMERIC(20, 4),
		currency_id UUID REFERENCES currencies(id),
		total_amount_base NUMERIC(20, 4),
		exchange_rate_used NUMERIC(20, 10),
		status TEXT NOT NULL DEFAULT 'pending',
		payment_terms TEXT,
		notes TEXT,
		original_file_path TEXT,
		extracted_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_invoices_supplier ON invoices (supplier_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status)`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		description TEXT,
		quantity NUMERIC(20, 4),
		unit_price NUMERIC(20, 4),
		total_price NUMERIC(20, 4),
		tax_rate NUMERIC(10, 4),
		tax_amount NUMERIC(20, 4)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items (invoice_id)`,

	`CREATE TABLE IF NOT EXISTS payment_reminders (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		reminder_date TIMESTAMPTZ NOT NULL,
		reminder_type TEXT NOT NULL,
		days_offset INT NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_payment_reminders_invoice ON payment_reminders (invoice_id)`,
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

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

	if err := createSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ready")

	if err := seedCurrencies(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed currencies", "error", err)
	}

	if os.Getenv("SEED_DEMO_RATES") == "true" {
		if err := seedDemoRates(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo rates", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func createSchema(ctx context.Context, pool *postgres.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// seedCurrencies inserts the default ledger: the Tunisian dinar as base plus
// the two most common invoice currencies. Existing rows are left untouched.
func seedCurrencies(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	defaults := []struct {
		code   string
		name   string
		symbol string
		isBase bool
	}{
		{currency.FallbackBaseCode, "Tunisian Dinar", "DT", true},
		{"EUR", "Euro", "€", false},
		{"USD", "US Dollar", "$", false},
	}

	for _, c := range defaults {
		tag, err := pool.Exec(ctx, `
			INSERT INTO currencies (id, code, name, symbol, is_base, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (code) DO NOTHING`,
			id.New(), c.code, c.name, c.symbol, c.isBase, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert currency %s: %w", c.code, err)
		}
		if tag.RowsAffected() > 0 {
			log.Infow("currency seeded", "code", c.code, "is_base", c.isBase)
		}
	}

	return nil
}

// seedDemoRates inserts direct edges into the base currency for local testing.
func seedDemoRates(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	rates := []struct {
		from string
		to   string
		rate decimal.Decimal
	}{
		{"EUR", currency.FallbackBaseCode, decimal.RequireFromString("3.1")},
		{"USD", currency.FallbackBaseCode, decimal.RequireFromString("2.8")},
	}

	for _, r := range rates {
		_, err := pool.Exec(ctx, `
			INSERT INTO exchange_rates (id, from_currency_id, to_currency_id, rate, updated_at)
			SELECT $1, f.id, t.id, $2, $3
			FROM currencies f, currencies t
			WHERE f.code = $4 AND t.code = $5
			ON CONFLICT (from_currency_id, to_currency_id)
			DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`,
			id.New(), r.rate, time.Now().UTC(), r.from, r.to,
		)
		if err != nil {
			return fmt.Errorf("insert rate %s->%s: %w", r.from, r.to, err)
		}
		log.Infow("demo rate seeded", "from", r.from, "to", r.to, "rate", r.rate)
	}

	return nil
}
