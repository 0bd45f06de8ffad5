// Package main is the entry point for the Facturo API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"facturo/internal/domain/currency"
	"facturo/internal/domain/invoice"
	"facturo/internal/domain/supplier"
	extractor "facturo/internal/infrastructure/extraction"
	v1 "facturo/internal/infrastructure/http/v1"
	"facturo/internal/infrastructure/storage/blob"
	"facturo/internal/infrastructure/storage/postgres"
	"facturo/pkg/logger"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting facturo server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	currencyRepo := postgres.NewCurrencyRepo(txManager)
	supplierRepo := postgres.NewSupplierRepo(txManager)
	invoiceRepo := postgres.NewInvoiceRepo(txManager)

	// --- Services ---
	currencyService := currency.NewService(currencyRepo, txManager)
	supplierService := supplier.NewService(supplierRepo)
	invoiceService := invoice.NewService(invoiceRepo, currencyService, txManager)

	resolver := supplier.NewResolver(supplierRepo)
	reconciler := invoice.NewReconciler(resolver, currencyService, invoiceRepo, txManager)

	// --- Extraction pipeline ---
	extractorCmd := mustEnv("EXTRACTOR_CMD")
	extractorArgs := splitArgs(getEnv("EXTRACTOR_ARGS", ""))
	extractorTimeout := getEnvDuration("EXTRACTOR_TIMEOUT", 2*time.Minute)
	docExtractor := extractor.NewCommandExtractor(extractorCmd, extractorArgs, extractorTimeout)

	blobs := blob.NewStore(getEnv("UPLOAD_DIR", "./uploads"))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		CurrencyService: currencyService,
		SupplierService: supplierService,
		InvoiceService:  invoiceService,
		Reconciler:      reconciler,
		Extractor:       docExtractor,
		Blobs:           blobs,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
