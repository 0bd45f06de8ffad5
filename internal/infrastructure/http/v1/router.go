// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"facturo/internal/domain/currency"
	"facturo/internal/domain/extraction"
	"facturo/internal/domain/invoice"
	"facturo/internal/domain/supplier"
	"facturo/internal/infrastructure/http/v1/handlers"
	"facturo/internal/infrastructure/http/v1/middleware"
	"facturo/internal/infrastructure/storage/blob"
	"facturo/internal/infrastructure/storage/postgres"
	"facturo/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	CurrencyService *currency.Service
	SupplierService *supplier.Service
	InvoiceService  *invoice.Service
	Reconciler      *invoice.Reconciler

	Extractor extraction.Extractor
	Blobs     *blob.Store
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	currencyHandler := handlers.NewCurrencyHandler(base, cfg.CurrencyService)
	supplierHandler := handlers.NewSupplierHandler(base, cfg.SupplierService)
	invoiceHandler := handlers.NewInvoiceHandler(base, cfg.InvoiceService, cfg.CurrencyService)
	extractHandler := handlers.NewExtractHandler(base, cfg.Extractor, cfg.Blobs, cfg.Reconciler)

	api := router.Group("/api/v1")
	{
		currencies := api.Group("/currencies")
		{
			currencies.GET("", currencyHandler.List)
			currencies.POST("", currencyHandler.Create)
			currencies.POST("/convert", currencyHandler.Convert)
		}

		rates := api.Group("/exchange-rates")
		{
			rates.GET("", currencyHandler.ListRates)
			rates.POST("", currencyHandler.UpsertRate)
			rates.DELETE("/:id", currencyHandler.DeleteRate)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/base-currency", currencyHandler.GetBase)
			settings.PUT("/base-currency", currencyHandler.SetBase)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", supplierHandler.List)
			suppliers.POST("", supplierHandler.Create)
			suppliers.GET("/:id", supplierHandler.Get)
			suppliers.PUT("/:id", supplierHandler.Update)
			suppliers.DELETE("/:id", supplierHandler.Delete)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.List)
			invoices.POST("", invoiceHandler.Create)
			invoices.POST("/extract", extractHandler.Extract)
			invoices.GET("/:id", invoiceHandler.Get)
			invoices.PUT("/:id", invoiceHandler.Update)
			invoices.PATCH("/:id/status", invoiceHandler.UpdateStatus)
			invoices.DELETE("/:id", invoiceHandler.Delete)
		}
	}

	return router
}
