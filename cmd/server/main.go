package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lojatax/api/internal/config"
	"github.com/lojatax/api/internal/database"
	apihandlers "github.com/lojatax/api/internal/handlers/api"
	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/middleware"
	"github.com/lojatax/api/internal/observability"
	"github.com/lojatax/api/internal/services/receipt"
	"github.com/lojatax/api/internal/services/report"
	"github.com/lojatax/api/internal/services/settings"
	"github.com/lojatax/api/internal/services/vatreturn"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	businessZone := cfg.BusinessZone()

	// Connect to database
	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	slog.Info("database connected")

	// Run migrations
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations complete")

	observability.Init()

	// Initialize services
	ledgerStore := ledger.NewStore(pool, logger)
	returnSvc := vatreturn.NewService(ledgerStore, cfg.DefaultVATRate, businessZone, logger)
	reportSvc := report.NewService(ledgerStore, businessZone, logger)
	settingsSvc := settings.NewService(pool, settings.Profile{
		Name:        cfg.Business.Name,
		TaxNumber:   cfg.Business.TaxNumber,
		Address:     cfg.Business.Address,
		City:        cfg.Business.City,
		CountryCode: cfg.Business.CountryCode,
		Phone:       cfg.Business.Phone,
	}, logger)
	sequencer := receipt.NewSequencer(receipt.NewPostgresCounterStore(pool), businessZone, logger)

	// Initialize handlers
	filingHandler := apihandlers.NewFilingHandler(returnSvc, settingsSvc, businessZone, logger)
	receiptHandler := apihandlers.NewReceiptHandler(sequencer, ledgerStore, settingsSvc, businessZone, logger)
	reportHandler := apihandlers.NewReportHandler(reportSvc, logger)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Tenant-scoped routes — every business endpoint requires X-Tenant-ID
	tenantMux := http.NewServeMux()
	filingHandler.RegisterRoutes(tenantMux)
	receiptHandler.RegisterRoutes(tenantMux)
	reportHandler.RegisterRoutes(tenantMux)
	mux.Handle("/api/v1/filings/", middleware.Tenant(tenantMux))
	mux.Handle("/api/v1/receipts", middleware.Tenant(tenantMux))
	mux.Handle("/api/v1/receipts/", middleware.Tenant(tenantMux))
	mux.Handle("/api/v1/reports/", middleware.Tenant(tenantMux))

	// Apply global middleware stack
	var chain http.Handler = mux
	chain = middleware.CORS(cfg.BaseURL)(chain)
	chain = middleware.RateLimiter(float64(cfg.RateLimit.RequestsPerMinute)/60, cfg.RateLimit.Burst)(chain)
	chain = middleware.SecurityHeaders(chain)
	chain = middleware.Recover(logger)(chain)
	chain = middleware.RequestLogger(logger)(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
