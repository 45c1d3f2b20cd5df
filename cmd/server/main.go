package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/scheduler"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/version"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create repositories
	jsonRepo := repository.NewJSONRepository()
	if cfg.Storage.EncryptionKey != "" {
		jsonRepo, err = repository.NewEncryptedJSONRepository(strings.Split(cfg.Storage.EncryptionKey, ",")...)
		if err != nil {
			log.Fatalf("Failed to configure snapshot encryption: %v", err)
		}
	}
	repo := repository.NewFileRepository(jsonRepo, repository.NewSQLiteRepository())

	estimator := ledger.Estimator{
		TaxRate:        decimal.NewFromFloat(cfg.Projection.TaxRate),
		TransactionFee: decimal.NewFromFloat(cfg.Projection.TransactionFee),
	}

	// Create services
	opts := []service.Option{
		service.WithAutoSave(cfg.Storage.AutoSave),
		service.WithPortfolioOptions(
			portfolio.WithEstimator(estimator),
			portfolio.WithListener(service.LogListener{}),
		),
	}
	if cfg.Market.Enabled {
		opts = append(opts, service.WithMarketData(yahoo.NewFinanceClient(cfg.Market.Timeout)))
	}
	portfolioService := service.NewPortfolioService(repo, cfg.Storage.SnapshotPath, opts...)
	systemService := service.NewSystemService(portfolioService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := portfolioService.Load(ctx); err != nil {
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			log.Fatalf("Failed to load portfolio: %v", err)
		}
		log.Printf("No snapshot at %s, starting with an empty portfolio", cfg.Storage.SnapshotPath)
	} else {
		log.Printf("Loaded %d holdings from %s", len(portfolioService.ListHoldings()), cfg.Storage.SnapshotPath)
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(ctx, portfolioService, 5*time.Minute)
		if err := sched.RegisterAll(cfg.Scheduler.RefreshSpec, cfg.Market.Enabled, true); err != nil {
			log.Fatalf("Failed to register scheduled jobs: %v", err)
		}
		sched.Start()
	}

	// Create router
	router := api.NewRouter(systemService, portfolioService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server %s on %s", version.Version, cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()

	log.Println("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := portfolioService.Save(shutdownCtx); err != nil {
		log.Printf("Final save failed: %v", err)
	}

	log.Println("Server exited")
}
