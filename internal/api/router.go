package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/middleware"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, portfolioService *service.PortfolioService, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			stockHandler := handlers.NewStockHandler(portfolioService)
			transactionHandler := handlers.NewTransactionHandler(portfolioService)

			r.Post("/aggregate", portfolioHandler.RecalculateAggregates)
			r.Post("/refresh", portfolioHandler.RefreshMarketData)
			r.Post("/save", portfolioHandler.Save)
			r.Post("/load", portfolioHandler.Load)

			r.Route("/stock", func(r chi.Router) {
				r.Get("/", stockHandler.Stocks)
				r.Post("/", stockHandler.CreateStock)

				r.Route("/{symbol}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateSymbolMiddleware)
					r.Get("/", stockHandler.GetStock)
					r.Delete("/", stockHandler.DeleteStock)
					r.Get("/year", stockHandler.YearData)
					r.Post("/year", stockHandler.AddYearData)
					r.Get("/aggregate", stockHandler.AggregateData)
					r.Get("/transaction", transactionHandler.Transactions)
					r.Post("/transaction", transactionHandler.CreateTransaction)
					r.With(custommiddleware.ValidateUUIDMiddleware).Delete("/transaction/{uuid}", transactionHandler.UndoTransaction)
				})
			})
		})
	})

	return r
}
