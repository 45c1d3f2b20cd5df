package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/validation"
)

// StockHandler handles HTTP requests for stocks and their fundamentals.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolioService.
type StockHandler struct {
	portfolioService *service.PortfolioService
}

// NewStockHandler creates a new StockHandler with the provided service dependency.
func NewStockHandler(portfolioService *service.PortfolioService) *StockHandler {
	return &StockHandler{
		portfolioService: portfolioService,
	}
}

// Stocks handles GET requests to list every holding.
//
// Endpoint: GET /api/portfolio/stock
// Response: 200 OK with array of HoldingSummary
func (h *StockHandler) Stocks(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.ListHoldings())
}

// CreateStock handles POST requests to add an empty holding.
//
// Endpoint: POST /api/portfolio/stock
// Request Body: CreateStockRequest (symbol, name, sector, currentPrice)
// Response: 201 Created with HoldingSummary
// Error: 400 Bad Request if validation fails or the symbol is already held
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateStock(req); err != nil {
		respondServiceError(w, err, "")
		return
	}

	summary, err := h.portfolioService.AddHolding(strings.TrimSpace(req.Symbol), req.Name, req.Sector, req.CurrentPrice)
	if err != nil {
		respondServiceError(w, err, "failed to create stock")
		return
	}

	response.RespondJSON(w, http.StatusCreated, summary)
}

// GetStock handles GET requests for the position, results and projection of
// a holding.
//
// Endpoint: GET /api/portfolio/stock/{symbol}
// Response: 200 OK with HoldingSnapshot
// Error: 404 Not Found if the symbol is not held
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.portfolioService.GetHolding(chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// DeleteStock handles DELETE requests to remove a holding and its ledger.
//
// Endpoint: DELETE /api/portfolio/stock/{symbol}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the symbol is not held
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.RemoveHolding(chi.URLParam(r, "symbol")); err != nil {
		respondServiceError(w, err, "failed to delete stock")
		return
	}

	response.RespondNoContent(w)
}

// YearData handles GET requests for the yearly metrics of a holding, newest
// first. Undefined ratios are null.
//
// Endpoint: GET /api/portfolio/stock/{symbol}/year
// Response: 200 OK with array of MetricsView
// Error: 404 Not Found if the symbol is not held
func (h *StockHandler) YearData(w http.ResponseWriter, r *http.Request) {
	years, err := h.portfolioService.YearData(chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, years)
}

// AddYearData handles POST requests to store yearly metrics. Existing years
// are replaced and the holding's aggregates are recalculated.
//
// Endpoint: POST /api/portfolio/stock/{symbol}/year
// Request Body: array of YearMetricsRequest
// Response: 200 OK with the recalculated array of AggregateView
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the symbol is not held
func (h *StockHandler) AddYearData(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	reqs, err := parseJSON[[]request.YearMetricsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateYearMetrics(reqs); err != nil {
		respondServiceError(w, err, "")
		return
	}

	metrics := make([]model.StockMetrics, len(reqs))
	for i, req := range reqs {
		metrics[i] = model.StockMetrics{
			Year:                 req.Year,
			MarketCapitalization: req.MarketCapitalization,
			EarningsPerShare:     *req.EarningsPerShare,
			ClosingPrice:         *req.ClosingPrice,
			BookValuePerShare:    req.BookValuePerShare,
			DividendPerShare:     *req.DividendPerShare,
		}
	}

	if err := h.portfolioService.IngestYearMetrics(symbol, metrics...); err != nil {
		respondServiceError(w, err, "failed to store year data")
		return
	}

	aggregates, err := h.portfolioService.AggregateData(symbol)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, aggregates)
}

// AggregateData handles GET requests for the aggregates of a holding, newest
// first. Undefined ratios are null.
//
// Endpoint: GET /api/portfolio/stock/{symbol}/aggregate
// Response: 200 OK with array of AggregateView
// Error: 404 Not Found if the symbol is not held
func (h *StockHandler) AggregateData(w http.ResponseWriter, r *http.Request) {
	aggregates, err := h.portfolioService.AggregateData(chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, aggregates)
}
