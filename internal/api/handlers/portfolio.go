package handlers

import (
	"net/http"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio-wide operations.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// StatusResponse is returned by portfolio-wide operations.
type StatusResponse struct {
	Status   string `json:"status"`
	Holdings int    `json:"holdings"`
}

func (h *PortfolioHandler) status(s string) StatusResponse {
	return StatusResponse{Status: s, Holdings: len(h.portfolioService.ListHoldings())}
}

// RecalculateAggregates handles POST requests to rebuild the aggregates of
// every holding.
//
// Endpoint: POST /api/portfolio/aggregate
// Response: 200 OK with StatusResponse
func (h *PortfolioHandler) RecalculateAggregates(w http.ResponseWriter, _ *http.Request) {
	if err := h.portfolioService.RecalculateAggregates(); err != nil {
		respondServiceError(w, err, "failed to recalculate aggregates")
		return
	}

	response.RespondJSON(w, http.StatusOK, h.status("recalculated"))
}

// RefreshMarketData handles POST requests to fetch current prices and
// dividends for every holding.
//
// Endpoint: POST /api/portfolio/refresh
// Response: 200 OK with RefreshResult, including per-symbol failures
// Error: 502 Bad Gateway if no symbol could be refreshed
func (h *PortfolioHandler) RefreshMarketData(w http.ResponseWriter, r *http.Request) {
	result, err := h.portfolioService.RefreshMarketData(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, apperrors.ErrFailedToRefreshMarketData.Error(), result.Failed)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Save handles POST requests to write the portfolio snapshot.
//
// Endpoint: POST /api/portfolio/save
// Response: 200 OK with StatusResponse
// Error: 500 Internal Server Error if writing fails
func (h *PortfolioHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.Save(r.Context()); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSavePortfolio.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.status("saved"))
}

// Load handles POST requests to replace the portfolio with the snapshot. On
// failure the current portfolio is kept.
//
// Endpoint: POST /api/portfolio/load
// Response: 200 OK with StatusResponse
// Error: 404 Not Found if no snapshot exists
// Error: 500 Internal Server Error if the snapshot cannot be read
func (h *PortfolioHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.Load(r.Context()); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToLoadPortfolio.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.status("loaded"))
}
