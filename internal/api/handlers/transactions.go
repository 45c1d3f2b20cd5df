package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
type TransactionHandler struct {
	portfolioService *service.PortfolioService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(portfolioService *service.PortfolioService) *TransactionHandler {
	return &TransactionHandler{
		portfolioService: portfolioService,
	}
}

// Transactions handles GET requests to retrieve the ledger of a holding in
// execution order.
//
// Endpoint: GET /api/portfolio/stock/{symbol}/transaction
// Response: 200 OK with array of TransactionView
// Error: 404 Not Found if the symbol is not held
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.portfolioService.Transactions(chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to execute a Buy, Sell, Dividend or
// Tax transaction.
//
// Endpoint: POST /api/portfolio/stock/{symbol}/transaction
// Request Body: CreateTransactionRequest
// Response: 201 Created with TransactionView
// Error: 400 Bad Request if validation fails or a sale exceeds the held shares
// Error: 404 Not Found if the symbol is not held
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, err, "")
		return
	}

	// Validated above.
	day, _ := time.Parse("2006-01-02", req.Date)

	var view model.TransactionView
	switch req.Type {
	case "Buy":
		view, err = h.portfolioService.Buy(symbol, day, req.Shares, *req.Price, orZero(req.Fee))
	case "Sell":
		view, err = h.portfolioService.Sell(symbol, day, req.Shares, *req.Price, orZero(req.Fee), orZero(req.Tax))
	case "Dividend":
		view, err = h.portfolioService.Dividend(symbol, day, *req.AmountPerShare, orZero(req.Tax))
	case "Tax":
		view, err = h.portfolioService.Tax(symbol, day, *req.Amount)
	}
	if err != nil {
		respondServiceError(w, err, "failed to create transaction")
		return
	}

	response.RespondJSON(w, http.StatusCreated, view)
}

// UndoTransaction handles DELETE requests to undo a transaction.
//
// Endpoint: DELETE /api/portfolio/stock/{symbol}/transaction/{uuid}
// Response: 200 OK with the removed TransactionView
// Error: 400 Bad Request if the ID is invalid (validated by middleware) or
// removing it would oversell a later sale
// Error: 404 Not Found if the symbol or transaction is unknown
func (h *TransactionHandler) UndoTransaction(w http.ResponseWriter, r *http.Request) {
	view, err := h.portfolioService.Undo(chi.URLParam(r, "symbol"), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to undo transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, view)
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
