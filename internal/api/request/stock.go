// Package request holds the JSON request bodies accepted by the API.
package request

import "github.com/shopspring/decimal"

type CreateStockRequest struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	CurrentPrice float64 `json:"currentPrice"`
}

// YearMetricsRequest is one year of reported fundamentals. Market
// capitalization and book value are optional.
type YearMetricsRequest struct {
	Year                 int      `json:"year"`
	MarketCapitalization *float64 `json:"marketCapitalization,omitempty"`
	EarningsPerShare     *float64 `json:"earningsPerShare"`
	ClosingPrice         *float64 `json:"closingPrice"`
	BookValuePerShare    *float64 `json:"bookValuePerShare,omitempty"`
	DividendPerShare     *float64 `json:"dividendPerShare"`
}

// CreateTransactionRequest records a ledger transaction. Which amounts are
// required depends on Type:
//   - Buy: shares, price, optional fee
//   - Sell: shares, price, optional fee and tax
//   - Dividend: amountPerShare, optional tax
//   - Tax: amount
type CreateTransactionRequest struct {
	Type           string           `json:"type"`
	Date           string           `json:"date"`
	Shares         int64            `json:"shares,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Fee            *decimal.Decimal `json:"fee,omitempty"`
	Tax            *decimal.Decimal `json:"tax,omitempty"`
	AmountPerShare *decimal.Decimal `json:"amountPerShare,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
}
