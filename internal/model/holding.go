package model

import "time"

// HoldingSummary is the list view of a holding.
type HoldingSummary struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	CurrentPrice float64 `json:"currentPrice"`
	LastDividend float64 `json:"lastDividend"`
	Shares       int64   `json:"shares"`
}

// PositionView is the presentation form of a position. Growth is
// marketValue/invested − 1 and is undefined while nothing is invested.
type PositionView struct {
	Shares          int64    `json:"shares"`
	AverageBuyPrice float64  `json:"averageBuyPrice"`
	Invested        float64  `json:"invested"`
	MarketValue     float64  `json:"marketValue"`
	Growth          *float64 `json:"growth"`
}

// ResultsView is shared by realized results and the sale projection.
type ResultsView struct {
	Profit    float64 `json:"profit"`
	Gains     float64 `json:"gains"`
	Dividends float64 `json:"dividends"`
	Fees      float64 `json:"fees"`
	Taxes     float64 `json:"taxes"`
}

// HoldingSnapshot is the position/results/projection view of one holding.
// All monetary values are rounded to two decimal places.
type HoldingSnapshot struct {
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	Sector       string       `json:"sector"`
	CurrentPrice float64      `json:"currentPrice"`
	LastDividend float64      `json:"lastDividend"`
	Position     PositionView `json:"position"`
	Results      ResultsView  `json:"results"`
	Projection   ResultsView  `json:"projection"`
}

// TransactionView is the flattened form of a ledger transaction. Fields that do
// not apply to the transaction type are omitted.
type TransactionView struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Date           string   `json:"date"`
	Shares         *int64   `json:"shares,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Fee            *float64 `json:"fee,omitempty"`
	Tax            *float64 `json:"tax,omitempty"`
	BuyPrice       *float64 `json:"buyPrice,omitempty"`
	Gain           *float64 `json:"gain,omitempty"`
	AmountPerShare *float64 `json:"amountPerShare,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
}

// MetricsView is the presentation form of StockMetrics with its derived ratios.
type MetricsView struct {
	Year                 int      `json:"year"`
	MarketCapitalization *float64 `json:"marketCapitalization"`
	EarningsPerShare     float64  `json:"earningsPerShare"`
	ClosingPrice         float64  `json:"closingPrice"`
	BookValuePerShare    *float64 `json:"bookValuePerShare"`
	DividendPerShare     float64  `json:"dividendPerShare"`
	PERatio              *float64 `json:"peRatio"`
	PricePerBookValue    *float64 `json:"pricePerBookValue"`
	DividendYield        *float64 `json:"dividendYield"`
}

// NewMetricsView builds the view for m.
func NewMetricsView(m StockMetrics) MetricsView {
	return MetricsView{
		Year:                 m.Year,
		MarketCapitalization: m.MarketCapitalization,
		EarningsPerShare:     m.EarningsPerShare,
		ClosingPrice:         m.ClosingPrice,
		BookValuePerShare:    m.BookValuePerShare,
		DividendPerShare:     m.DividendPerShare,
		PERatio:              m.PERatio(),
		PricePerBookValue:    m.PricePerBookValue(),
		DividendYield:        m.DividendYield(),
	}
}

// AggregateView is the presentation form of StockAggregate.
type AggregateView struct {
	Year              int      `json:"year"`
	EarningsPerShare  float64  `json:"earningsPerShare"`
	PERatio           *float64 `json:"peRatio"`
	Growth            *float64 `json:"growth"`
	PricePerBookValue *float64 `json:"pricePerBookValue"`
	DividendYield     *float64 `json:"dividendYield"`
	Multiplier        *float64 `json:"multiplier"`
}

// NewAggregateView builds the view for a.
func NewAggregateView(a StockAggregate) AggregateView {
	return AggregateView{
		Year:              a.Year,
		EarningsPerShare:  a.EarningsPerShare,
		PERatio:           a.PERatio,
		Growth:            a.Growth,
		PricePerBookValue: a.PricePerBookValue,
		DividendYield:     a.DividendYield,
		Multiplier:        a.Multiplier(),
	}
}

// MarketData is a price and dividend observation for one symbol.
type MarketData struct {
	Symbol       string
	CurrentPrice float64
	LastDividend float64
	FetchedAt    time.Time
}
