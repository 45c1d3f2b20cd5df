// Package portfolio keeps the holdings of one investor and routes every change
// through the ledger and fundamentals packages.
package portfolio

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/fundamentals"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// Portfolio maps symbols to holdings. It performs no I/O and is not safe for
// concurrent use; callers serialize access, typically with one mutex per
// Portfolio.
type Portfolio struct {
	holdings   map[string]*Holding
	aggregator fundamentals.Aggregator
	estimator  ledger.Estimator
	listeners  []Listener
}

// Option configures a Portfolio.
type Option func(*Portfolio)

// WithEstimator sets the estimator used for sale projections.
func WithEstimator(e ledger.Estimator) Option {
	return func(p *Portfolio) {
		p.estimator = e
	}
}

// WithListener subscribes l at construction time.
func WithListener(l Listener) Option {
	return func(p *Portfolio) {
		p.listeners = append(p.listeners, l)
	}
}

// New returns an empty portfolio.
func New(opts ...Option) *Portfolio {
	p := &Portfolio{
		holdings:   make(map[string]*Holding),
		aggregator: fundamentals.NewAggregator(),
		estimator:  ledger.NewEstimator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Portfolio) notify(kind EventKind, symbol, txID string) {
	e := Event{Kind: kind, Symbol: symbol, TransactionID: txID}
	for _, l := range p.listeners {
		l.PortfolioChanged(e)
	}
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	return len(p.holdings)
}

// Symbols returns the held symbols in ascending order.
func (p *Portfolio) Symbols() []string {
	return slices.Sorted(maps.Keys(p.holdings))
}

// Holdings returns the holdings ordered by symbol.
func (p *Portfolio) Holdings() []*Holding {
	out := make([]*Holding, 0, len(p.holdings))
	for _, s := range p.Symbols() {
		out = append(out, p.holdings[s])
	}
	return out
}

// Holding returns the holding for symbol.
func (p *Portfolio) Holding(symbol string) (*Holding, error) {
	h, ok := p.holdings[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrHoldingNotFound, symbol)
	}
	return h, nil
}

// AddHolding adds an empty holding for symbol.
func (p *Portfolio) AddHolding(symbol, name, sector string, currentPrice float64) (*Holding, error) {
	h := NewHolding(strings.TrimSpace(symbol), name, sector, currentPrice)
	if err := p.RestoreHolding(h); err != nil {
		return nil, err
	}
	return h, nil
}

// RestoreHolding inserts a fully built holding, as produced by a snapshot
// decoder. Its aggregates are kept as given.
func (p *Portfolio) RestoreHolding(h *Holding) error {
	if h.Symbol == "" {
		return apperrors.ErrInvalidSymbol
	}
	if _, exists := p.holdings[h.Symbol]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateHolding, h.Symbol)
	}
	if h.CurrentPrice < 0 || h.LastDividend < 0 {
		return fmt.Errorf("%w: price of %s", apperrors.ErrNegativeAmount, h.Symbol)
	}
	if h.YearData == nil {
		h.YearData = make(map[int]model.StockMetrics)
	}
	if h.AggregateData == nil {
		h.AggregateData = make(map[int]model.StockAggregate)
	}
	if h.Ledger == nil {
		h.Ledger = ledger.New()
	}
	h.reproject(p.estimator)
	p.holdings[h.Symbol] = h
	p.notify(EventHoldingAdded, h.Symbol, "")
	return nil
}

// RemoveHolding drops the holding for symbol together with its ledger.
func (p *Portfolio) RemoveHolding(symbol string) error {
	if _, err := p.Holding(symbol); err != nil {
		return err
	}
	delete(p.holdings, symbol)
	p.notify(EventHoldingRemoved, symbol, "")
	return nil
}

// IngestYearMetrics stores metrics for symbol, replacing any existing entry for
// the same year. Aggregates are not touched until the next recalculation.
func (p *Portfolio) IngestYearMetrics(symbol string, metrics ...model.StockMetrics) error {
	h, err := p.Holding(symbol)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if m.Year <= 0 {
			return fmt.Errorf("%w: %d", apperrors.ErrInvalidYear, m.Year)
		}
	}
	for _, m := range metrics {
		h.YearData[m.Year] = m
	}
	p.notify(EventMetricsIngested, symbol, "")
	return nil
}

// RecalculateAggregates rebuilds the aggregates of every holding.
func (p *Portfolio) RecalculateAggregates() {
	for _, h := range p.holdings {
		h.AggregateData = p.aggregator.Aggregate(h.YearData)
	}
	p.notify(EventAggregatesRecalculated, "", "")
}

// RecalculateHolding rebuilds the aggregates of a single holding.
func (p *Portfolio) RecalculateHolding(symbol string) error {
	h, err := p.Holding(symbol)
	if err != nil {
		return err
	}
	h.AggregateData = p.aggregator.Aggregate(h.YearData)
	p.notify(EventAggregatesRecalculated, symbol, "")
	return nil
}

// YearData returns the metrics of symbol ordered by year descending.
func (p *Portfolio) YearData(symbol string) ([]model.StockMetrics, error) {
	h, err := p.Holding(symbol)
	if err != nil {
		return nil, err
	}
	return h.YearDataDesc(), nil
}

// AggregateData returns the aggregates of symbol ordered by year descending.
func (p *Portfolio) AggregateData(symbol string) ([]model.StockAggregate, error) {
	h, err := p.Holding(symbol)
	if err != nil {
		return nil, err
	}
	return h.AggregateDataDesc(), nil
}

// Snapshot returns the position/results/projection view of symbol.
func (p *Portfolio) Snapshot(symbol string) (model.HoldingSnapshot, error) {
	h, err := p.Holding(symbol)
	if err != nil {
		return model.HoldingSnapshot{}, err
	}
	return h.Snapshot(), nil
}

// Transactions returns the ledger of symbol in insertion order.
func (p *Portfolio) Transactions(symbol string) ([]ledger.Transaction, error) {
	h, err := p.Holding(symbol)
	if err != nil {
		return nil, err
	}
	return h.Ledger.Transactions(), nil
}

// UpdateMarketData sets the current price and last dividend of symbol and
// refreshes its projection.
func (p *Portfolio) UpdateMarketData(symbol string, currentPrice, lastDividend float64) error {
	h, err := p.Holding(symbol)
	if err != nil {
		return err
	}
	if currentPrice < 0 || lastDividend < 0 {
		return fmt.Errorf("%w: market data for %s", apperrors.ErrNegativeAmount, symbol)
	}
	h.CurrentPrice = currentPrice
	h.LastDividend = lastDividend
	h.reproject(p.estimator)
	p.notify(EventMarketDataUpdated, symbol, "")
	return nil
}

// Buy records a purchase for symbol.
func (p *Portfolio) Buy(symbol string, day time.Time, shares int64, price, fee decimal.Decimal) (ledger.Buy, error) {
	return execute(p, symbol, func(l *ledger.Ledger) (ledger.Buy, error) {
		return l.Buy(day, shares, price, fee)
	})
}

// Sell records a sale for symbol.
func (p *Portfolio) Sell(symbol string, day time.Time, shares int64, price, fee, tax decimal.Decimal) (ledger.Sell, error) {
	return execute(p, symbol, func(l *ledger.Ledger) (ledger.Sell, error) {
		return l.Sell(day, shares, price, fee, tax)
	})
}

// Dividend records a dividend for symbol.
func (p *Portfolio) Dividend(symbol string, day time.Time, amountPerShare, tax decimal.Decimal) (ledger.Dividend, error) {
	return execute(p, symbol, func(l *ledger.Ledger) (ledger.Dividend, error) {
		return l.Dividend(day, amountPerShare, tax)
	})
}

// Tax records a tax payment for symbol.
func (p *Portfolio) Tax(symbol string, day time.Time, amount decimal.Decimal) (ledger.Tax, error) {
	return execute(p, symbol, func(l *ledger.Ledger) (ledger.Tax, error) {
		return l.Tax(day, amount)
	})
}

// Undo removes a transaction from the ledger of symbol.
func (p *Portfolio) Undo(symbol, transactionID string) (ledger.Transaction, error) {
	h, err := p.Holding(symbol)
	if err != nil {
		return nil, err
	}
	tx, err := h.Ledger.Undo(transactionID)
	if err != nil {
		return nil, err
	}
	h.reproject(p.estimator)
	p.notify(EventTransactionUndone, symbol, transactionID)
	return tx, nil
}

func execute[T ledger.Transaction](p *Portfolio, symbol string, run func(*ledger.Ledger) (T, error)) (T, error) {
	var zero T
	h, err := p.Holding(symbol)
	if err != nil {
		return zero, err
	}
	tx, err := run(h.Ledger)
	if err != nil {
		return zero, err
	}
	h.reproject(p.estimator)
	p.notify(EventTransactionExecuted, symbol, tx.TransactionID())
	return tx, nil
}
