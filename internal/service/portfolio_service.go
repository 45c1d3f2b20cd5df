package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/repository"
)

// PortfolioService handles portfolio-related business logic operations.
// It owns a single in-memory Portfolio and serializes every operation on it
// with a mutex, so the HTTP handlers and the scheduler can share it.
//
// Persistence goes through a repository.Repository keyed by the configured
// snapshot path. A failed load leaves the current portfolio untouched.
type PortfolioService struct {
	mu        sync.Mutex
	portfolio *portfolio.Portfolio
	opts      []portfolio.Option

	repo         repository.Repository
	snapshotPath string
	autoSave     bool
	market       MarketDataProvider
}

// Option configures a PortfolioService.
type Option func(*PortfolioService)

// WithMarketData sets the provider used by RefreshMarketData.
func WithMarketData(provider MarketDataProvider) Option {
	return func(s *PortfolioService) {
		s.market = provider
	}
}

// WithAutoSave saves the portfolio after every successful mutation.
func WithAutoSave(enabled bool) Option {
	return func(s *PortfolioService) {
		s.autoSave = enabled
	}
}

// WithPortfolioOptions sets the options applied to every portfolio the
// service creates or loads, such as listeners and the projection estimator.
func WithPortfolioOptions(opts ...portfolio.Option) Option {
	return func(s *PortfolioService) {
		s.opts = append(s.opts, opts...)
	}
}

// NewPortfolioService creates a PortfolioService with an empty portfolio.
// Call Load to restore the last snapshot.
func NewPortfolioService(repo repository.Repository, snapshotPath string, opts ...Option) *PortfolioService {
	s := &PortfolioService{
		repo:         repo,
		snapshotPath: snapshotPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.portfolio = portfolio.New(s.opts...)
	return s
}

// SnapshotPath returns the file the portfolio is saved to and loaded from.
func (s *PortfolioService) SnapshotPath() string {
	return s.snapshotPath
}

// read runs fn with the lock held.
func (s *PortfolioService) read(fn func(p *portfolio.Portfolio) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.portfolio)
}

// mutate runs fn with the lock held and autosaves when fn succeeded.
func (s *PortfolioService) mutate(fn func(p *portfolio.Portfolio) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.portfolio); err != nil {
		return err
	}
	if s.autoSave {
		if err := s.repo.Save(context.Background(), s.snapshotPath, s.portfolio); err != nil {
			log.Printf("autosave to %s failed: %v", s.snapshotPath, err)
		}
	}
	return nil
}

// AddHolding creates an empty holding.
func (s *PortfolioService) AddHolding(symbol, name, sector string, currentPrice float64) (model.HoldingSummary, error) {
	var summary model.HoldingSummary
	err := s.mutate(func(p *portfolio.Portfolio) error {
		h, err := p.AddHolding(symbol, name, sector, currentPrice)
		if err != nil {
			return err
		}
		summary = h.Summary()
		return nil
	})
	return summary, err
}

// RemoveHolding deletes a holding and its ledger.
func (s *PortfolioService) RemoveHolding(symbol string) error {
	return s.mutate(func(p *portfolio.Portfolio) error {
		return p.RemoveHolding(symbol)
	})
}

// ListHoldings returns every holding ordered by symbol.
func (s *PortfolioService) ListHoldings() []model.HoldingSummary {
	var out []model.HoldingSummary
	_ = s.read(func(p *portfolio.Portfolio) error {
		out = make([]model.HoldingSummary, 0, p.Len())
		for _, h := range p.Holdings() {
			out = append(out, h.Summary())
		}
		return nil
	})
	return out
}

// GetHolding returns the position, results and projection of symbol.
func (s *PortfolioService) GetHolding(symbol string) (model.HoldingSnapshot, error) {
	var snap model.HoldingSnapshot
	err := s.read(func(p *portfolio.Portfolio) error {
		var err error
		snap, err = p.Snapshot(symbol)
		return err
	})
	return snap, err
}

// IngestYearMetrics stores yearly metrics for symbol and recalculates that
// holding's aggregates.
func (s *PortfolioService) IngestYearMetrics(symbol string, metrics ...model.StockMetrics) error {
	return s.mutate(func(p *portfolio.Portfolio) error {
		if err := p.IngestYearMetrics(symbol, metrics...); err != nil {
			return err
		}
		return p.RecalculateHolding(symbol)
	})
}

// RecalculateAggregates rebuilds the aggregates of every holding.
func (s *PortfolioService) RecalculateAggregates() error {
	return s.mutate(func(p *portfolio.Portfolio) error {
		p.RecalculateAggregates()
		return nil
	})
}

// YearData returns the yearly metrics of symbol, newest first.
func (s *PortfolioService) YearData(symbol string) ([]model.MetricsView, error) {
	var out []model.MetricsView
	err := s.read(func(p *portfolio.Portfolio) error {
		metrics, err := p.YearData(symbol)
		if err != nil {
			return err
		}
		out = make([]model.MetricsView, len(metrics))
		for i, m := range metrics {
			out[i] = model.NewMetricsView(m)
		}
		return nil
	})
	return out, err
}

// AggregateData returns the aggregates of symbol, newest first.
func (s *PortfolioService) AggregateData(symbol string) ([]model.AggregateView, error) {
	var out []model.AggregateView
	err := s.read(func(p *portfolio.Portfolio) error {
		aggregates, err := p.AggregateData(symbol)
		if err != nil {
			return err
		}
		out = make([]model.AggregateView, len(aggregates))
		for i, a := range aggregates {
			out[i] = model.NewAggregateView(a)
		}
		return nil
	})
	return out, err
}

// Transactions returns the ledger of symbol in execution order.
func (s *PortfolioService) Transactions(symbol string) ([]model.TransactionView, error) {
	var out []model.TransactionView
	err := s.read(func(p *portfolio.Portfolio) error {
		txs, err := p.Transactions(symbol)
		if err != nil {
			return err
		}
		out = make([]model.TransactionView, len(txs))
		for i, tx := range txs {
			out[i] = NewTransactionView(tx)
		}
		return nil
	})
	return out, err
}

// Buy records a purchase.
func (s *PortfolioService) Buy(symbol string, day time.Time, shares int64, price, fee decimal.Decimal) (model.TransactionView, error) {
	return s.execute(func(p *portfolio.Portfolio) (ledger.Transaction, error) {
		return p.Buy(symbol, day, shares, price, fee)
	})
}

// Sell records a sale.
func (s *PortfolioService) Sell(symbol string, day time.Time, shares int64, price, fee, tax decimal.Decimal) (model.TransactionView, error) {
	return s.execute(func(p *portfolio.Portfolio) (ledger.Transaction, error) {
		return p.Sell(symbol, day, shares, price, fee, tax)
	})
}

// Dividend records a dividend payment on the shares currently held.
func (s *PortfolioService) Dividend(symbol string, day time.Time, amountPerShare, tax decimal.Decimal) (model.TransactionView, error) {
	return s.execute(func(p *portfolio.Portfolio) (ledger.Transaction, error) {
		return p.Dividend(symbol, day, amountPerShare, tax)
	})
}

// Tax records a standalone tax payment.
func (s *PortfolioService) Tax(symbol string, day time.Time, amount decimal.Decimal) (model.TransactionView, error) {
	return s.execute(func(p *portfolio.Portfolio) (ledger.Transaction, error) {
		return p.Tax(symbol, day, amount)
	})
}

// Undo removes a transaction and reverses its effect.
func (s *PortfolioService) Undo(symbol, transactionID string) (model.TransactionView, error) {
	return s.execute(func(p *portfolio.Portfolio) (ledger.Transaction, error) {
		return p.Undo(symbol, transactionID)
	})
}

func (s *PortfolioService) execute(fn func(p *portfolio.Portfolio) (ledger.Transaction, error)) (model.TransactionView, error) {
	var view model.TransactionView
	err := s.mutate(func(p *portfolio.Portfolio) error {
		tx, err := fn(p)
		if err != nil {
			return err
		}
		view = NewTransactionView(tx)
		return nil
	})
	return view, err
}

// Save writes the portfolio to the snapshot path.
func (s *PortfolioService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, s.snapshotPath, s.portfolio); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToSavePortfolio, err)
	}
	log.Printf("saved %d holdings to %s", s.portfolio.Len(), s.snapshotPath)
	return nil
}

// Load replaces the portfolio with the snapshot at the snapshot path. The
// current portfolio is kept when loading fails.
func (s *PortfolioService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.Load(ctx, s.snapshotPath, s.opts...)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", apperrors.ErrFailedToLoadPortfolio, err)
	}
	s.portfolio = p
	log.Printf("loaded %d holdings from %s", p.Len(), s.snapshotPath)
	return nil
}
