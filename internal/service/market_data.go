package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

// refreshConcurrency bounds the number of symbols fetched at once.
const refreshConcurrency = 4

// MarketDataProvider supplies the latest price and dividend of a symbol.
// Stale or unavailable data is reported as an error and never retried here.
type MarketDataProvider interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	LastDividend(ctx context.Context, symbol string) (float64, error)
}

// RefreshResult reports the outcome of a market data refresh.
type RefreshResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed"`
}

// RefreshMarketData fetches prices and dividends for every holding and applies
// them. Fetching happens without holding the lock; a failing symbol keeps its
// previous values and is listed in Failed.
//
// It returns ErrFailedToRefreshMarketData when no provider is configured or
// when every symbol failed.
func (s *PortfolioService) RefreshMarketData(ctx context.Context) (RefreshResult, error) {
	result := RefreshResult{Failed: make(map[string]string)}
	if s.market == nil {
		return result, fmt.Errorf("%w: no market data provider configured", apperrors.ErrFailedToRefreshMarketData)
	}

	var symbols []string
	_ = s.read(func(p *portfolio.Portfolio) error {
		symbols = p.Symbols()
		return nil
	})
	if len(symbols) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	fetched := make(map[string]model.MarketData, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, symbol := range symbols {
		g.Go(func() error {
			data, err := s.fetch(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[symbol] = err.Error()
				return nil
			}
			fetched[symbol] = data
			return nil
		})
	}
	_ = g.Wait()

	err := s.mutate(func(p *portfolio.Portfolio) error {
		for _, symbol := range symbols {
			data, ok := fetched[symbol]
			if !ok {
				continue
			}
			// The holding may have been removed while fetching.
			if err := p.UpdateMarketData(symbol, data.CurrentPrice, data.LastDividend); err != nil {
				result.Failed[symbol] = err.Error()
				continue
			}
			result.Updated = append(result.Updated, symbol)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	for symbol, reason := range result.Failed {
		log.Printf("market data refresh failed for %s: %s", symbol, reason)
	}
	if len(result.Updated) == 0 {
		return result, fmt.Errorf("%w: all %d symbols failed", apperrors.ErrFailedToRefreshMarketData, len(symbols))
	}
	return result, nil
}

func (s *PortfolioService) fetch(ctx context.Context, symbol string) (model.MarketData, error) {
	price, err := s.market.CurrentPrice(ctx, symbol)
	if err != nil {
		return model.MarketData{}, err
	}
	dividend, err := s.market.LastDividend(ctx, symbol)
	if err != nil {
		return model.MarketData{}, err
	}
	return model.MarketData{
		Symbol:       symbol,
		CurrentPrice: price,
		LastDividend: dividend,
		FetchedAt:    time.Now().UTC(),
	}, nil
}
