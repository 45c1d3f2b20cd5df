package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockMarketData is a market data provider returning predefined values instead
// of calling Yahoo Finance. It is safe for concurrent use.
type MockMarketData struct {
	mu        sync.Mutex
	prices    map[string]float64
	dividends map[string]float64
	errs      map[string]error
	// QueryCount tracks how many lookups were made
	QueryCount int
}

// NewMockMarketData creates a mock without any configured symbols.
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		prices:    make(map[string]float64),
		dividends: make(map[string]float64),
		errs:      make(map[string]error),
	}
}

// WithPrice configures the price and last dividend returned for symbol.
func (m *MockMarketData) WithPrice(symbol string, price, lastDividend float64) *MockMarketData {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
	m.dividends[symbol] = lastDividend
	return m
}

// WithError configures the mock to fail lookups for symbol.
func (m *MockMarketData) WithError(symbol string, err error) *MockMarketData {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
	return m
}

// Queries returns the number of lookups made so far.
func (m *MockMarketData) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

// CurrentPrice returns the configured price for symbol.
func (m *MockMarketData) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	if err := m.errs[symbol]; err != nil {
		return 0, err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no mock price for %s", symbol)
	}
	return price, nil
}

// LastDividend returns the configured dividend for symbol.
func (m *MockMarketData) LastDividend(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	if err := m.errs[symbol]; err != nil {
		return 0, err
	}
	return m.dividends[symbol], nil
}
