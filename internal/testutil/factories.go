package testutil

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	// Simple creation with defaults
//	h := testutil.NewHolding().Build(t, p)
//
//	// Customized holding
//	h := testutil.NewHolding().
//	    WithSymbol("ANDR").
//	    WithMetrics(testutil.AndritzMetricsList()...).
//	    WithBuy(50, "31.34").
//	    Build(t, p)
type HoldingBuilder struct {
	Symbol       string
	Name         string
	Sector       string
	CurrentPrice float64
	LastDividend float64
	Metrics      []model.StockMetrics
	Buys         []BuyLine
}

// BuyLine is a purchase applied by HoldingBuilder.Build.
type BuyLine struct {
	Shares int64
	Price  decimal.Decimal
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{
		Symbol:       MakeSymbol("TST"),
		Name:         "Test Holding",
		Sector:       "Industrials",
		CurrentPrice: 100,
	}
}

// WithSymbol sets a custom symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom display name.
func (b *HoldingBuilder) WithName(name string) *HoldingBuilder {
	b.Name = name
	return b
}

// WithSector sets a custom sector.
func (b *HoldingBuilder) WithSector(sector string) *HoldingBuilder {
	b.Sector = sector
	return b
}

// WithPrice sets the current price.
func (b *HoldingBuilder) WithPrice(price float64) *HoldingBuilder {
	b.CurrentPrice = price
	return b
}

// WithLastDividend sets the last dividend per share.
func (b *HoldingBuilder) WithLastDividend(dividend float64) *HoldingBuilder {
	b.LastDividend = dividend
	return b
}

// WithMetrics adds yearly metrics; aggregates are recalculated on Build.
func (b *HoldingBuilder) WithMetrics(metrics ...model.StockMetrics) *HoldingBuilder {
	b.Metrics = append(b.Metrics, metrics...)
	return b
}

// WithBuy adds a fee-free purchase.
func (b *HoldingBuilder) WithBuy(shares int64, price string) *HoldingBuilder {
	b.Buys = append(b.Buys, BuyLine{Shares: shares, Price: decimal.RequireFromString(price)})
	return b
}

// Build adds the holding to p and returns it.
func (b *HoldingBuilder) Build(t *testing.T, p *portfolio.Portfolio) *portfolio.Holding {
	t.Helper()

	h, err := p.AddHolding(b.Symbol, b.Name, b.Sector, b.CurrentPrice)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}
	if b.LastDividend != 0 {
		if err := p.UpdateMarketData(b.Symbol, b.CurrentPrice, b.LastDividend); err != nil {
			t.Fatalf("Failed to set test dividend: %v", err)
		}
	}
	if len(b.Metrics) > 0 {
		if err := p.IngestYearMetrics(b.Symbol, b.Metrics...); err != nil {
			t.Fatalf("Failed to ingest test metrics: %v", err)
		}
		if err := p.RecalculateHolding(b.Symbol); err != nil {
			t.Fatalf("Failed to aggregate test metrics: %v", err)
		}
	}
	for _, buy := range b.Buys {
		day := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
		if _, err := p.Buy(b.Symbol, day, buy.Shares, buy.Price, decimal.Zero); err != nil {
			t.Fatalf("Failed to create test buy: %v", err)
		}
	}
	return h
}

// MakeSymbol returns base followed by a random suffix, e.g. "TST-QX3".
func MakeSymbol(base string) string {
	return base + "-" + randomAlphanumeric(3)
}

func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	var sb strings.Builder
	for range length {
		sb.WriteByte(charset[rand.Intn(len(charset))])
	}
	return sb.String()
}
