package testutil

import (
	"math"
	"testing"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// Tolerance is the precision fundamentals are asserted to.
const Tolerance = 0.01

// AndritzMetrics returns eight years of reported fundamentals for Andritz AG
// (ANDR), with a gap between 2010 and 2016.
func AndritzMetrics() map[int]model.StockMetrics {
	rows := []model.StockMetrics{
		{Year: 2020, MarketCapitalization: model.Float(3.897), EarningsPerShare: 2.08, ClosingPrice: 37.48, BookValuePerShare: model.Float(12.64), DividendPerShare: 1.00},
		{Year: 2019, MarketCapitalization: model.Float(3.993), EarningsPerShare: 1.27, ClosingPrice: 38.40, BookValuePerShare: model.Float(12.05), DividendPerShare: 0.50},
		{Year: 2018, MarketCapitalization: model.Float(4.172), EarningsPerShare: 2.20, ClosingPrice: 40.12, BookValuePerShare: model.Float(13.02), DividendPerShare: 1.55},
		{Year: 2017, MarketCapitalization: model.Float(4.896), EarningsPerShare: 2.58, ClosingPrice: 47.09, BookValuePerShare: model.Float(12.77), DividendPerShare: 1.55},
		{Year: 2016, MarketCapitalization: model.Float(4.960), EarningsPerShare: 2.69, ClosingPrice: 47.70, BookValuePerShare: model.Float(13.00), DividendPerShare: 1.50},
		{Year: 2010, MarketCapitalization: model.Float(3.577), EarningsPerShare: 1.74, ClosingPrice: 19.77, BookValuePerShare: model.Float(7.34), DividendPerShare: 0.85},
		{Year: 2009, MarketCapitalization: model.Float(2.107), EarningsPerShare: 0.96, ClosingPrice: 21.10, BookValuePerShare: model.Float(6.14), DividendPerShare: 0.50},
		{Year: 2008, MarketCapitalization: model.Float(0.944), EarningsPerShare: 1.37, ClosingPrice: 6.63, BookValuePerShare: model.Float(5.30), DividendPerShare: 0.55},
	}
	out := make(map[int]model.StockMetrics, len(rows))
	for _, m := range rows {
		out[m.Year] = m
	}
	return out
}

// AndritzMetricsList returns AndritzMetrics as a slice, newest first.
func AndritzMetricsList() []model.StockMetrics {
	metrics := AndritzMetrics()
	out := make([]model.StockMetrics, 0, len(metrics))
	for _, y := range []int{2020, 2019, 2018, 2017, 2016, 2010, 2009, 2008} {
		out = append(out, metrics[y])
	}
	return out
}

// AssertApprox fails the test when got is not within Tolerance of want.
func AssertApprox(t *testing.T, name string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > Tolerance {
		t.Errorf("Expected %s ≈ %.4f, got %.4f", name, want, got)
	}
}

// AssertApproxPtr is AssertApprox for optional values; a nil got fails.
func AssertApproxPtr(t *testing.T, name string, want float64, got *float64) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected %s ≈ %.4f, got undefined", name, want)
		return
	}
	AssertApprox(t, name, want, *got)
}
