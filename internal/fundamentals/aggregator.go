// Package fundamentals turns yearly stock metrics into trailing averages,
// valuation ratios and a long-horizon earnings growth figure.
package fundamentals

import (
	"maps"
	"slices"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// Aggregator computes StockAggregates from yearly metrics. The zero value is
// not usable; use NewAggregator.
type Aggregator struct {
	// EarningsWindow is the trailing window for EPS and price-to-book averages.
	EarningsWindow int
	// YieldWindow is the trailing window for the dividend yield average.
	YieldWindow int
	// GrowthHorizon is how many years back the growth comparison starts.
	GrowthHorizon int
}

// NewAggregator returns an Aggregator with 3-year earnings, 5-year yield and
// 10-year growth windows.
func NewAggregator() Aggregator {
	return Aggregator{
		EarningsWindow: 3,
		YieldWindow:    5,
		GrowthHorizon:  10,
	}
}

// Window returns the metrics of year and the n−1 years before it that have
// data, most recent first.
func Window(metrics map[int]model.StockMetrics, year, n int) []model.StockMetrics {
	period := make([]model.StockMetrics, 0, n)
	for y := year; y > year-n; y-- {
		if m, ok := metrics[y]; ok {
			period = append(period, m)
		}
	}
	return period
}

// CreateAggregation computes the aggregate for a single year. Growth is left
// undefined; it depends on other years and is set by ApplyGrowth. It returns
// false when there are no metrics for year.
func (a Aggregator) CreateAggregation(metrics map[int]model.StockMetrics, year int) (model.StockAggregate, bool) {
	current, ok := metrics[year]
	if !ok {
		return model.StockAggregate{}, false
	}

	earnings := Window(metrics, year, a.EarningsWindow)
	eps := make([]float64, 0, len(earnings))
	pbv := make([]float64, 0, len(earnings))
	for _, m := range earnings {
		eps = append(eps, m.EarningsPerShare)
		if v := m.PricePerBookValue(); v != nil {
			pbv = append(pbv, *v)
		}
	}

	var yields []float64
	for _, m := range Window(metrics, year, a.YieldWindow) {
		if v := m.DividendYield(); v != nil {
			yields = append(yields, *v)
		}
	}

	// The window always contains year itself, so the EPS mean is defined.
	averageEPS := *mean(eps)

	var pe *float64
	if averageEPS > 0 {
		pe = model.Float(current.ClosingPrice / averageEPS)
	}

	return model.StockAggregate{
		Year:              year,
		EarningsPerShare:  averageEPS,
		PERatio:           pe,
		PricePerBookValue: mean(pbv),
		DividendYield:     mean(yields),
	}, true
}

// Aggregate rebuilds the aggregate of every year in metrics and then runs the
// growth pass. The result depends only on metrics, so repeated calls with the
// same input produce equal maps.
func (a Aggregator) Aggregate(metrics map[int]model.StockMetrics) map[int]model.StockAggregate {
	aggregates := make(map[int]model.StockAggregate, len(metrics))
	for year := range metrics {
		if agg, ok := a.CreateAggregation(metrics, year); ok {
			aggregates[year] = agg
		}
	}
	a.ApplyGrowth(aggregates)
	return aggregates
}

// CompareYear finds the year to measure growth against: the first year with an
// aggregate scanning forward from year−GrowthHorizon, stopping before year.
func (a Aggregator) CompareYear(aggregates map[int]model.StockAggregate, year int) (int, bool) {
	if len(aggregates) == 0 {
		return 0, false
	}
	start := max(year-a.GrowthHorizon, slices.Min(slices.Collect(maps.Keys(aggregates))))
	for y := start; y < year; y++ {
		if _, ok := aggregates[y]; ok {
			return y, true
		}
	}
	return 0, false
}

// ApplyGrowth sets the growth of every aggregate in place. Growth is the ratio
// of average EPS to the comparison year's average EPS, minus one, and is
// undefined unless both are positive.
func (a Aggregator) ApplyGrowth(aggregates map[int]model.StockAggregate) {
	for year, agg := range aggregates {
		agg.Growth = nil
		if compare, ok := a.CompareYear(aggregates, year); ok {
			base := aggregates[compare].EarningsPerShare
			if agg.EarningsPerShare > 0 && base > 0 {
				agg.Growth = model.Float(agg.EarningsPerShare/base - 1)
			}
		}
		aggregates[year] = agg
	}
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return model.Float(sum / float64(len(values)))
}
