package portfolio

import (
	"cmp"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// Holding is one stock in the portfolio with its fundamentals and ledger.
type Holding struct {
	Symbol       string
	Name         string
	Sector       string
	CurrentPrice float64
	LastDividend float64

	YearData      map[int]model.StockMetrics
	AggregateData map[int]model.StockAggregate
	Ledger        *ledger.Ledger

	projection ledger.Results
}

// NewHolding returns a holding with an empty ledger and no metrics.
func NewHolding(symbol, name, sector string, currentPrice float64) *Holding {
	return &Holding{
		Symbol:        symbol,
		Name:          name,
		Sector:        sector,
		CurrentPrice:  currentPrice,
		YearData:      make(map[int]model.StockMetrics),
		AggregateData: make(map[int]model.StockAggregate),
		Ledger:        ledger.New(),
	}
}

// Projection returns the most recent sale projection.
func (h *Holding) Projection() ledger.Results {
	return h.projection
}

func (h *Holding) reproject(e ledger.Estimator) {
	h.projection = e.Estimate(
		h.Ledger.Position(),
		decimal.NewFromFloat(h.CurrentPrice),
		decimal.NewFromFloat(h.LastDividend),
	)
}

// Summary returns the list view of the holding.
func (h *Holding) Summary() model.HoldingSummary {
	return model.HoldingSummary{
		Symbol:       h.Symbol,
		Name:         h.Name,
		Sector:       h.Sector,
		CurrentPrice: h.CurrentPrice,
		LastDividend: h.LastDividend,
		Shares:       h.Ledger.Position().Shares,
	}
}

// Snapshot returns the position, results and projection of the holding.
func (h *Holding) Snapshot() model.HoldingSnapshot {
	pos := h.Ledger.Position()
	invested := pos.Invested()
	marketValue := pos.MarketValue(decimal.NewFromFloat(h.CurrentPrice))

	// The ledger keeps the last average after a full sale; with nothing held
	// the view reports none.
	average := pos.AverageBuyPrice
	if pos.Shares == 0 {
		average = decimal.Zero
	}

	var growth *float64
	if invested.IsPositive() {
		g := marketValue.Div(invested).Sub(decimal.NewFromInt(1))
		growth = model.Float(g.Round(4).InexactFloat64())
	}

	return model.HoldingSnapshot{
		Symbol:       h.Symbol,
		Name:         h.Name,
		Sector:       h.Sector,
		CurrentPrice: h.CurrentPrice,
		LastDividend: h.LastDividend,
		Position: model.PositionView{
			Shares:          pos.Shares,
			AverageBuyPrice: money(average),
			Invested:        money(invested),
			MarketValue:     money(marketValue),
			Growth:          growth,
		},
		Results:    resultsView(h.Ledger.Results()),
		Projection: resultsView(h.projection),
	}
}

// YearDataDesc returns the yearly metrics, newest first.
func (h *Holding) YearDataDesc() []model.StockMetrics {
	return sortedDesc(h.YearData, func(m model.StockMetrics) int { return m.Year })
}

// AggregateDataDesc returns the aggregates, newest first.
func (h *Holding) AggregateDataDesc() []model.StockAggregate {
	return sortedDesc(h.AggregateData, func(a model.StockAggregate) int { return a.Year })
}

func sortedDesc[T any](m map[int]T, year func(T) int) []T {
	values := slices.Collect(maps.Values(m))
	slices.SortFunc(values, func(a, b T) int {
		return cmp.Compare(year(b), year(a))
	})
	return values
}

func resultsView(r ledger.Results) model.ResultsView {
	return model.ResultsView{
		Profit:    money(r.Profit()),
		Gains:     money(r.Gains),
		Dividends: money(r.Dividends),
		Fees:      money(r.Fees),
		Taxes:     money(r.Taxes),
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
