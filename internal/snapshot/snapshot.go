// Package snapshot encodes portfolios to and from their persisted JSON form.
// Every object carries an "object" tag naming its type and year maps use the
// year as a string key.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

const (
	tagPortfolio   = "Portfolio"
	tagStock       = "Stock"
	tagMetrics     = "StockMetrics"
	tagAggregate   = "StockAggregate"
	tagWallet      = "Wallet"
	tagTransaction = "Transaction"
)

// EncodeMetrics encodes a single year of metrics.
func EncodeMetrics(m model.StockMetrics) ([]byte, error) {
	return newObject(tagMetrics).
		Append("year", m.Year).
		Append("market_capitalization", m.MarketCapitalization).
		Append("earnings_per_share", m.EarningsPerShare).
		Append("closing_price", m.ClosingPrice).
		Append("book_value_per_share", m.BookValuePerShare).
		Append("dividend_per_share", m.DividendPerShare).
		MarshalJSON()
}

type metricsWire struct {
	Object               string   `json:"object"`
	Year                 int      `json:"year"`
	MarketCapitalization *float64 `json:"market_capitalization"`
	EarningsPerShare     float64  `json:"earnings_per_share"`
	ClosingPrice         float64  `json:"closing_price"`
	BookValuePerShare    *float64 `json:"book_value_per_share"`
	DividendPerShare     float64  `json:"dividend_per_share"`
}

// DecodeMetrics decodes a single year of metrics.
func DecodeMetrics(data []byte) (model.StockMetrics, error) {
	var w metricsWire
	if err := unmarshalObject(data, tagMetrics, &w, &w.Object); err != nil {
		return model.StockMetrics{}, err
	}
	return model.StockMetrics{
		Year:                 w.Year,
		MarketCapitalization: w.MarketCapitalization,
		EarningsPerShare:     w.EarningsPerShare,
		ClosingPrice:         w.ClosingPrice,
		BookValuePerShare:    w.BookValuePerShare,
		DividendPerShare:     w.DividendPerShare,
	}, nil
}

// EncodeAggregate encodes a single year of aggregates.
func EncodeAggregate(a model.StockAggregate) ([]byte, error) {
	return newObject(tagAggregate).
		Append("year", a.Year).
		Append("earnings_per_share", a.EarningsPerShare).
		Append("pe_ratio", a.PERatio).
		Append("price_per_book_value", a.PricePerBookValue).
		Append("dividends_yield", a.DividendYield).
		Append("growth", a.Growth).
		MarshalJSON()
}

type aggregateWire struct {
	Object            string   `json:"object"`
	Year              int      `json:"year"`
	EarningsPerShare  float64  `json:"earnings_per_share"`
	PERatio           *float64 `json:"pe_ratio"`
	PricePerBookValue *float64 `json:"price_per_book_value"`
	DividendYield     *float64 `json:"dividends_yield"`
	Growth            *float64 `json:"growth"`
}

// DecodeAggregate decodes a single year of aggregates.
func DecodeAggregate(data []byte) (model.StockAggregate, error) {
	var w aggregateWire
	if err := unmarshalObject(data, tagAggregate, &w, &w.Object); err != nil {
		return model.StockAggregate{}, err
	}
	return model.StockAggregate{
		Year:              w.Year,
		EarningsPerShare:  w.EarningsPerShare,
		PERatio:           w.PERatio,
		Growth:            w.Growth,
		PricePerBookValue: w.PricePerBookValue,
		DividendYield:     w.DividendYield,
	}, nil
}

// EncodeStock encodes a holding. The wallet is written only when the ledger
// has transactions.
func EncodeStock(h *portfolio.Holding) ([]byte, error) {
	yearData := make(map[string]json.RawMessage, len(h.YearData))
	for year, m := range h.YearData {
		raw, err := EncodeMetrics(m)
		if err != nil {
			return nil, fmt.Errorf("encoding %s metrics %d: %w", h.Symbol, year, err)
		}
		yearData[strconv.Itoa(year)] = raw
	}

	aggregateData := make(map[string]json.RawMessage, len(h.AggregateData))
	for year, a := range h.AggregateData {
		raw, err := EncodeAggregate(a)
		if err != nil {
			return nil, fmt.Errorf("encoding %s aggregate %d: %w", h.Symbol, year, err)
		}
		aggregateData[strconv.Itoa(year)] = raw
	}

	w := newObject(tagStock).
		Append("symbol", h.Symbol).
		Append("name", h.Name).
		Append("sector", h.Sector).
		Append("current_price", h.CurrentPrice).
		Optional("last_dividend", h.LastDividend).
		Append("year_data", yearData).
		Append("aggregate_data", aggregateData)

	if h.Ledger.Len() > 0 {
		wallet, err := encodeWallet(h.Ledger.Transactions())
		if err != nil {
			return nil, fmt.Errorf("encoding %s wallet: %w", h.Symbol, err)
		}
		w.Append("wallet", wallet)
	}
	return w.MarshalJSON()
}

type stockWire struct {
	Object        string                     `json:"object"`
	Symbol        string                     `json:"symbol"`
	Name          string                     `json:"name"`
	Sector        string                     `json:"sector"`
	CurrentPrice  float64                    `json:"current_price"`
	LastDividend  float64                    `json:"last_dividend"`
	YearData      map[string]json.RawMessage `json:"year_data"`
	AggregateData map[string]json.RawMessage `json:"aggregate_data"`
	Wallet        json.RawMessage            `json:"wallet"`
}

// DecodeStock decodes a holding, replaying its wallet to rebuild the position
// and results.
func DecodeStock(data []byte) (*portfolio.Holding, error) {
	var w stockWire
	if err := unmarshalObject(data, tagStock, &w, &w.Object); err != nil {
		return nil, err
	}

	h := portfolio.NewHolding(w.Symbol, w.Name, w.Sector, w.CurrentPrice)
	h.LastDividend = w.LastDividend

	for key, raw := range w.YearData {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: year key %q of %s", apperrors.ErrDataInconsistency, key, w.Symbol)
		}
		m, err := DecodeMetrics(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s metrics %d: %w", w.Symbol, year, err)
		}
		if m.Year != year {
			return nil, fmt.Errorf("%w: %s metrics for %d stored under key %q", apperrors.ErrDataInconsistency, w.Symbol, m.Year, key)
		}
		h.YearData[year] = m
	}

	for key, raw := range w.AggregateData {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: year key %q of %s", apperrors.ErrDataInconsistency, key, w.Symbol)
		}
		a, err := DecodeAggregate(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s aggregate %d: %w", w.Symbol, year, err)
		}
		if a.Year != year {
			return nil, fmt.Errorf("%w: %s aggregate for %d stored under key %q", apperrors.ErrDataInconsistency, w.Symbol, a.Year, key)
		}
		h.AggregateData[year] = a
	}

	if len(w.Wallet) > 0 && string(w.Wallet) != "null" {
		l, err := decodeWallet(w.Wallet)
		if err != nil {
			return nil, fmt.Errorf("decoding %s wallet: %w", w.Symbol, err)
		}
		h.Ledger = l
	}
	return h, nil
}

// Encode encodes the whole portfolio.
func Encode(p *portfolio.Portfolio) ([]byte, error) {
	stocks := make(map[string]json.RawMessage, p.Len())
	for _, h := range p.Holdings() {
		raw, err := EncodeStock(h)
		if err != nil {
			return nil, err
		}
		stocks[h.Symbol] = raw
	}
	return newObject(tagPortfolio).
		Append("stocks", stocks).
		MarshalJSON()
}

type portfolioWire struct {
	Object string                     `json:"object"`
	Stocks map[string]json.RawMessage `json:"stocks"`
}

// Decode decodes a portfolio created with opts.
func Decode(data []byte, opts ...portfolio.Option) (*portfolio.Portfolio, error) {
	var w portfolioWire
	if err := unmarshalObject(data, tagPortfolio, &w, &w.Object); err != nil {
		return nil, err
	}

	p := portfolio.New(opts...)
	for symbol, raw := range w.Stocks {
		h, err := DecodeStock(raw)
		if err != nil {
			return nil, err
		}
		if h.Symbol != symbol {
			return nil, fmt.Errorf("%w: stock %q stored under key %q", apperrors.ErrDataInconsistency, h.Symbol, symbol)
		}
		if err := p.RestoreHolding(h); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// unmarshalObject decodes data into v and checks the object tag. A missing tag
// is accepted.
func unmarshalObject(data []byte, want string, v any, tag *string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", want, err)
	}
	if *tag != "" && *tag != want {
		return fmt.Errorf("%w: expected %q, got %q", apperrors.ErrUnexpectedObject, want, *tag)
	}
	return nil
}
