package model

// StockMetrics holds the reported fundamentals of a stock for one calendar year.
// MarketCapitalization and BookValuePerShare are optional.
type StockMetrics struct {
	Year                 int
	MarketCapitalization *float64
	EarningsPerShare     float64
	ClosingPrice         float64
	BookValuePerShare    *float64
	DividendPerShare     float64
}

// PERatio is closing price over EPS, undefined unless EPS is positive.
func (m StockMetrics) PERatio() *float64 {
	if m.EarningsPerShare <= 0 {
		return nil
	}
	return Float(m.ClosingPrice / m.EarningsPerShare)
}

// PricePerBookValue is closing price over book value per share, undefined when
// the book value is missing or not positive.
func (m StockMetrics) PricePerBookValue() *float64 {
	if m.BookValuePerShare == nil || *m.BookValuePerShare <= 0 {
		return nil
	}
	return Float(m.ClosingPrice / *m.BookValuePerShare)
}

// DividendYield is dividend per share over closing price. A year without a
// positive closing price has no yield.
func (m StockMetrics) DividendYield() *float64 {
	if m.ClosingPrice <= 0 {
		return nil
	}
	return Float(m.DividendPerShare / m.ClosingPrice)
}

// StockAggregate holds the trailing averages derived for one year. Nil pointers
// mean the value is undefined and must not be read as zero.
type StockAggregate struct {
	Year              int
	EarningsPerShare  float64 // 3-year trailing average
	PERatio           *float64
	Growth            *float64
	PricePerBookValue *float64 // 3-year trailing average
	DividendYield     *float64 // 5-year trailing average
}

// Multiplier is P/E × average P/BV.
func (a StockAggregate) Multiplier() *float64 {
	if a.PERatio == nil || a.PricePerBookValue == nil {
		return nil
	}
	return Float(*a.PERatio * *a.PricePerBookValue)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// EqualFloat reports whether two optional values are both undefined or both
// defined and equal.
func EqualFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Equal compares metrics field by field, treating optional values by content.
func (m StockMetrics) Equal(o StockMetrics) bool {
	return m.Year == o.Year &&
		EqualFloat(m.MarketCapitalization, o.MarketCapitalization) &&
		m.EarningsPerShare == o.EarningsPerShare &&
		m.ClosingPrice == o.ClosingPrice &&
		EqualFloat(m.BookValuePerShare, o.BookValuePerShare) &&
		m.DividendPerShare == o.DividendPerShare
}

// Equal compares aggregates field by field, treating optional values by content.
func (a StockAggregate) Equal(o StockAggregate) bool {
	return a.Year == o.Year &&
		a.EarningsPerShare == o.EarningsPerShare &&
		EqualFloat(a.PERatio, o.PERatio) &&
		EqualFloat(a.Growth, o.Growth) &&
		EqualFloat(a.PricePerBookValue, o.PricePerBookValue) &&
		EqualFloat(a.DividendYield, o.DividendYield)
}
