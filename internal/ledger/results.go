package ledger

import "github.com/shopspring/decimal"

// Result is a single contribution to the running totals. Zero fields leave the
// corresponding total unchanged.
type Result struct {
	Gain     decimal.Decimal
	Dividend decimal.Decimal
	Fee      decimal.Decimal
	Tax      decimal.Decimal
}

// Results holds the running totals for one holding. AddResult accepts
// negative contributions, so totals are not clamped at zero.
type Results struct {
	Gains     decimal.Decimal
	Dividends decimal.Decimal
	Fees      decimal.Decimal
	Taxes     decimal.Decimal
}

// AddResult increments every total by the matching field of r.
func (r *Results) AddResult(d Result) {
	r.Gains = r.Gains.Add(d.Gain)
	r.Dividends = r.Dividends.Add(d.Dividend)
	r.Fees = r.Fees.Add(d.Fee)
	r.Taxes = r.Taxes.Add(d.Tax)
}

// Profit is gains + dividends − (fees + taxes).
func (r Results) Profit() decimal.Decimal {
	return r.Gains.Add(r.Dividends).Sub(r.Fees.Add(r.Taxes))
}
