package ledger

import "github.com/shopspring/decimal"

var (
	// DefaultTaxRate is the flat long-term capital gains rate.
	DefaultTaxRate = decimal.RequireFromString("0.275")

	// DefaultTransactionFee is the fee assumed for selling a non-empty position.
	DefaultTransactionFee = decimal.RequireFromString("2.50")
)

// Estimator projects the outcome of selling a position at today's price.
type Estimator struct {
	TaxRate        decimal.Decimal
	TransactionFee decimal.Decimal
}

// NewEstimator returns an Estimator using the default tax rate and fee.
func NewEstimator() Estimator {
	return Estimator{
		TaxRate:        DefaultTaxRate,
		TransactionFee: DefaultTransactionFee,
	}
}

// Estimate returns a point-in-time projection for p. Gains holds the unrealized
// appreciation and the other totals hold the tax, dividend and fee the sale
// would incur. The result replaces any earlier projection.
func (e Estimator) Estimate(p Position, currentPrice, lastDividend decimal.Decimal) Results {
	shares := decimal.NewFromInt(p.Shares)
	appreciation := shares.Mul(currentPrice).Sub(shares.Mul(p.AverageBuyPrice))

	fee := decimal.Zero
	if p.Shares > 0 {
		fee = e.TransactionFee
	}

	return Results{
		Gains:     appreciation,
		Dividends: shares.Mul(lastDividend),
		Fees:      fee,
		Taxes:     appreciation.Mul(e.TaxRate),
	}
}
