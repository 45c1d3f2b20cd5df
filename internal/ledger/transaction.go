// Package ledger records the transactions of a single holding and keeps the
// position and realized results derived from them.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the concrete type of a Transaction.
type Kind string

const (
	KindBuy      Kind = "Buy"
	KindSell     Kind = "Sell"
	KindDividend Kind = "Dividend"
	KindTax      Kind = "Tax"
)

// Transaction is an immutable ledger event. The concrete type is always one of
// Buy, Sell, Dividend or Tax.
type Transaction interface {
	TransactionID() string
	TransactionDay() time.Time
	Kind() Kind

	// effect is the contribution this transaction made to the results.
	effect() Result
}

// Buy adds shares to the position at the given price.
type Buy struct {
	ID     string
	Day    time.Time
	Shares int64
	Price  decimal.Decimal
	Fee    decimal.Decimal
}

func (t Buy) TransactionID() string     { return t.ID }
func (t Buy) TransactionDay() time.Time { return t.Day }
func (t Buy) Kind() Kind                { return KindBuy }

// Value is the total paid for the purchase: shares × price + fee.
func (t Buy) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares)).Add(t.Fee)
}

func (t Buy) effect() Result {
	return Result{Fee: t.Fee}
}

// Sell removes shares from the position. BuyPrice is the average buy price in
// effect when the sale was executed.
type Sell struct {
	ID       string
	Day      time.Time
	Shares   int64
	Price    decimal.Decimal
	Fee      decimal.Decimal
	Tax      decimal.Decimal
	BuyPrice decimal.Decimal
}

func (t Sell) TransactionID() string     { return t.ID }
func (t Sell) TransactionDay() time.Time { return t.Day }
func (t Sell) Kind() Kind                { return KindSell }

// Value is shares × price + fee.
func (t Sell) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares)).Add(t.Fee)
}

// Gain is the realized gain relative to the recorded buy price.
func (t Sell) Gain() decimal.Decimal {
	return t.Price.Sub(t.BuyPrice).Mul(decimal.NewFromInt(t.Shares))
}

func (t Sell) effect() Result {
	return Result{Gain: t.Gain(), Fee: t.Fee, Tax: t.Tax}
}

// Dividend is a cash distribution. Shares is the number of shares held on the
// day it was recorded.
type Dividend struct {
	ID             string
	Day            time.Time
	AmountPerShare decimal.Decimal
	Shares         int64
	Tax            decimal.Decimal
}

func (t Dividend) TransactionID() string     { return t.ID }
func (t Dividend) TransactionDay() time.Time { return t.Day }
func (t Dividend) Kind() Kind                { return KindDividend }

// Amount is the gross dividend received.
func (t Dividend) Amount() decimal.Decimal {
	return t.AmountPerShare.Mul(decimal.NewFromInt(t.Shares))
}

func (t Dividend) effect() Result {
	return Result{Dividend: t.Amount(), Tax: t.Tax}
}

// Tax is a standalone tax payment.
type Tax struct {
	ID     string
	Day    time.Time
	Amount decimal.Decimal
}

func (t Tax) TransactionID() string     { return t.ID }
func (t Tax) TransactionDay() time.Time { return t.Day }
func (t Tax) Kind() Kind                { return KindTax }

func (t Tax) effect() Result {
	return Result{Tax: t.Amount}
}

// truncateDay drops the time of day so ledger days compare as calendar dates.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
