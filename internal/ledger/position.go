package ledger

import "github.com/shopspring/decimal"

// Position is the number of shares held and their weighted average buy price.
// Only Buy changes the average; after a full sale it keeps its last value until
// the next Buy, whose invested base is then zero.
type Position struct {
	Shares          int64
	AverageBuyPrice decimal.Decimal
}

// Invested is the cost basis of the shares currently held.
func (p Position) Invested() decimal.Decimal {
	return p.AverageBuyPrice.Mul(decimal.NewFromInt(p.Shares))
}

// MarketValue values the held shares at price.
func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Shares))
}

func (p *Position) buy(shares int64, value decimal.Decimal) {
	invested := p.Invested()
	p.Shares += shares
	p.AverageBuyPrice = invested.Add(value).Div(decimal.NewFromInt(p.Shares))
}
