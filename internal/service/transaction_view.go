package service

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
)

// NewTransactionView flattens a ledger transaction for presentation. Amounts
// are rounded to two decimal places.
func NewTransactionView(tx ledger.Transaction) model.TransactionView {
	view := model.TransactionView{
		ID:   tx.TransactionID(),
		Type: string(tx.Kind()),
		Date: tx.TransactionDay().Format("2006-01-02"),
	}

	switch t := tx.(type) {
	case ledger.Buy:
		view.Shares = &t.Shares
		view.Price = amount(t.Price)
		view.Fee = amount(t.Fee)
	case ledger.Sell:
		view.Shares = &t.Shares
		view.Price = amount(t.Price)
		view.Fee = amount(t.Fee)
		view.Tax = amount(t.Tax)
		view.BuyPrice = amount(t.BuyPrice)
		view.Gain = amount(t.Gain())
	case ledger.Dividend:
		view.Shares = &t.Shares
		view.AmountPerShare = amount(t.AmountPerShare)
		view.Tax = amount(t.Tax)
		view.Amount = amount(t.Amount())
	case ledger.Tax:
		view.Amount = amount(t.Amount)
	}
	return view
}

func amount(d decimal.Decimal) *float64 {
	return model.Float(d.Round(2).InexactFloat64())
}
