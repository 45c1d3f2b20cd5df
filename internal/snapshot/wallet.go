package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
)

const dayLayout = "2006-01-02"

func encodeWallet(txs []ledger.Transaction) (json.RawMessage, error) {
	encoded := make([]json.RawMessage, 0, len(txs))
	for _, tx := range txs {
		raw, err := encodeTransaction(tx)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, raw)
	}
	return newObject(tagWallet).
		Append("transactions", encoded).
		MarshalJSON()
}

func encodeTransaction(tx ledger.Transaction) ([]byte, error) {
	w := newObject(tagTransaction).
		Append("id", tx.TransactionID()).
		Append("transaction", tx.Kind()).
		Append("day", tx.TransactionDay().Format(dayLayout))

	switch t := tx.(type) {
	case ledger.Buy:
		w.Append("shares", t.Shares).
			Decimal("price", t.Price).
			Decimal("fee", t.Fee)
	case ledger.Sell:
		w.Append("shares", t.Shares).
			Decimal("price", t.Price).
			Decimal("fee", t.Fee).
			Decimal("tax", t.Tax).
			Decimal("buy_price", t.BuyPrice)
	case ledger.Dividend:
		w.Decimal("amount_per_share", t.AmountPerShare).
			Append("shares", t.Shares).
			Decimal("tax", t.Tax)
	case ledger.Tax:
		w.Decimal("amount", t.Amount)
	default:
		return nil, fmt.Errorf("unknown transaction type %T", tx)
	}
	return w.MarshalJSON()
}

type walletWire struct {
	Object       string            `json:"object"`
	Transactions []json.RawMessage `json:"transactions"`
}

// transactionWire has the union of all transaction fields.
type transactionWire struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	Kind           ledger.Kind     `json:"transaction"`
	Day            string          `json:"day"`
	Shares         int64           `json:"shares"`
	Price          decimal.Decimal `json:"price"`
	Fee            decimal.Decimal `json:"fee"`
	Tax            decimal.Decimal `json:"tax"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
	Amount         decimal.Decimal `json:"amount"`
}

func decodeWallet(data []byte) (*ledger.Ledger, error) {
	var w walletWire
	if err := unmarshalObject(data, tagWallet, &w, &w.Object); err != nil {
		return nil, err
	}

	txs := make([]ledger.Transaction, 0, len(w.Transactions))
	for _, raw := range w.Transactions {
		tx, err := decodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	l, err := ledger.Replay(txs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDataInconsistency, err)
	}
	return l, nil
}

func decodeTransaction(data []byte) (ledger.Transaction, error) {
	var w transactionWire
	if err := unmarshalObject(data, tagTransaction, &w, &w.Object); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, fmt.Errorf("%w: transaction without id", apperrors.ErrDataInconsistency)
	}
	day, err := time.Parse(dayLayout, w.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s day: %w", apperrors.ErrDataInconsistency, w.ID, err)
	}

	switch w.Kind {
	case ledger.KindBuy:
		return ledger.Buy{ID: w.ID, Day: day, Shares: w.Shares, Price: w.Price, Fee: w.Fee}, nil
	case ledger.KindSell:
		return ledger.Sell{ID: w.ID, Day: day, Shares: w.Shares, Price: w.Price, Fee: w.Fee, Tax: w.Tax, BuyPrice: w.BuyPrice}, nil
	case ledger.KindDividend:
		return ledger.Dividend{ID: w.ID, Day: day, AmountPerShare: w.AmountPerShare, Shares: w.Shares, Tax: w.Tax}, nil
	case ledger.KindTax:
		return ledger.Tax{ID: w.ID, Day: day, Amount: w.Amount}, nil
	default:
		return nil, fmt.Errorf("%w: transaction %s has unknown type %q", apperrors.ErrDataInconsistency, w.ID, w.Kind)
	}
}
