package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
)

// Ledger is the ordered transaction history of one holding together with the
// position and results it produces. A Ledger is not safe for concurrent use.
type Ledger struct {
	transactions []Transaction
	position     Position
	results      Results
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Replay builds a ledger by executing txs in order. Derived fields (the buy
// price of a sale, the shares a dividend was paid on) are recomputed from the
// replayed state; identifiers and inputs are kept. Identifiers must be unique.
func Replay(txs []Transaction) (*Ledger, error) {
	l := New()
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		id := tx.TransactionID()
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateTransaction, id)
		}
		seen[id] = true
		if _, err := l.execute(tx); err != nil {
			return nil, fmt.Errorf("replaying transaction %s: %w", tx.TransactionID(), err)
		}
	}
	return l, nil
}

// Position returns the current position.
func (l *Ledger) Position() Position {
	return l.position
}

// Results returns the current realized totals.
func (l *Ledger) Results() Results {
	return l.results
}

// Transactions returns the ledger in insertion order.
func (l *Ledger) Transactions() []Transaction {
	return slices.Clone(l.transactions)
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int {
	return len(l.transactions)
}

// Find returns the transaction with the given identifier.
func (l *Ledger) Find(id string) (Transaction, error) {
	i := l.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, id)
	}
	return l.transactions[i], nil
}

// Buy purchases shares at price and pays fee.
func (l *Ledger) Buy(day time.Time, shares int64, price, fee decimal.Decimal) (Buy, error) {
	tx, err := l.execute(Buy{ID: uuid.NewString(), Day: day, Shares: shares, Price: price, Fee: fee})
	if err != nil {
		return Buy{}, err
	}
	return tx.(Buy), nil
}

// Sell sells shares at price. It fails with ErrInsufficientShares, leaving the
// ledger untouched, when more shares are sold than held.
func (l *Ledger) Sell(day time.Time, shares int64, price, fee, tax decimal.Decimal) (Sell, error) {
	tx, err := l.execute(Sell{ID: uuid.NewString(), Day: day, Shares: shares, Price: price, Fee: fee, Tax: tax})
	if err != nil {
		return Sell{}, err
	}
	return tx.(Sell), nil
}

// Dividend records a dividend of amountPerShare on every share currently held.
func (l *Ledger) Dividend(day time.Time, amountPerShare, tax decimal.Decimal) (Dividend, error) {
	tx, err := l.execute(Dividend{ID: uuid.NewString(), Day: day, AmountPerShare: amountPerShare, Tax: tax})
	if err != nil {
		return Dividend{}, err
	}
	return tx.(Dividend), nil
}

// Tax records a standalone tax payment.
func (l *Ledger) Tax(day time.Time, amount decimal.Decimal) (Tax, error) {
	tx, err := l.execute(Tax{ID: uuid.NewString(), Day: day, Amount: amount})
	if err != nil {
		return Tax{}, err
	}
	return tx.(Tax), nil
}

// Undo removes the transaction with the given identifier and rebuilds the
// position and results by replaying the remaining ledger, so the outcome does
// not depend on which transaction is undone. It fails with ErrUndoConflict
// when a later sale would no longer be covered. On error nothing changes.
func (l *Ledger) Undo(id string) (Transaction, error) {
	i := l.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, id)
	}
	tx := l.transactions[i]

	remaining := slices.Concat(l.transactions[:i], l.transactions[i+1:])
	rebuilt, err := Replay(remaining)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientShares) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUndoConflict, id)
		}
		return nil, err
	}
	*l = *rebuilt
	return tx, nil
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.transactions, func(tx Transaction) bool {
		return tx.TransactionID() == id
	})
}

// execute validates tx against the current state, fills its derived fields and
// applies it.
func (l *Ledger) execute(tx Transaction) (Transaction, error) {
	switch t := tx.(type) {
	case Buy:
		if t.Shares <= 0 {
			return nil, apperrors.ErrInvalidShares
		}
		if err := nonNegative(t.Price, t.Fee); err != nil {
			return nil, err
		}
		t.Day = truncateDay(t.Day)
		l.position.buy(t.Shares, t.Value())
		tx = t
	case Sell:
		if t.Shares <= 0 {
			return nil, apperrors.ErrInvalidShares
		}
		if err := nonNegative(t.Price, t.Fee, t.Tax); err != nil {
			return nil, err
		}
		if t.Shares > l.position.Shares {
			return nil, fmt.Errorf("%w: selling %d, holding %d", apperrors.ErrInsufficientShares, t.Shares, l.position.Shares)
		}
		t.Day = truncateDay(t.Day)
		t.BuyPrice = l.position.AverageBuyPrice
		l.position.Shares -= t.Shares
		tx = t
	case Dividend:
		if err := nonNegative(t.AmountPerShare, t.Tax); err != nil {
			return nil, err
		}
		t.Day = truncateDay(t.Day)
		t.Shares = l.position.Shares
		tx = t
	case Tax:
		if err := nonNegative(t.Amount); err != nil {
			return nil, err
		}
		t.Day = truncateDay(t.Day)
		tx = t
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %T", apperrors.ErrValidation, tx)
	}

	l.results.AddResult(tx.effect())
	l.transactions = append(l.transactions, tx)
	return tx, nil
}

func nonNegative(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s", apperrors.ErrNegativeAmount, v)
		}
	}
	return nil
}
