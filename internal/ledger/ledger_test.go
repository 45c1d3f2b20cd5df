package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
)

var day = time.Date(2021, 3, 15, 14, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("Expected %s %s, got %s", name, want, got)
	}
}

func TestLedger_Buy(t *testing.T) {
	t.Run("first buy sets average price including fee", func(t *testing.T) {
		l := New()

		tx, err := l.Buy(day, 10, d("20"), d("5"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if tx.ID == "" {
			t.Error("Expected generated transaction ID")
		}
		if !tx.Day.Equal(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected day truncated to midnight, got %v", tx.Day)
		}
		assertDecimal(t, "value", "205", tx.Value())

		pos := l.Position()
		if pos.Shares != 10 {
			t.Errorf("Expected 10 shares, got %d", pos.Shares)
		}
		assertDecimal(t, "average buy price", "20.5", pos.AverageBuyPrice)
		assertDecimal(t, "fees", "5", l.Results().Fees)
	})

	t.Run("second buy produces weighted average", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 10, d("10"), decimal.Zero)
		_, _ = l.Buy(day, 30, d("20"), decimal.Zero)

		assertDecimal(t, "average buy price", "17.5", l.Position().AverageBuyPrice)
		if l.Position().Shares != 40 {
			t.Errorf("Expected 40 shares, got %d", l.Position().Shares)
		}
	})

	t.Run("rejects non-positive shares", func(t *testing.T) {
		l := New()

		_, err := l.Buy(day, 0, d("10"), decimal.Zero)

		if !errors.Is(err, apperrors.ErrInvalidShares) {
			t.Errorf("Expected ErrInvalidShares, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation category, got %v", err)
		}
		if l.Len() != 0 {
			t.Errorf("Expected empty ledger, got %d transactions", l.Len())
		}
	})

	t.Run("rejects negative price", func(t *testing.T) {
		l := New()

		_, err := l.Buy(day, 5, d("-1"), decimal.Zero)

		if !errors.Is(err, apperrors.ErrNegativeAmount) {
			t.Errorf("Expected ErrNegativeAmount, got %v", err)
		}
	})
}

func TestLedger_Sell(t *testing.T) {
	t.Run("records gain fee and tax without changing average", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 10, d("20"), decimal.Zero)

		tx, err := l.Sell(day, 4, d("25"), d("2"), d("1.5"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		assertDecimal(t, "recorded buy price", "20", tx.BuyPrice)
		assertDecimal(t, "gain", "20", tx.Gain())
		if l.Position().Shares != 6 {
			t.Errorf("Expected 6 shares, got %d", l.Position().Shares)
		}
		assertDecimal(t, "average buy price", "20", l.Position().AverageBuyPrice)

		res := l.Results()
		assertDecimal(t, "gains", "20", res.Gains)
		assertDecimal(t, "fees", "2", res.Fees)
		assertDecimal(t, "taxes", "1.5", res.Taxes)
		assertDecimal(t, "profit", "16.5", res.Profit())
	})

	t.Run("overselling fails and leaves state untouched", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 10, d("20"), d("1"))
		posBefore, resBefore := l.Position(), l.Results()

		_, err := l.Sell(day, 11, d("25"), d("1"), d("1"))

		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
		if l.Position() != posBefore {
			t.Errorf("Expected position %+v, got %+v", posBefore, l.Position())
		}
		if l.Results() != resBefore {
			t.Errorf("Expected results %+v, got %+v", resBefore, l.Results())
		}
		if l.Len() != 1 {
			t.Errorf("Expected 1 transaction, got %d", l.Len())
		}
	})

	t.Run("shares always equal bought minus sold", func(t *testing.T) {
		l := New()
		steps := []struct {
			buy   bool
			count int64
		}{
			{true, 100}, {false, 30}, {true, 15}, {false, 85}, {true, 7}, {false, 2},
		}

		var expected int64
		for _, s := range steps {
			var err error
			if s.buy {
				_, err = l.Buy(day, s.count, d("12.34"), d("1"))
				expected += s.count
			} else {
				before := l.Position().AverageBuyPrice
				_, err = l.Sell(day, s.count, d("15"), d("1"), decimal.Zero)
				expected -= s.count
				assertDecimal(t, "average after sell", before.String(), l.Position().AverageBuyPrice)
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if l.Position().Shares != expected {
				t.Errorf("Expected %d shares, got %d", expected, l.Position().Shares)
			}
		}
	})
}

func TestLedger_DividendAndTax(t *testing.T) {
	l := New()
	_, _ = l.Buy(day, 50, d("31.34"), d("2.5"))

	div, err := l.Dividend(day, d("0.75"), d("9.38"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if div.Shares != 50 {
		t.Errorf("Expected dividend on 50 shares, got %d", div.Shares)
	}
	assertDecimal(t, "dividend amount", "37.5", div.Amount())

	if _, err := l.Tax(day, d("4")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	res := l.Results()
	assertDecimal(t, "dividends", "37.5", res.Dividends)
	assertDecimal(t, "taxes", "13.38", res.Taxes)
	assertDecimal(t, "fees", "2.5", res.Fees)
	if l.Position().Shares != 50 {
		t.Errorf("Expected position unchanged, got %d shares", l.Position().Shares)
	}
}

func TestLedger_Undo(t *testing.T) {
	t.Run("unknown identifier is not found", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 1, d("1"), decimal.Zero)

		_, err := l.Undo("missing")

		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
		if l.Len() != 1 {
			t.Errorf("Expected ledger unchanged, got %d transactions", l.Len())
		}
	})

	t.Run("undoing last buy restores previous average", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 10, d("10"), decimal.Zero)
		b, _ := l.Buy(day, 10, d("20"), d("4"))

		if _, err := l.Undo(b.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if l.Position().Shares != 10 {
			t.Errorf("Expected 10 shares, got %d", l.Position().Shares)
		}
		assertDecimal(t, "average buy price", "10", l.Position().AverageBuyPrice)
		assertDecimal(t, "fees", "0", l.Results().Fees)
	})

	t.Run("undoing last sell restores shares and results", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 10, d("10"), decimal.Zero)
		s, _ := l.Sell(day, 10, d("15"), d("1"), d("2"))

		if _, err := l.Undo(s.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if l.Position().Shares != 10 {
			t.Errorf("Expected 10 shares, got %d", l.Position().Shares)
		}
		res := l.Results()
		for name, v := range map[string]decimal.Decimal{"gains": res.Gains, "fees": res.Fees, "taxes": res.Taxes} {
			if !v.IsZero() {
				t.Errorf("Expected %s 0, got %s", name, v)
			}
		}
	})

	t.Run("lifo undo of every transaction returns to empty state", func(t *testing.T) {
		l := New()
		b1, _ := l.Buy(day, 10, d("10"), d("1"))
		s1, _ := l.Sell(day, 10, d("12"), d("1"), decimal.Zero)
		b2, _ := l.Buy(day, 5, d("30"), d("1"))
		dv, _ := l.Dividend(day, d("1"), d("0.25"))

		for _, id := range []string{dv.ID, b2.ID, s1.ID} {
			if _, err := l.Undo(id); err != nil {
				t.Fatalf("Undo %s: %v", id, err)
			}
		}
		if l.Position().Shares != 10 {
			t.Errorf("Expected 10 shares after undoing the sale, got %d", l.Position().Shares)
		}
		assertDecimal(t, "average buy price", "10.1", l.Position().AverageBuyPrice)

		if _, err := l.Undo(b1.ID); err != nil {
			t.Fatalf("Undo first buy: %v", err)
		}
		if l.Position().Shares != 0 || l.Len() != 0 {
			t.Errorf("Expected empty ledger, got %d shares and %d transactions", l.Position().Shares, l.Len())
		}
		if !l.Results().Profit().IsZero() {
			t.Errorf("Expected zero profit, got %s", l.Results().Profit())
		}
	})

	t.Run("out of order undo replays remaining ledger", func(t *testing.T) {
		l := New()
		b1, _ := l.Buy(day, 10, d("10"), decimal.Zero)
		_, _ = l.Buy(day, 10, d("20"), decimal.Zero)
		_, _ = l.Sell(day, 5, d("30"), decimal.Zero, decimal.Zero)

		if _, err := l.Undo(b1.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if l.Position().Shares != 5 {
			t.Errorf("Expected 5 shares, got %d", l.Position().Shares)
		}
		assertDecimal(t, "average buy price", "20", l.Position().AverageBuyPrice)
		assertDecimal(t, "gains", "50", l.Results().Gains)
	})

	// An inexact average (10 + 1/6) must not leak into later sales or differ
	// from the state a saved ledger is rebuilt into.
	t.Run("undo leaves the same state as replaying the remaining ledger", func(t *testing.T) {
		l := New()
		_, _ = l.Buy(day, 3, d("10"), decimal.Zero)
		b, _ := l.Buy(day, 3, d("11"), d("1"))

		if _, err := l.Undo(b.ID); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		replayed, err := Replay(l.Transactions())
		if err != nil {
			t.Fatalf("Replay() returned unexpected error: %v", err)
		}

		assertDecimal(t, "average buy price", "10", l.Position().AverageBuyPrice)
		if !l.Position().AverageBuyPrice.Equal(replayed.Position().AverageBuyPrice) {
			t.Errorf("Expected average %s, got %s", replayed.Position().AverageBuyPrice, l.Position().AverageBuyPrice)
		}

		sale, err := l.Sell(day, 3, d("20"), decimal.Zero, decimal.Zero)
		if err != nil {
			t.Fatalf("Sell() returned unexpected error: %v", err)
		}
		assertDecimal(t, "buy price", "10", sale.BuyPrice)
		assertDecimal(t, "gains", "30", l.Results().Gains)
	})

	t.Run("undo that would oversell a later sale is rejected", func(t *testing.T) {
		l := New()
		b1, _ := l.Buy(day, 10, d("10"), decimal.Zero)
		_, _ = l.Sell(day, 8, d("12"), decimal.Zero, decimal.Zero)
		before := l.Position()

		_, err := l.Undo(b1.ID)

		if !errors.Is(err, apperrors.ErrUndoConflict) {
			t.Errorf("Expected ErrUndoConflict, got %v", err)
		}
		if l.Position() != before || l.Len() != 2 {
			t.Errorf("Expected ledger unchanged, got %+v with %d transactions", l.Position(), l.Len())
		}
	})
}

func TestReplay(t *testing.T) {
	t.Run("recomputes derived fields", func(t *testing.T) {
		txs := []Transaction{
			Buy{ID: "a", Day: day, Shares: 10, Price: d("10"), Fee: decimal.Zero},
			Sell{ID: "b", Day: day, Shares: 4, Price: d("12"), Fee: decimal.Zero, Tax: decimal.Zero, BuyPrice: d("999")},
			Dividend{ID: "c", Day: day, AmountPerShare: d("1"), Tax: decimal.Zero},
		}

		l, err := Replay(txs)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		sell, err := l.Find("b")
		if err != nil {
			t.Fatalf("Expected to find sale, got %v", err)
		}
		assertDecimal(t, "buy price", "10", sell.(Sell).BuyPrice)
		assertDecimal(t, "dividends", "6", l.Results().Dividends)
		assertDecimal(t, "gains", "8", l.Results().Gains)
	})

	t.Run("fails on inconsistent history", func(t *testing.T) {
		_, err := Replay([]Transaction{
			Sell{ID: "x", Day: day, Shares: 1, Price: d("1")},
		})

		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})

	t.Run("rejects duplicate identifiers", func(t *testing.T) {
		_, err := Replay([]Transaction{
			Buy{ID: "a", Day: day, Shares: 3, Price: d("10")},
			Buy{ID: "a", Day: day, Shares: 3, Price: d("11")},
		})

		if !errors.Is(err, apperrors.ErrDuplicateTransaction) {
			t.Errorf("Expected ErrDuplicateTransaction, got %v", err)
		}
	})
}
