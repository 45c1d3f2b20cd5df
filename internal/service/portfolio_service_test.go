package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/testutil"
)

var day = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestPortfolioService_Holdings tests creating, listing and removing holdings.
//
// WHY: Holdings are the entry point for every other operation. Duplicate and
// unknown symbols must be rejected without changing the portfolio.
func TestPortfolioService_Holdings(t *testing.T) {
	t.Run("adds and lists holdings ordered by symbol", func(t *testing.T) {
		// Setup
		svc := testutil.NewTestPortfolioService(t)

		// Execute
		_, _ = svc.AddHolding("VOE", "voestalpine", "Materials", 30)
		summary, err := svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		// Assert
		if err != nil {
			t.Fatalf("AddHolding() returned unexpected error: %v", err)
		}
		if summary.Symbol != "ANDR" || summary.Shares != 0 {
			t.Errorf("Expected empty ANDR holding, got %+v", summary)
		}
		holdings := svc.ListHoldings()
		if len(holdings) != 2 || holdings[0].Symbol != "ANDR" || holdings[1].Symbol != "VOE" {
			t.Errorf("Expected [ANDR VOE], got %+v", holdings)
		}
	})

	t.Run("rejects duplicate holding", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		_, err := svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		if !errors.Is(err, apperrors.ErrDuplicateHolding) {
			t.Errorf("Expected ErrDuplicateHolding, got %v", err)
		}
	})

	t.Run("removes holding", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		if err := svc.RemoveHolding("ANDR"); err != nil {
			t.Fatalf("RemoveHolding() returned unexpected error: %v", err)
		}

		if _, err := svc.GetHolding("ANDR"); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected not found after removal, got %v", err)
		}
	})
}

// TestPortfolioService_Fundamentals tests metric ingestion and aggregation.
//
// WHY: Ingesting a year must immediately refresh that holding's aggregates so
// the aggregate view never lags the metrics view.
func TestPortfolioService_Fundamentals(t *testing.T) {
	t.Run("ingest recalculates the holding", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		err := svc.IngestYearMetrics("ANDR", testutil.AndritzMetricsList()...)

		if err != nil {
			t.Fatalf("IngestYearMetrics() returned unexpected error: %v", err)
		}
		years, _ := svc.YearData("ANDR")
		aggregates, _ := svc.AggregateData("ANDR")
		if len(years) != 8 || len(aggregates) != 8 {
			t.Fatalf("Expected 8 years and 8 aggregates, got %d and %d", len(years), len(aggregates))
		}
		if years[0].Year != 2020 || aggregates[0].Year != 2020 {
			t.Errorf("Expected newest year first, got %d and %d", years[0].Year, aggregates[0].Year)
		}
		testutil.AssertApprox(t, "2020 average EPS", 1.85, aggregates[0].EarningsPerShare)
		if aggregates[len(aggregates)-1].Growth != nil {
			t.Error("Expected undefined growth for the earliest year")
		}
	})

	t.Run("unknown symbol", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)

		_, err := svc.AggregateData("NOPE")

		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})

	t.Run("recalculate all", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)
		_ = svc.IngestYearMetrics("ANDR", testutil.AndritzMetricsList()...)

		if err := svc.RecalculateAggregates(); err != nil {
			t.Fatalf("RecalculateAggregates() returned unexpected error: %v", err)
		}

		aggregates, _ := svc.AggregateData("ANDR")
		if len(aggregates) != 8 {
			t.Errorf("Expected 8 aggregates, got %d", len(aggregates))
		}
	})
}

// TestPortfolioService_Transactions tests the ledger use cases.
//
// WHY: The views returned to callers must reflect the recorded amounts, and a
// rejected sale must not leave a trace in the ledger.
func TestPortfolioService_Transactions(t *testing.T) {
	setup := func(t *testing.T) *service.PortfolioService {
		t.Helper()
		svc := testutil.NewTestPortfolioService(t)
		if _, err := svc.AddHolding("ANDR", "Andritz", "Industrials", 40); err != nil {
			t.Fatal(err)
		}
		return svc
	}

	t.Run("buy sell dividend tax", func(t *testing.T) {
		svc := setup(t)

		buy, err := svc.Buy("ANDR", day, 100, dec("30"), dec("5"))
		if err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}
		sell, err := svc.Sell("ANDR", day, 40, dec("35"), dec("2.5"), dec("10"))
		if err != nil {
			t.Fatalf("Sell() returned unexpected error: %v", err)
		}
		div, _ := svc.Dividend("ANDR", day, dec("1.5"), dec("4"))
		_, _ = svc.Tax("ANDR", day, dec("1"))

		if buy.Type != "Buy" || *buy.Shares != 100 || *buy.Fee != 5 {
			t.Errorf("Unexpected buy view %+v", buy)
		}
		if *sell.BuyPrice != 30.05 || *sell.Gain != 198 {
			t.Errorf("Expected buy price 30.05 and gain 198, got %v and %v", *sell.BuyPrice, *sell.Gain)
		}
		if *div.Shares != 60 || *div.Amount != 90 {
			t.Errorf("Expected dividend on 60 shares of 90, got %v and %v", *div.Shares, *div.Amount)
		}

		txs, _ := svc.Transactions("ANDR")
		if len(txs) != 4 {
			t.Fatalf("Expected 4 transactions, got %d", len(txs))
		}
		snap, _ := svc.GetHolding("ANDR")
		if snap.Position.Shares != 60 {
			t.Errorf("Expected 60 shares, got %d", snap.Position.Shares)
		}
		testutil.AssertApprox(t, "profit", 198+90-5-2.5-10-4-1, snap.Results.Profit)
	})

	t.Run("oversell is rejected", func(t *testing.T) {
		svc := setup(t)
		_, _ = svc.Buy("ANDR", day, 10, dec("30"), dec("0"))

		_, err := svc.Sell("ANDR", day, 11, dec("35"), dec("0"), dec("0"))

		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
		txs, _ := svc.Transactions("ANDR")
		if len(txs) != 1 {
			t.Errorf("Expected ledger unchanged, got %d transactions", len(txs))
		}
	})

	t.Run("undo restores position", func(t *testing.T) {
		svc := setup(t)
		_, _ = svc.Buy("ANDR", day, 10, dec("30"), dec("0"))
		second, _ := svc.Buy("ANDR", day, 10, dec("40"), dec("0"))

		undone, err := svc.Undo("ANDR", second.ID)

		if err != nil {
			t.Fatalf("Undo() returned unexpected error: %v", err)
		}
		if undone.ID != second.ID {
			t.Errorf("Expected undone %s, got %s", second.ID, undone.ID)
		}
		snap, _ := svc.GetHolding("ANDR")
		if snap.Position.Shares != 10 || snap.Position.AverageBuyPrice != 30 {
			t.Errorf("Expected 10 shares at 30, got %+v", snap.Position)
		}
	})

	t.Run("undo unknown transaction", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Undo("ANDR", "6f1c1d1e-0000-4000-8000-000000000000")

		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_Persistence tests Save and Load.
//
// WHY: A failed load must keep the current portfolio so a corrupt snapshot
// never wipes the in-memory state.
func TestPortfolioService_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load round trip", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)
		_, _ = svc.Buy("ANDR", day, 50, dec("31.34"), dec("0"))
		if err := svc.Save(ctx); err != nil {
			t.Fatalf("Save() returned unexpected error: %v", err)
		}
		_ = svc.RemoveHolding("ANDR")

		if err := svc.Load(ctx); err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		snap, err := svc.GetHolding("ANDR")
		if err != nil || snap.Position.Shares != 50 {
			t.Errorf("Expected restored 50 shares, got %+v (%v)", snap.Position, err)
		}
	})

	t.Run("missing snapshot keeps state", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		err := svc.Load(ctx)

		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
		}
		if len(svc.ListHoldings()) != 1 {
			t.Error("Expected portfolio to be kept")
		}
	})

	t.Run("corrupt snapshot keeps state", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)
		if err := os.WriteFile(svc.SnapshotPath(), []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}

		err := svc.Load(ctx)

		if !errors.Is(err, apperrors.ErrFailedToLoadPortfolio) {
			t.Errorf("Expected ErrFailedToLoadPortfolio, got %v", err)
		}
		if len(svc.ListHoldings()) != 1 {
			t.Error("Expected portfolio to be kept")
		}
	})

	t.Run("autosave writes after mutation", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t, service.WithAutoSave(true))

		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)

		if _, err := os.Stat(svc.SnapshotPath()); err != nil {
			t.Errorf("Expected snapshot after mutation, got %v", err)
		}
	})

	t.Run("listeners survive load", func(t *testing.T) {
		var events []portfolio.Event
		listener := portfolio.ListenerFunc(func(e portfolio.Event) { events = append(events, e) })
		svc := testutil.NewTestPortfolioService(t, service.WithPortfolioOptions(portfolio.WithListener(listener)))
		_, _ = svc.AddHolding("ANDR", "Andritz", "Industrials", 54.25)
		_ = svc.Save(ctx)
		_ = svc.Load(ctx)
		events = nil

		_, _ = svc.Buy("ANDR", day, 1, dec("50"), dec("0"))

		if len(events) != 1 || events[0].Kind != portfolio.EventTransactionExecuted {
			t.Errorf("Expected one transaction event after load, got %+v", events)
		}
	})
}
