package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/testutil"
)

// TestPortfolioService_RefreshMarketData tests the concurrent market refresh.
//
// WHY: One failing symbol must not block the others, and holdings whose fetch
// failed must keep their previous price.
func TestPortfolioService_RefreshMarketData(t *testing.T) {
	ctx := context.Background()

	t.Run("updates prices and reports failures", func(t *testing.T) {
		// Setup
		market := testutil.NewMockMarketData().
			WithPrice("ANDR", 54.25, 1.0).
			WithPrice("OMV", 45.1, 2.3).
			WithError("VOE", errors.New("rate limited"))
		svc := testutil.NewTestPortfolioService(t, service.WithMarketData(market))
		for _, symbol := range []string{"ANDR", "OMV", "VOE"} {
			if _, err := svc.AddHolding(symbol, symbol, "", 10); err != nil {
				t.Fatal(err)
			}
		}

		// Execute
		result, err := svc.RefreshMarketData(ctx)

		// Assert
		if err != nil {
			t.Fatalf("RefreshMarketData() returned unexpected error: %v", err)
		}
		if len(result.Updated) != 2 || result.Updated[0] != "ANDR" || result.Updated[1] != "OMV" {
			t.Errorf("Expected [ANDR OMV] updated, got %v", result.Updated)
		}
		if _, ok := result.Failed["VOE"]; !ok {
			t.Errorf("Expected VOE failure, got %v", result.Failed)
		}

		andr, _ := svc.GetHolding("ANDR")
		if andr.CurrentPrice != 54.25 || andr.LastDividend != 1.0 {
			t.Errorf("Expected 54.25/1.0, got %v/%v", andr.CurrentPrice, andr.LastDividend)
		}
		voe, _ := svc.GetHolding("VOE")
		if voe.CurrentPrice != 10 {
			t.Errorf("Expected VOE price kept at 10, got %v", voe.CurrentPrice)
		}
	})

	t.Run("all failing", func(t *testing.T) {
		market := testutil.NewMockMarketData().WithError("ANDR", errors.New("down"))
		svc := testutil.NewTestPortfolioService(t, service.WithMarketData(market))
		_, _ = svc.AddHolding("ANDR", "Andritz", "", 10)

		_, err := svc.RefreshMarketData(ctx)

		if !errors.Is(err, apperrors.ErrFailedToRefreshMarketData) {
			t.Errorf("Expected ErrFailedToRefreshMarketData, got %v", err)
		}
	})

	t.Run("empty portfolio makes no requests", func(t *testing.T) {
		market := testutil.NewMockMarketData()
		svc := testutil.NewTestPortfolioService(t, service.WithMarketData(market))

		if _, err := svc.RefreshMarketData(ctx); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if market.Queries() != 0 {
			t.Errorf("Expected 0 queries, got %d", market.Queries())
		}
	})

	t.Run("no provider", func(t *testing.T) {
		svc := testutil.NewTestPortfolioService(t)

		_, err := svc.RefreshMarketData(ctx)

		if !errors.Is(err, apperrors.ErrFailedToRefreshMarketData) {
			t.Errorf("Expected ErrFailedToRefreshMarketData, got %v", err)
		}
	})
}
