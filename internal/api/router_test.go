package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/testutil"
)

// TestNewRouter drives a holding through the full HTTP surface so that route
// patterns, URL parameters and validation middleware are wired together.
func TestNewRouter(t *testing.T) {
	svc := testutil.NewTestPortfolioService(t)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	router := api.NewRouter(service.NewSystemService(svc), svc, cfg)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("stock lifecycle", func(t *testing.T) {
		if w := do(http.MethodPost, "/api/portfolio/stock", `{"symbol":"ANDR.VI","name":"Andritz AG","currentPrice":40}`); w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		w := do(http.MethodPost, "/api/portfolio/stock/ANDR.VI/transaction", `{"type":"Buy","date":"2021-03-01","shares":10,"price":"30"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		buy := testutil.DecodeJSON[model.TransactionView](t, w)

		w = do(http.MethodGet, "/api/portfolio/stock/ANDR.VI", "")
		snap := testutil.DecodeJSON[model.HoldingSnapshot](t, w)
		if snap.Position.Shares != 10 {
			t.Errorf("Expected 10 shares, got %d", snap.Position.Shares)
		}

		if w := do(http.MethodDelete, "/api/portfolio/stock/ANDR.VI/transaction/"+buy.ID, ""); w.Code != http.StatusOK {
			t.Errorf("Expected 200 on undo, got %d: %s", w.Code, w.Body.String())
		}
		if w := do(http.MethodDelete, "/api/portfolio/stock/ANDR.VI", ""); w.Code != http.StatusNoContent {
			t.Errorf("Expected 204 on delete, got %d", w.Code)
		}
	})

	t.Run("invalid path parameters", func(t *testing.T) {
		if w := do(http.MethodDelete, "/api/portfolio/stock/ANDR/transaction/not-a-uuid", ""); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad uuid, got %d", w.Code)
		}
		if w := do(http.MethodGet, "/api/portfolio/stock/"+strings.Repeat("X", 20), ""); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad symbol, got %d", w.Code)
		}
	})

	t.Run("system endpoints", func(t *testing.T) {
		if w := do(http.MethodGet, "/api/system/health", ""); w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w := do(http.MethodGet, "/api/system/version", ""); w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		if w := do(http.MethodGet, "/api/portfolio/unknown", ""); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}
