package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/middleware"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/testutil"
)

// serve runs mw around a recording handler with the given URL params and
// reports whether the handler was reached.
func serve(mw func(http.Handler) http.Handler, params map[string]string) (*httptest.ResponseRecorder, bool) {
	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := testutil.NewRequestWithURLParams(http.MethodGet, "/test", params)
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, req)
	return w, handlerCalled
}

func TestValidateUUIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		uuid     string
		wantCode int
	}{
		{"passes through valid UUID", "550e8400-e29b-41d4-a716-446655440000", http.StatusOK},
		{"returns 400 for invalid UUID", "invalid-id", http.StatusBadRequest},
		{"returns 400 for empty UUID", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called := serve(middleware.ValidateUUIDMiddleware, map[string]string{"uuid": tt.uuid})

			if w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
			if called != (tt.wantCode == http.StatusOK) {
				t.Errorf("Expected handler called = %v", tt.wantCode == http.StatusOK)
			}
		})
	}
}

func TestValidateSymbolMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		wantCode int
	}{
		{"plain ticker", "ANDR", http.StatusOK},
		{"exchange suffix", "ANDR.VI", http.StatusOK},
		{"class share", "BRK-B", http.StatusOK},
		{"index", "^ATX", http.StatusOK},
		{"empty", "", http.StatusBadRequest},
		{"path characters", "../etc", http.StatusBadRequest},
		{"too long", strings.Repeat("A", 17), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called := serve(middleware.ValidateSymbolMiddleware, map[string]string{"symbol": tt.symbol})

			if w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
			if called != (tt.wantCode == http.StatusOK) {
				t.Errorf("Expected handler called = %v", tt.wantCode == http.StatusOK)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/stock", nil)
	req.URL.Path = "/api/portfolio/stock\nINJECTED"

	middleware.Logger(next).ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "GET /api/portfolio/stockINJECTED 418") {
		t.Errorf("Expected sanitized log line with status, got %q", line)
	}
}

func TestNewCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.NewCORS([]string{"http://localhost:3000"}).Handler(next)

	t.Run("allows configured origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/stock", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Expected allowed origin header, got %q", got)
		}
	})

	t.Run("ignores other origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/stock", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no allowed origin header, got %q", got)
		}
	})
}
