package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/request"
)

// ValidateCreateStock validates a stock creation request.
//
// Required fields:
//   - symbol: A ticker symbol
//   - name: Non-empty
//
// The current price may be omitted but cannot be negative.
func ValidateCreateStock(req request.CreateStockRequest) error {
	errors := make(map[string]string)

	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if req.CurrentPrice < 0 {
		errors["currentPrice"] = "currentPrice cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateYearMetrics validates a batch of yearly fundamentals. Field names
// are prefixed with the index of the offending entry, e.g. "1.closingPrice".
func ValidateYearMetrics(reqs []request.YearMetricsRequest) error {
	errors := make(map[string]string)

	if len(reqs) == 0 {
		errors["metrics"] = "at least one year is required"
	}

	seen := make(map[int]bool, len(reqs))
	for i, req := range reqs {
		field := func(name string) string { return fmt.Sprintf("%d.%s", i, name) }

		if req.Year <= 0 {
			errors[field("year")] = "year must be positive"
		} else if seen[req.Year] {
			errors[field("year")] = fmt.Sprintf("duplicate year %d", req.Year)
		}
		seen[req.Year] = true

		if req.EarningsPerShare == nil {
			errors[field("earningsPerShare")] = "earningsPerShare is required"
		}
		if req.ClosingPrice == nil {
			errors[field("closingPrice")] = "closingPrice is required"
		} else if *req.ClosingPrice < 0 {
			errors[field("closingPrice")] = "closingPrice cannot be negative"
		}
		if req.DividendPerShare == nil {
			errors[field("dividendPerShare")] = "dividendPerShare is required"
		} else if *req.DividendPerShare < 0 {
			errors[field("dividendPerShare")] = "dividendPerShare cannot be negative"
		}
		if req.MarketCapitalization != nil && *req.MarketCapitalization < 0 {
			errors[field("marketCapitalization")] = "marketCapitalization cannot be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
