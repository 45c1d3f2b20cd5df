package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/api/request"
)

var validTransactionTypes = map[string]bool{
	"Buy": true, "Sell": true, "Dividend": true, "Tax": true,
}

// ValidateCreateTransaction validates a transaction request.
//
// Required fields:
//   - type: One of Buy, Sell, Dividend or Tax
//   - date: Must be in YYYY-MM-DD format
//
// Buy and Sell need positive shares and a price; Dividend needs
// amountPerShare; Tax needs amount. Amounts cannot be negative.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	switch {
	case req.Type == "":
		errors["type"] = "type is required"
	case !validTransactionTypes[req.Type]:
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	switch req.Type {
	case "Buy", "Sell":
		if req.Shares <= 0 {
			errors["shares"] = "shares must be positive"
		}
		required(errors, "price", req.Price)
		optional(errors, "fee", req.Fee)
		if req.Type == "Sell" {
			optional(errors, "tax", req.Tax)
		}
	case "Dividend":
		required(errors, "amountPerShare", req.AmountPerShare)
		optional(errors, "tax", req.Tax)
	case "Tax":
		required(errors, "amount", req.Amount)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func required(errors map[string]string, field string, d *decimal.Decimal) {
	if d == nil {
		errors[field] = field + " is required"
		return
	}
	optional(errors, field, d)
}

func optional(errors map[string]string, field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		errors[field] = field + " cannot be negative"
	}
}
