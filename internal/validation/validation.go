package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID   = fmt.Errorf("invalid UUID format")
	ErrInvalidSymbol = fmt.Errorf("invalid symbol")
)

// symbolPattern accepts exchange tickers such as "ANDR", "ANDR.VI", "BRK-B"
// and index symbols such as "^ATX".
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-=]{0,15}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSymbol checks if a string is a plausible ticker symbol
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(strings.TrimSpace(symbol)) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}
