package service

import (
	"log"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

// LogListener writes portfolio changes to the standard logger.
type LogListener struct{}

// PortfolioChanged logs e.
func (LogListener) PortfolioChanged(e portfolio.Event) {
	switch {
	case e.TransactionID != "":
		log.Printf("%s: %s %s", e.Kind, e.Symbol, e.TransactionID)
	case e.Symbol != "":
		log.Printf("%s: %s", e.Kind, e.Symbol)
	default:
		log.Printf("%s", e.Kind)
	}
}
