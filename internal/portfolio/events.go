package portfolio

// EventKind names a change to the portfolio.
type EventKind string

const (
	EventHoldingAdded           EventKind = "holding_added"
	EventHoldingRemoved         EventKind = "holding_removed"
	EventTransactionExecuted    EventKind = "transaction_executed"
	EventTransactionUndone      EventKind = "transaction_undone"
	EventMetricsIngested        EventKind = "metrics_ingested"
	EventAggregatesRecalculated EventKind = "aggregates_recalculated"
	EventMarketDataUpdated      EventKind = "market_data_updated"
)

// Event describes a completed change. Symbol is empty for portfolio-wide
// events and TransactionID is set only for ledger events.
type Event struct {
	Kind          EventKind
	Symbol        string
	TransactionID string
}

// Listener is notified synchronously after every successful mutation, while
// the caller still holds whatever lock guards the portfolio. Implementations
// must not call back into the portfolio.
type Listener interface {
	PortfolioChanged(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// PortfolioChanged calls f(e).
func (f ListenerFunc) PortfolioChanged(e Event) {
	f(e)
}
