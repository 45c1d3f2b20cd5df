package apperrors

import (
	"errors"
	"fmt"
)

// Category errors. Every specific error below wraps exactly one of these so
// callers can branch on the category with errors.Is.
var (
	// ErrValidation indicates the caller supplied input that breaks a business rule.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the operation referenced an unknown entity.
	ErrNotFound = errors.New("not found")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrHoldingNotFound indicates that no holding exists for the given symbol.
	ErrHoldingNotFound = fmt.Errorf("%w: holding", ErrNotFound)

	// ErrTransactionNotFound indicates that the ledger has no transaction with the given ID.
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", ErrNotFound)

	// ErrSnapshotNotFound indicates the snapshot file to load does not exist.
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInsufficientShares indicates that a sell exceeds the shares currently held.
	ErrInsufficientShares = fmt.Errorf("%w: insufficient shares for sale", ErrValidation)

	// ErrInvalidShares indicates a share count that is zero or negative.
	ErrInvalidShares = fmt.Errorf("%w: shares must be positive", ErrValidation)

	// ErrNegativeAmount indicates that a price, fee or tax is negative.
	ErrNegativeAmount = fmt.Errorf("%w: amount cannot be negative", ErrValidation)

	// ErrDuplicateHolding indicates that the portfolio already holds the symbol.
	ErrDuplicateHolding = fmt.Errorf("%w: holding already exists", ErrValidation)

	// ErrUndoConflict indicates that removing the transaction would leave a later
	// sell without enough shares.
	ErrUndoConflict = fmt.Errorf("%w: undo conflicts with later transactions", ErrValidation)

	// ErrDuplicateTransaction indicates two transactions in one ledger share an identifier.
	ErrDuplicateTransaction = fmt.Errorf("%w: duplicate transaction id", ErrValidation)

	ErrInvalidSymbol = fmt.Errorf("%w: symbol is required", ErrValidation)
	ErrInvalidYear   = fmt.Errorf("%w: year is required", ErrValidation)

	// ErrUnsupportedFormat indicates a snapshot file extension no repository handles.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported snapshot format", ErrValidation)
)

// Operation failure errors are reported to HTTP clients as the summary message.
var (
	ErrFailedToRetrieveHoldings     = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToSavePortfolio        = errors.New("failed to save portfolio")
	ErrFailedToLoadPortfolio        = errors.New("failed to load portfolio")
	ErrFailedToRefreshMarketData    = errors.New("failed to refresh market data")
)

// Data integrity errors represent inconsistencies or corruption in persisted data.
var (
	// ErrDataInconsistency indicates that a snapshot is structurally valid but
	// describes an impossible state (e.g. a wallet replay that oversells).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrUnexpectedObject indicates a snapshot object tag did not match the expected type.
	ErrUnexpectedObject = errors.New("unexpected object tag")
)
