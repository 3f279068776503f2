package ports

import "errors"

// Standard application-level errors.
// Ledger, simulator and adapters wrap these so callers can use errors.Is.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Ledger Errors
	ErrUnknownSymbol       = errors.New("stock symbol not found in ledger")
	ErrInsufficientShares  = errors.New("not enough shares to fill sale")
	ErrInvalidQuantity     = errors.New("quantity must not be negative")
	ErrInvalidPrice        = errors.New("price must be a finite number")
	ErrInvalidStrategy     = errors.New("unknown lot selection strategy")
	ErrMalformedLine       = errors.New("malformed transaction line")
	ErrInconsistentHolding = errors.New("strategy runs disagree on share counts")

	// Database Specific Errors
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)
