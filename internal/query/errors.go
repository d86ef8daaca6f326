package query

import "errors"

// Request failures distinguished by the HTTP layer. Store failures are
// wrapped in ErrUnavailableStore so callers can map them to a server-side
// fault without inspecting driver errors.
var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrUnknownSymbol    = errors.New("symbol not found")
	ErrUnavailableStore = errors.New("store unavailable")
)
