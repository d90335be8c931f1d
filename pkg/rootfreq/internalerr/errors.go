package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInputNotFound = errors.New("input not found")
	ErrNoData        = errors.New("no data parsed")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrFrozen        = errors.New("tables are frozen")
	ErrInvariant     = errors.New("count invariant violated")
)
