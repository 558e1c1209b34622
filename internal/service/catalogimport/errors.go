package catalogimport

import "errors"

// Sentinel errors for structural failures. Row-level problems never surface
// as errors; they are collected in the Summary.
var (
	ErrNoData       = errors.New("no data")
	ErrInvalidInput = errors.New("invalid input")
	ErrTooManyRows  = errors.New("too many rows")
)
