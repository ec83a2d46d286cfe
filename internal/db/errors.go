package db

import "errors"

// Sentinel errors for backend operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrBadRequest    = errors.New("db: bad request")
	ErrUnavailable   = errors.New("db: backend unavailable")
)

// Op constants name backend API calls for error context.
const (
	OpPing   = "ping"
	OpSearch = "search"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
