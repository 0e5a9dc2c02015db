package domain

import "errors"

// Sentinel errors for operations against the ledgers. Callers match with
// errors.Is; the web layer maps each to an HTTP status.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
