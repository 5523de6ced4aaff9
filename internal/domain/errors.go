package domain

import "errors"

// Lookup and constraint errors returned by every service operation.
// Callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrConflict           = errors.New("record conflicts with an existing record")
	ErrMissingReference   = errors.New("referenced record does not exist")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
