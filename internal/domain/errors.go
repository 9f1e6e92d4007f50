package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidSource   = errors.New("invalid source url")
	ErrConflict        = errors.New("state conflict")
	ErrProviderFailure = errors.New("provider failure")
)
