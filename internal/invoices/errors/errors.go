package errors

import "errors"

var (
	ErrNotFound = errors.New("invoice not found")

	ErrInvalidID = errors.New("invalid invoice ID format")
)
