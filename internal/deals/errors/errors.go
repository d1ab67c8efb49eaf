package errors

import "errors"

var (
	ErrNotFound = errors.New("deal not found")

	ErrInvalidID = errors.New("invalid deal ID format")
)
