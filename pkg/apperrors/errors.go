package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrQuotaExceeded    = errors.New("entity quota exceeded for type")
	ErrInvalidReference = errors.New("invalid reference")
)
