package domain

import "errors"

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("invalid input")
