package port

import (
	"errors"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// Sentinel errors used across ports.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrUserNotFound        = errors.New("user not found")
	ErrIncarnationNotFound = errors.New("incarnation not found")
	ErrSettingsNotFound    = errors.New("settings not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrUpstreamUnavailable = errors.New("foxops unavailable")
	ErrInvalidInput        = domain.ErrInvalidInput
)
