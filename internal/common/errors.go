// Package common contains shared constants and sentinel errors used across
// MedTrack client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")

	// Resource errors.
	ErrNotFound = errors.New("not found")

	// Validation caught client-side before any network call.
	ErrValidation = errors.New("validation failed")

	// Push notification permission was not granted by the user.
	ErrPermissionDenied = errors.New("notification permission denied")
)
