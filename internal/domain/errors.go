package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage marks a collection that could not be written.
	ErrStorage = errors.New("storage failure")

	// ErrNotificationUnavailable covers a missing contact, a missing channel
	// and a failed outbound call. It is logged, never returned to clients.
	ErrNotificationUnavailable = errors.New("notification unavailable")
)
