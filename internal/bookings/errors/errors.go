package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrNotCancellable is returned when the guarded status update matched no
	// live booking, i.e. it reached a terminal status first.
	ErrNotCancellable = errors.New("booking is no longer cancellable")

	ErrSpotNotFound = errors.New("parking spot not found")

	ErrUserNotFound = errors.New("user not found")
)
