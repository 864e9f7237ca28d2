package models

import "errors"

// Domain error taxonomy. Callers classify failures with errors.Is and turn
// them into user-facing replies or HTTP statuses at the boundary.
var (
	// ErrValidation marks a user-correctable submission problem (missing
	// caption or image). Nothing is stored when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks a blob or database read/write failure. Safe to retry
	// manually; never leaves a partially approved record.
	ErrStorage = errors.New("storage failure")

	// ErrNotFound marks a lookup of an unknown wish or image reference.
	ErrNotFound = errors.New("not found")

	// ErrNotification marks a best-effort notification that could not be
	// delivered. Logged only, never rolls back a committed transition.
	ErrNotification = errors.New("notification failed")
)
