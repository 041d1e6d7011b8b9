package models

import "errors"

// Validation and state errors returned by the attendance lifecycle.
// All of them are caller-recoverable; the HTTP layer maps each to a status
// code and the UI re-displays the form without crashing.
var (
	// ErrDuplicateEntry: a pending entry already exists for (user, date)
	ErrDuplicateEntry = errors.New("already signed in for this date")

	// ErrNonWorkday: attendance is tracked Monday through Friday only
	ErrNonWorkday = errors.New("attendance is not tracked on weekends")

	// ErrNotFound: no entry with the given id
	ErrNotFound = errors.New("entry not found")

	// ErrAlreadyClosed: the entry already has a sign-out time
	ErrAlreadyClosed = errors.New("entry already signed out")

	// ErrInvalidState: the entry is not in the state the transition requires
	ErrInvalidState = errors.New("entry is not pending")

	// ErrMissingReason: rejection requires a non-empty reason
	ErrMissingReason = errors.New("rejection reason is required")
)
