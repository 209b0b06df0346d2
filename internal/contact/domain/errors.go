package domain

import "errors"

var (
	// ErrContactNotFound is returned when a contact does not exist under the calling user
	ErrContactNotFound = errors.New("contact not found")
	// ErrSyncTimeout is returned when the batch deadline elapses mid-sync
	ErrSyncTimeout = errors.New("email sync timed out")
	// ErrUserNotFound is returned when the calling user cannot be loaded
	ErrUserNotFound = errors.New("user not found")
)
