package rankservice

import "errors"

var (
	// ErrAccountNotFound means the provider has no such account. It is an expected outcome.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransient means the provider could not be reached; callers may retry later.
	ErrTransient = errors.New("rank provider unavailable")
)
