package syncservice

import "errors"

var (
	// ErrSweepInProgress is returned when a sweep is requested while one is running.
	ErrSweepInProgress = errors.New("sweep already in progress")
	// ErrNotLinked is returned when resyncing a user without a link.
	ErrNotLinked = errors.New("user is not linked")
)
