package linkdb

import "errors"

var (
	// ErrNotFound is returned when no link exists for a Discord user.
	ErrNotFound = errors.New("linked account not found")
	// ErrNoRowsAffected is returned when a write matched nothing where a row was required.
	ErrNoRowsAffected = errors.New("no rows affected")
)
