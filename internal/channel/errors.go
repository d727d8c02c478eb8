package channel

import "errors"

// Sentinel errors for dispatcher operations.
var (
	// ErrNoChannel indicates no sender is registered under the requested name.
	ErrNoChannel = errors.New("channel: no such channel")

	// ErrDuplicateChannel indicates a sender name is already taken.
	ErrDuplicateChannel = errors.New("channel: duplicate channel")
)
