package parley

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates imported data failed shape validation.
	ErrValidation = errors.New("validation error")

	// ErrSendInProgress indicates Send was called while a previous send on
	// the same session had not finished.
	ErrSendInProgress = errors.New("send already in progress")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
