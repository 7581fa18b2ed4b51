package domain

import "errors"

// Error taxonomy shared by every component. Call sites wrap these with
// context; callers match with errors.Is.
var (
	// ErrInvalidInput marks malformed user-supplied data. Nothing is mutated.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an operation that references an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrGatewayFailure marks an AI collaborator error, timeout or unusable
	// response.
	ErrGatewayFailure = errors.New("gateway failure")

	// ErrBusy marks a plan request for a goal that already has one in flight.
	ErrBusy = errors.New("plan request already in flight")
)
