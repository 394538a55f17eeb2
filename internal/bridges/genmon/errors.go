package genmon

import "errors"

// Domain errors for the generator bridge package.
var (
	// ErrEncodingFailed is returned when a discovery payload cannot be
	// encoded.
	ErrEncodingFailed = errors.New("genmon: discovery encoding failed")

	// ErrUnknownAction is returned when a button press arrives on a
	// press topic with no matching command action.
	ErrUnknownAction = errors.New("genmon: unknown command action")
)
