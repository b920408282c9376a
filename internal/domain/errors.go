package domain

import "errors"

// Input errors: the caller sent something we cannot work with.
var (
	ErrMissingMessage = errors.New("no message provided")
	ErrInvalidMessage = errors.New("message cannot be processed")
)

// ErrConfiguration is returned when the process cannot start.
var ErrConfiguration = errors.New("invalid configuration")

// ErrInference means the classifier failed on input it accepted.
var ErrInference = errors.New("risk inference failed")

// Service errors come from the reply generator boundary.
var (
	ErrService        = errors.New("reply generation failed")
	ErrServiceTimeout = errors.New("reply generation timed out")
	ErrBusy           = errors.New("no generation capacity available")
)
