package assistant

import "errors"

// Sentinel errors for turn failure modes.
var (
	// ErrValidation indicates invalid caller input; the turn never started.
	ErrValidation = errors.New("validation error")

	// ErrNoResponse indicates the model produced no response at all, which
	// is fatal to the turn. A classified error message is not this case.
	ErrNoResponse = errors.New("failed to get AI response")
)
