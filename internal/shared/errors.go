package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Transport and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTransport          = fmt.Errorf("connection to storyboard service lost")
	ErrNotFound           = fmt.Errorf("not found")

	// Job errors
	ErrJobFailed          = fmt.Errorf("storyboard generation failed")
	ErrGenerationInFlight = fmt.Errorf("a storyboard is already being generated")
	ErrSessionUnresolved  = fmt.Errorf("could not determine session ID")

	// Gallery and edit errors
	ErrFrameNotFound     = fmt.Errorf("frame not found")
	ErrNoSelection       = fmt.Errorf("no frame selected")
	ErrEmptyInstructions = fmt.Errorf("edit instructions are empty")
	ErrEditInFlight      = fmt.Errorf("an edit is already being applied")
	ErrEditNotOpen       = fmt.Errorf("edit form is not open")
	ErrEditRejected      = fmt.Errorf("edit rejected")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
