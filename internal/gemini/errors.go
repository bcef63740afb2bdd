package gemini

import "fmt"

// TransportError represents a failure to complete the remote call: network
// errors, non-2xx responses, or an unreadable body. The provider message is
// preserved for logging and user-facing wrapping.
type TransportError struct {
	Stage      string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: model call failed: HTTP %d: %s", e.Stage, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: model call failed: %s", e.Stage, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true for server errors (5xx) and network errors.
// Client errors (4xx) are considered permanent.
func (e *TransportError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// ValidationError represents a completed remote call whose payload failed
// the stage's structural contract.
type ValidationError struct {
	Stage   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid model response: %s", e.Stage, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
