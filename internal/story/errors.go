package story

import "errors"

// ErrBusy is returned when a generation action is requested while another
// one is still in flight. Exactly one generation runs at a time.
var ErrBusy = errors.New("a generation operation is already in progress")

// ErrNotFound is returned for lookups of unknown project or idea ids.
var ErrNotFound = errors.New("not found")

// PreconditionError reports a stage invoked without its required input.
// It is raised before any remote call and never follows a partial state
// change.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
