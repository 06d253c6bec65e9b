package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is wrapped by EnsureRunForCase when no run is bound to the
// case under the given parent and creation is disallowed.
var ErrRunNotFound = errors.New("test run not found")

// InvalidStatusError reports a status name that is not part of the project's
// execution status vocabulary. It is raised before any mutating call.
type InvalidStatusError struct {
	// Status is the rejected name as the caller supplied it.
	Status string
	// Valid holds the sorted uppercase names the registry would accept.
	Valid []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q: valid statuses are %s", e.Status, strings.Join(e.Valid, ", "))
}

// InvalidInputError reports malformed caller input. Nothing was sent to the
// platform.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
