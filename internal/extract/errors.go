package extract

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument indicates the HTML could not be parsed at all.
// Documents that parse but yield no candidates are not an error.
var ErrMalformedDocument = errors.New("malformed document")

// RuleSetError represents a failure loading or validating a custom rule set.
type RuleSetError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RuleSetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule set %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule set %s: %s", e.Path, e.Message)
}

func (e *RuleSetError) Unwrap() error {
	return e.Cause
}
