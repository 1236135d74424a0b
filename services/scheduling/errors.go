package scheduling

import (
	"fmt"
	"strings"
)

// ContradictionError reports a merge that would corrupt the running request.
// The prior request is always left untouched when this is returned.
type ContradictionError struct {
	Fields []string
	Reason string
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("contradiction on %s: %s", strings.Join(e.Fields, ", "), e.Reason)
}

func NewContradiction(reason string, fields ...string) error {
	return &ContradictionError{Fields: fields, Reason: reason}
}

// IsContradiction reports whether err is a ContradictionError.
func IsContradiction(err error) bool {
	_, ok := err.(*ContradictionError)
	return ok
}

// CalendarUnavailableError reports that the calendar backend could not be
// reached even after the retry.
type CalendarUnavailableError struct {
	Cause error
}

func (e *CalendarUnavailableError) Error() string {
	return fmt.Sprintf("calendar unavailable: %v", e.Cause)
}

func (e *CalendarUnavailableError) Unwrap() error {
	return e.Cause
}

// IsCalendarUnavailable reports whether err is a CalendarUnavailableError.
func IsCalendarUnavailable(err error) bool {
	_, ok := err.(*CalendarUnavailableError)
	return ok
}
