package timeparse

import (
	"fmt"
	"strings"
)

// AmbiguousError reports a phrase that maps to two or more materially
// different interpretations with no disambiguating signal.
type AmbiguousError struct {
	Phrase          string
	Interpretations []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous time expression %q: could mean %s",
		e.Phrase, strings.Join(e.Interpretations, " or "))
}

// UnrecognizedError reports a phrase with no temporal semantics.
type UnrecognizedError struct {
	Phrase string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("no time expression recognized in %q", e.Phrase)
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}

// IsUnrecognized reports whether err is an UnrecognizedError.
func IsUnrecognized(err error) bool {
	_, ok := err.(*UnrecognizedError)
	return ok
}
