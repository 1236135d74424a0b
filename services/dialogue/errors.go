package dialogue

import "fmt"

// SessionNotFoundError is returned when a turn references an unknown or
// expired session.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}

// SessionClosedError is returned for turns against a resolved or abandoned
// session.
type SessionClosedError struct {
	SessionID string
	State     string
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session %q is closed (state %s)", e.SessionID, e.State)
}

// SessionTimedOutError is returned for turns against a session the
// inactivity sweeper has abandoned.
type SessionTimedOutError struct {
	SessionID string
}

func (e *SessionTimedOutError) Error() string {
	return fmt.Sprintf("session %q timed out", e.SessionID)
}

// SelectionAmbiguousError signals that a pick could not be mapped to exactly
// one offered option.
type SelectionAmbiguousError struct {
	Phrase  string
	Matches int
}

func (e *SelectionAmbiguousError) Error() string {
	return fmt.Sprintf("selection %q matched %d options", e.Phrase, e.Matches)
}

func IsSelectionAmbiguous(err error) bool {
	_, ok := err.(*SelectionAmbiguousError)
	return ok
}
