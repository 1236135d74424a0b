package models

import "time"

// SessionState is the dialogue state machine's current state.
type SessionState string

const (
	StateCollecting SessionState = "collecting"
	StateResolving  SessionState = "resolving"
	StateOffering   SessionState = "offering"
	StateResolved   SessionState = "resolved"
	StateAbandoned  SessionState = "abandoned"
)

// Terminal reports whether the state admits no further turns.
func (s SessionState) Terminal() bool {
	return s == StateResolved || s == StateAbandoned
}

// DialogueTurn is the ordered record of one exchange: what the user said, what
// was extracted, the system's prior open question, and the transition taken.
type DialogueTurn struct {
	UserInput string           `json:"userInput"`
	Signal    *UtteranceSignal `json:"signal,omitempty"`
	Question  string           `json:"question,omitempty"`
	Reply     string           `json:"reply"`
	FromState SessionState     `json:"fromState"`
	ToState   SessionState     `json:"toState"`
	At        time.Time        `json:"at"`
}

// DialogueSession holds the complete per-session negotiation state. It is
// exclusively owned by one session and mutated only by the dialogue machine.
type DialogueSession struct {
	ID     string       `json:"id"`
	UserID string       `json:"userId"`
	State  SessionState `json:"state"`

	Request SchedulingRequest `json:"request"`

	// LastOffer is the most recently offered option list; it is replaced,
	// never mutated, on each resolution.
	LastOffer []SlotOption `json:"lastOffer,omitempty"`

	// LastRelaxations discloses how LastOffer was found.
	LastRelaxations []Relaxation `json:"lastRelaxations,omitempty"`

	// LastQuestion is the open clarifying question, if any.
	LastQuestion string `json:"lastQuestion,omitempty"`

	// Anchors caches named events already resolved against the calendar.
	Anchors map[string]Interval `json:"anchors,omitempty"`

	// Selected is set when the user confirms one of the offered options.
	Selected *SlotOption `json:"selected,omitempty"`

	// EventID is the calendar event created on confirmation.
	EventID string `json:"eventId,omitempty"`

	// TimedOut distinguishes inactivity abandonment from explicit cancel.
	TimedOut bool `json:"timedOut,omitempty"`

	History []DialogueTurn `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Intents an utterance can carry.
const (
	IntentSchedule = "schedule"
	IntentProvide  = "provide"
	IntentSelect   = "select"
	IntentConfirm  = "confirm"
	IntentCancel   = "cancel"
	IntentChat     = "chat"
)

// UtteranceSignal is the structured output of intent/entity extraction.
type UtteranceSignal struct {
	Intent          string   `json:"intent"` // "schedule", "provide", "select", "confirm", "cancel", "chat"
	TimePhrases     []string `json:"timePhrases,omitempty"`
	DurationPhrase  string   `json:"durationPhrase,omitempty"`
	SelectionPhrase string   `json:"selectionPhrase,omitempty"`
}

// CalendarEvent is a named event on the user's calendar.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}

func (e CalendarEvent) Interval() Interval {
	return Interval{Start: e.Start, End: e.End}
}
