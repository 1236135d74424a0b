package models

import "time"

// ConstraintKind tags the variant of a parsed time constraint.
type ConstraintKind string

const (
	ConstraintAbsoluteRange  ConstraintKind = "absolute-range"
	ConstraintRelativeAnchor ConstraintKind = "relative-anchor"
	ConstraintPendingAnchor  ConstraintKind = "pending-anchor"
	ConstraintExclusion      ConstraintKind = "exclusion"
	ConstraintDuration       ConstraintKind = "duration"
)

// TimeConstraint is one parsed fragment of a scheduling utterance. Constraints
// are immutable once created; the accumulator adds or supersedes, never edits.
type TimeConstraint struct {
	Kind ConstraintKind `json:"kind"`

	// Bounds for absolute-range constraints.
	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`

	// Duration for duration constraints.
	Duration time.Duration `json:"duration,omitempty"`

	// Anchor-relative data: "an hour before my 5 PM call" carries the free-text
	// reference, the offset, and the direction. The resolved anchor event is
	// attached when it was already known at parse time.
	AnchorRef    string        `json:"anchorRef,omitempty"`
	AnchorOffset time.Duration `json:"anchorOffset,omitempty"`
	AnchorBefore bool          `json:"anchorBefore,omitempty"`
	AnchorEvent  *Interval     `json:"anchorEvent,omitempty"`

	// AnchorOffsetStated marks an offset the user said out loud ("an hour
	// before") as opposed to the default gap.
	AnchorOffsetStated bool `json:"anchorOffsetStated,omitempty"`

	// Exclusion data.
	ExcludedWeekdays []time.Weekday `json:"excludedWeekdays,omitempty"`
	ExcludedClock    *ClockRange    `json:"excludedClock,omitempty"`
	ExcludedDate     string         `json:"excludedDate,omitempty"`

	// LiftWeekdays names weekdays whose earlier exclusion this constraint
	// removes ("actually Wednesday is fine").
	LiftWeekdays []time.Weekday `json:"liftWeekdays,omitempty"`

	// DayPart is a stated part-of-day preference riding along with a range.
	DayPart *DayPart `json:"dayPart,omitempty"`

	// Confidence is the parser's certainty in this reading, 0..1.
	Confidence float64 `json:"confidence"`
}

// DayPart is a canonical part-of-day range, e.g. afternoon = 12:00-17:00.
// The mapping from label to hours is configuration, not hard-coded locale.
type DayPart struct {
	Label     string `json:"label"`
	StartHour int    `json:"startHour"`
	EndHour   int    `json:"endHour"`
}

// Clock returns the part-of-day as a within-day minute range.
func (dp DayPart) Clock() ClockRange {
	return ClockRange{StartMin: dp.StartHour * 60, EndMin: dp.EndHour * 60}
}

// MidMinute is the midpoint of the range in minutes from midnight, used for
// preference-proximity scoring.
func (dp DayPart) MidMinute() int {
	return (dp.StartHour*60 + dp.EndHour*60) / 2
}
