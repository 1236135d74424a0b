package models

import "time"

// Interval is a concrete [Start, End) span on the timeline.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Overlaps reports whether two half-open intervals share any time.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// ClockRange is a recurring within-day range in minutes from midnight,
// e.g. 720-1020 for 12:00-17:00.
type ClockRange struct {
	StartMin int `json:"startMin"`
	EndMin   int `json:"endMin"`
}

// ContainsMinute reports whether the given minute-of-day lies in the range.
// Ranges that wrap midnight (e.g. 22:00-06:00) are handled.
func (cr ClockRange) ContainsMinute(m int) bool {
	if cr.StartMin <= cr.EndMin {
		return m >= cr.StartMin && m < cr.EndMin
	}
	return m >= cr.StartMin || m < cr.EndMin
}
