package models

import (
	"fmt"
	"time"
)

// SlotOption is one concrete candidate meeting interval offered to the user.
// Rank is the 1-based position in the last-offered list; users refer to
// options positionally ("the first one").
type SlotOption struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Score float64   `json:"score"`
	Rank  int       `json:"rank"`
}

func (s SlotOption) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Label formats the option for a spoken/displayed offer, e.g.
// "Tuesday, December 16 at 2:00 PM - 2:30 PM".
func (s SlotOption) Label() string {
	return fmt.Sprintf("%s, %s at %s - %s",
		s.Start.Weekday().String(),
		s.Start.Format("January 2"),
		s.Start.Format("3:04 PM"),
		s.End.Format("3:04 PM"),
	)
}

// Relaxation records one documented loosening applied during fallback search,
// so the response can disclose it.
type Relaxation struct {
	Kind   string `json:"kind"` // "day-part", "widen-window", "drop-exclusion"
	Detail string `json:"detail,omitempty"`
}

// MatchResult is the slot matcher's output: ranked options plus the
// relaxations (in order) it took to find them.
type MatchResult struct {
	Options     []SlotOption `json:"options"`
	Relaxations []Relaxation `json:"relaxations,omitempty"`
}

// Relaxed reports whether any fallback relaxation fired.
func (m MatchResult) Relaxed() bool {
	return len(m.Relaxations) > 0
}
