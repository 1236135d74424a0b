package models

import "time"

// RequestStatus tracks how far a negotiation has progressed.
type RequestStatus string

const (
	StatusCollecting RequestStatus = "collecting"
	StatusReady      RequestStatus = "ready-to-resolve"
	StatusResolved   RequestStatus = "resolved"
	StatusAbandoned  RequestStatus = "abandoned"
)

// DateWindow bounds the search. Invariant: Earliest <= Latest; merges that
// would violate this are rejected, never applied.
type DateWindow struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

func (w DateWindow) IsZero() bool {
	return w.Earliest.IsZero() && w.Latest.IsZero()
}

func (w DateWindow) Empty() bool {
	return !w.Earliest.Before(w.Latest)
}

// Exclusion removes otherwise-valid time from consideration. Exactly one of
// Weekday, Clock, Date is set. Seq records insertion order so the relaxation
// ladder can drop the least-recently-added one first.
type Exclusion struct {
	Weekday *time.Weekday `json:"weekday,omitempty"`
	Clock   *ClockRange   `json:"clock,omitempty"`
	Date    string        `json:"date,omitempty"`
	Seq     int           `json:"seq"`
}

// Excludes reports whether the exclusion knocks out the given slot interval.
func (e Exclusion) Excludes(iv Interval) bool {
	switch {
	case e.Weekday != nil:
		return iv.Start.Weekday() == *e.Weekday
	case e.Clock != nil:
		startMin := iv.Start.Hour()*60 + iv.Start.Minute()
		// A slot whose last minute still falls in the excluded range is out too.
		endMin := iv.End.Hour()*60 + iv.End.Minute()
		return e.Clock.ContainsMinute(startMin) || e.Clock.ContainsMinute(endMin-1)
	case e.Date != "":
		return iv.Start.Format("2006-01-02") == e.Date
	}
	return false
}

// AnchorRule ties the request to a named existing event: "before my 5 PM call
// by >= 1h". Event is nil while the anchor has not been looked up yet.
type AnchorRule struct {
	Ref    string        `json:"ref"`
	Offset time.Duration `json:"offset"`
	Before bool          `json:"before"`
	Event  *Interval     `json:"event,omitempty"`
}

// Pending reports whether the anchor still awaits calendar resolution.
func (a AnchorRule) Pending() bool {
	return a.Event == nil
}

// TargetStart computes the pinned start implied by the rule. Only valid once
// the anchor is resolved.
func (a AnchorRule) TargetStart() time.Time {
	if a.Before {
		return a.Event.Start.Add(-a.Offset)
	}
	return a.Event.End.Add(a.Offset)
}

// SchedulingRequest is the running merged state for one negotiation.
type SchedulingRequest struct {
	Duration   time.Duration `json:"duration"`
	Window     DateWindow    `json:"window"`
	DayPart    *DayPart      `json:"dayPart,omitempty"`
	Exclusions []Exclusion   `json:"exclusions,omitempty"`
	Anchors    []AnchorRule  `json:"anchors,omitempty"`
	Status     RequestStatus `json:"status"`

	// NextSeq is the insertion counter for exclusions.
	NextSeq int `json:"nextSeq"`
}

// Clone deep-copies the request so a failed merge can never corrupt it.
func (r SchedulingRequest) Clone() SchedulingRequest {
	out := r
	if r.DayPart != nil {
		dp := *r.DayPart
		out.DayPart = &dp
	}
	out.Exclusions = make([]Exclusion, len(r.Exclusions))
	for i, e := range r.Exclusions {
		out.Exclusions[i] = e
		if e.Weekday != nil {
			wd := *e.Weekday
			out.Exclusions[i].Weekday = &wd
		}
		if e.Clock != nil {
			cr := *e.Clock
			out.Exclusions[i].Clock = &cr
		}
	}
	out.Anchors = make([]AnchorRule, len(r.Anchors))
	for i, a := range r.Anchors {
		out.Anchors[i] = a
		if a.Event != nil {
			ev := *a.Event
			out.Anchors[i].Event = &ev
		}
	}
	return out
}

// HasPendingAnchor reports whether any anchor rule still awaits resolution.
func (r SchedulingRequest) HasPendingAnchor() bool {
	for _, a := range r.Anchors {
		if a.Pending() {
			return true
		}
	}
	return false
}
