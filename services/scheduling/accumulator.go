package scheduling

import (
	"fmt"
	"time"

	"smartsched/models"
)

// Merge folds newly parsed constraints into the running request. The merge is
// all-or-nothing: on contradiction the input request is returned unchanged so
// the caller can re-prompt without state corruption.
func Merge(req models.SchedulingRequest, cs []models.TimeConstraint) (models.SchedulingRequest, error) {
	next := req.Clone()

	for _, c := range cs {
		var err error
		switch c.Kind {
		case models.ConstraintDuration:
			err = mergeDuration(&next, c)
		case models.ConstraintAbsoluteRange:
			err = mergeRange(&next, c)
		case models.ConstraintExclusion:
			err = mergeExclusion(&next, c)
		case models.ConstraintRelativeAnchor, models.ConstraintPendingAnchor:
			err = mergeAnchor(&next, c)
		default:
			err = NewContradiction(fmt.Sprintf("unknown constraint kind %q", c.Kind), "constraint")
		}
		if err != nil {
			return req, err
		}
	}

	if err := checkWindowAgainstExclusions(next); err != nil {
		return req, err
	}

	refreshStatus(&next)
	return next, nil
}

func mergeDuration(req *models.SchedulingRequest, c models.TimeConstraint) error {
	if c.Duration <= 0 {
		return NewContradiction("duration must be positive", "duration")
	}
	if req.Duration != 0 && req.Duration != c.Duration {
		return NewContradiction(
			fmt.Sprintf("duration already set to %s, got %s", req.Duration, c.Duration),
			"duration")
	}
	req.Duration = c.Duration
	return nil
}

func mergeRange(req *models.SchedulingRequest, c models.TimeConstraint) error {
	if c.Earliest != nil && c.Latest != nil {
		incoming := models.DateWindow{Earliest: *c.Earliest, Latest: *c.Latest}
		if incoming.Empty() {
			return NewContradiction("time range is empty", "date_window")
		}
		if req.Window.IsZero() {
			req.Window = incoming
		} else {
			narrowed := models.DateWindow{
				Earliest: laterOf(req.Window.Earliest, incoming.Earliest),
				Latest:   earlierOf(req.Window.Latest, incoming.Latest),
			}
			if narrowed.Empty() {
				return NewContradiction(
					fmt.Sprintf("range %s-%s does not overlap current window %s-%s",
						incoming.Earliest.Format("Jan 2 15:04"), incoming.Latest.Format("Jan 2 15:04"),
						req.Window.Earliest.Format("Jan 2 15:04"), req.Window.Latest.Format("Jan 2 15:04")),
					"date_window")
			}
			req.Window = narrowed
		}
	}
	if c.DayPart != nil {
		dp := *c.DayPart
		req.DayPart = &dp
	}
	return nil
}

func mergeExclusion(req *models.SchedulingRequest, c models.TimeConstraint) error {
	// Affirmative lifts remove just the named weekday exclusions; everything
	// else merged earlier stays intact.
	for _, wd := range c.LiftWeekdays {
		kept := req.Exclusions[:0]
		for _, e := range req.Exclusions {
			if e.Weekday != nil && *e.Weekday == wd {
				continue
			}
			kept = append(kept, e)
		}
		req.Exclusions = kept
	}
	if len(c.LiftWeekdays) > 0 && len(c.ExcludedWeekdays) == 0 && c.ExcludedClock == nil && c.ExcludedDate == "" {
		return nil
	}

	for _, wd := range c.ExcludedWeekdays {
		if hasWeekdayExclusion(req.Exclusions, wd) {
			continue
		}
		day := wd
		req.Exclusions = append(req.Exclusions, models.Exclusion{Weekday: &day, Seq: req.NextSeq})
		req.NextSeq++
	}
	if c.ExcludedClock != nil {
		cr := *c.ExcludedClock
		if cr.StartMin == 0 && cr.EndMin >= 24*60 {
			return NewContradiction("exclusion would remove every hour of the day", "exclusions")
		}
		req.Exclusions = append(req.Exclusions, models.Exclusion{Clock: &cr, Seq: req.NextSeq})
		req.NextSeq++
	}
	if c.ExcludedDate != "" {
		req.Exclusions = append(req.Exclusions, models.Exclusion{Date: c.ExcludedDate, Seq: req.NextSeq})
		req.NextSeq++
	}
	return nil
}

func mergeAnchor(req *models.SchedulingRequest, c models.TimeConstraint) error {
	// A day hint on the anchor ("before my call on friday") narrows the
	// window the same way an absolute range would.
	if c.Earliest != nil && c.Latest != nil {
		if err := mergeRange(req, models.TimeConstraint{
			Kind:     models.ConstraintAbsoluteRange,
			Earliest: c.Earliest,
			Latest:   c.Latest,
		}); err != nil {
			return err
		}
	}

	rule := models.AnchorRule{
		Ref:    c.AnchorRef,
		Offset: c.AnchorOffset,
		Before: c.AnchorBefore,
	}
	// "An hour before my call" names the meeting length too: the hour between
	// the slot and the event is the meeting, unless a duration was stated.
	if c.AnchorOffsetStated && c.AnchorBefore && req.Duration == 0 {
		req.Duration = c.AnchorOffset
	}
	if c.AnchorEvent != nil {
		ev := *c.AnchorEvent
		rule.Event = &ev
		target := rule.TargetStart()
		if !req.Window.IsZero() &&
			(target.Before(req.Window.Earliest) || !target.Before(req.Window.Latest)) {
			return NewContradiction(
				fmt.Sprintf("anchor %q pins the meeting to %s, outside the current window",
					rule.Ref, target.Format("Mon Jan 2 15:04")),
				"anchors", "date_window")
		}
	}
	// The same anchor restated supersedes the previous rule.
	for i, existing := range req.Anchors {
		if existing.Ref == rule.Ref {
			req.Anchors[i] = rule
			return nil
		}
	}
	req.Anchors = append(req.Anchors, rule)
	return nil
}

// checkWindowAgainstExclusions rejects merges that leave a single-day window
// fully excluded.
func checkWindowAgainstExclusions(req models.SchedulingRequest) error {
	if req.Window.IsZero() {
		return nil
	}
	if req.Window.Latest.Sub(req.Window.Earliest) > 24*time.Hour {
		return nil
	}
	iv := models.Interval{Start: req.Window.Earliest, End: req.Window.Latest}
	for _, e := range req.Exclusions {
		if e.Weekday != nil && iv.Start.Weekday() == *e.Weekday {
			return NewContradiction(
				fmt.Sprintf("%s is excluded but the window only covers %s",
					e.Weekday.String(), iv.Start.Format("Mon Jan 2")),
				"date_window", "exclusions")
		}
		if e.Date != "" && iv.Start.Format("2006-01-02") == e.Date {
			return NewContradiction(
				fmt.Sprintf("date %s is excluded but the window only covers it", e.Date),
				"date_window", "exclusions")
		}
	}
	return nil
}

// refreshStatus flips to ready-to-resolve exactly when duration is known, the
// window is bounded and non-empty, and no anchor is still pending.
func refreshStatus(req *models.SchedulingRequest) {
	if req.Status == models.StatusResolved || req.Status == models.StatusAbandoned {
		return
	}
	windowKnown := !req.Window.IsZero() && !req.Window.Empty()
	if req.Duration > 0 && !req.HasPendingAnchor() && (windowKnown || hasResolvedAnchor(req)) {
		req.Status = models.StatusReady
	} else {
		req.Status = models.StatusCollecting
	}
}

// hasResolvedAnchor reports whether any anchor already pins a target start.
// Such a request needs no explicit window to be resolvable.
func hasResolvedAnchor(req *models.SchedulingRequest) bool {
	for _, a := range req.Anchors {
		if !a.Pending() {
			return true
		}
	}
	return false
}

// ResolveAnchor fills in a pending anchor rule once the calendar lookup
// succeeds, returning the updated request.
func ResolveAnchor(req models.SchedulingRequest, ref string, event models.Interval) models.SchedulingRequest {
	next := req.Clone()
	for i, a := range next.Anchors {
		if a.Ref == ref && a.Pending() {
			ev := event
			next.Anchors[i].Event = &ev
		}
	}
	refreshStatus(&next)
	return next
}

func hasWeekdayExclusion(es []models.Exclusion, wd time.Weekday) bool {
	for _, e := range es {
		if e.Weekday != nil && *e.Weekday == wd {
			return true
		}
	}
	return false
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
