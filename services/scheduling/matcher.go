package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartsched/models"
	"smartsched/utils"

	"go.uber.org/zap"
)

// MatcherConfig carries the tunables for slot search and relaxation.
type MatcherConfig struct {
	MaxOptions      int
	WidenCapDays    int
	WorkHoursStart  int
	WorkHoursEnd    int
	BufferMinutes   int
	RelaxationOrder []string
}

func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MaxOptions:      3,
		WidenCapDays:    3,
		WorkHoursStart:  9,
		WorkHoursEnd:    17,
		RelaxationOrder: []string{"day-part", "widen-window", "drop-exclusion"},
	}
}

// SlotMatcher turns a ready scheduling request plus calendar busy time into
// ranked slot options. Matching is a pure function of the request and the
// fetched busy set, so repeating a match with unchanged inputs yields the
// same options.
type SlotMatcher struct {
	Availability *AvailabilityResolver
	Config       MatcherConfig
}

func NewSlotMatcher(availability *AvailabilityResolver, cfg MatcherConfig) *SlotMatcher {
	if cfg.MaxOptions <= 0 {
		cfg.MaxOptions = 3
	}
	if cfg.WorkHoursEnd <= cfg.WorkHoursStart {
		cfg.WorkHoursStart, cfg.WorkHoursEnd = 9, 17
	}
	if len(cfg.RelaxationOrder) == 0 {
		cfg.RelaxationOrder = []string{"day-part", "widen-window", "drop-exclusion"}
	}
	return &SlotMatcher{Availability: availability, Config: cfg}
}

// Match searches the request window for admissible slots, relaxing
// constraints step by step when the strict search comes up empty. Every
// relaxation taken is recorded on the result so the dialogue layer can
// disclose it.
func (m *SlotMatcher) Match(ctx context.Context, req models.SchedulingRequest) (models.MatchResult, error) {
	if req.Status != models.StatusReady && req.Status != models.StatusResolved {
		return models.MatchResult{}, fmt.Errorf("match: request not ready (status %q)", req.Status)
	}

	// Busy time is fetched once over the widest window relaxation can
	// reach, so widening never triggers another calendar round trip.
	fetchWindow := m.fetchWindow(req)
	busy, err := m.Availability.ResolveBusy(ctx, fetchWindow)
	if err != nil {
		return models.MatchResult{}, err
	}
	busy = m.padBusy(busy)

	work := req.Clone()
	var relaxations []models.Relaxation

	options := m.candidates(work, busy)
	if len(options) == 0 {
		options, relaxations = m.relax(&work, busy)
	}

	if len(options) > m.Config.MaxOptions {
		options = options[:m.Config.MaxOptions]
	}
	for i := range options {
		options[i].Rank = i + 1
	}

	utils.GetLogger().Debug("slot match complete",
		zap.Int("options", len(options)),
		zap.Int("relaxations", len(relaxations)))

	return models.MatchResult{Options: options, Relaxations: relaxations}, nil
}

// fetchWindow spans the request window plus widening headroom. Anchor-only
// requests have no explicit window; their fetch window brackets the anchor
// targets instead.
func (m *SlotMatcher) fetchWindow(req models.SchedulingRequest) models.Interval {
	if !req.Window.IsZero() {
		return models.Interval{
			Start: req.Window.Earliest,
			End:   req.Window.Latest.AddDate(0, 0, m.Config.WidenCapDays),
		}
	}
	var win models.Interval
	for _, rule := range req.Anchors {
		if rule.Pending() {
			continue
		}
		target := rule.TargetStart()
		lo, hi := target.AddDate(0, 0, -1), target.AddDate(0, 0, 1)
		if win.IsZero() {
			win = models.Interval{Start: lo, End: hi}
			continue
		}
		if lo.Before(win.Start) {
			win.Start = lo
		}
		if hi.After(win.End) {
			win.End = hi
		}
	}
	return win
}

// padBusy grows each busy interval by the configured buffer on both sides,
// keeping travel or wrap-up time between the offered slot and existing events.
func (m *SlotMatcher) padBusy(busy []models.Interval) []models.Interval {
	if m.Config.BufferMinutes <= 0 {
		return busy
	}
	pad := time.Duration(m.Config.BufferMinutes) * time.Minute
	out := make([]models.Interval, len(busy))
	for i, b := range busy {
		out[i] = models.Interval{Start: b.Start.Add(-pad), End: b.End.Add(pad)}
	}
	return NormalizeBusy(out)
}

// relax walks the configured ladder, applying one step at a time and
// retrying, until options appear or every axis is exhausted.
func (m *SlotMatcher) relax(work *models.SchedulingRequest, busy []models.Interval) ([]models.SlotOption, []models.Relaxation) {
	var applied []models.Relaxation
	widened := 0

	for _, kind := range m.Config.RelaxationOrder {
		for {
			step, ok := m.relaxStep(work, kind, &widened)
			if !ok {
				break
			}
			applied = append(applied, step)
			if options := m.candidates(*work, busy); len(options) > 0 {
				return options, applied
			}
		}
	}
	return nil, applied
}

// relaxStep applies a single relaxation of the given kind, reporting false
// when that axis has nothing left to give.
func (m *SlotMatcher) relaxStep(work *models.SchedulingRequest, kind string, widened *int) (models.Relaxation, bool) {
	switch kind {
	case "day-part":
		if work.DayPart == nil {
			return models.Relaxation{}, false
		}
		label := work.DayPart.Label
		work.DayPart = nil
		return models.Relaxation{
			Kind:   "day-part",
			Detail: fmt.Sprintf("looked outside the %s", label),
		}, true

	case "widen-window":
		if work.Window.IsZero() || *widened >= m.Config.WidenCapDays {
			return models.Relaxation{}, false
		}
		work.Window.Latest = work.Window.Latest.AddDate(0, 0, 1)
		*widened++
		return models.Relaxation{
			Kind:   "widen-window",
			Detail: fmt.Sprintf("extended the search window through %s", work.Window.Latest.Format("Monday, January 2")),
		}, true

	case "drop-exclusion":
		if len(work.Exclusions) == 0 {
			return models.Relaxation{}, false
		}
		// Oldest exclusion goes first; later refinements reflect current
		// preferences more closely.
		oldest := 0
		for i, ex := range work.Exclusions {
			if ex.Seq < work.Exclusions[oldest].Seq {
				oldest = i
			}
		}
		dropped := work.Exclusions[oldest]
		work.Exclusions = append(work.Exclusions[:oldest], work.Exclusions[oldest+1:]...)
		return models.Relaxation{
			Kind:   "drop-exclusion",
			Detail: fmt.Sprintf("set aside the preference to avoid %s", describeExclusion(dropped)),
		}, true
	}
	return models.Relaxation{}, false
}

func describeExclusion(ex models.Exclusion) string {
	switch {
	case ex.Weekday != nil:
		return fmt.Sprintf("%ss", ex.Weekday.String())
	case ex.Date != "":
		return ex.Date
	case ex.Clock != nil:
		return fmt.Sprintf("%s to %s", clockLabel(ex.Clock.StartMin), clockLabel(ex.Clock.EndMin))
	}
	return "that time"
}

func clockLabel(minute int) string {
	h, m := minute/60, minute%60
	t := time.Date(2000, 1, 1, h, m, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

// candidates computes admissible slots for the request as it stands. Anchored
// requests pin slot starts to the anchor target; otherwise each maximal free
// interval inside the admissible time contributes one option at its earliest
// admissible start.
func (m *SlotMatcher) candidates(req models.SchedulingRequest, busy []models.Interval) []models.SlotOption {
	if anchored, pinned := m.anchorCandidates(req, busy); pinned {
		return anchored
	}
	if req.Window.IsZero() {
		return nil
	}

	var options []models.SlotOption
	for day := dayStart(req.Window.Earliest); day.Before(req.Window.Latest); day = day.AddDate(0, 0, 1) {
		for _, free := range m.dayFreeIntervals(req, day, busy) {
			if free.Duration() < req.Duration {
				continue
			}
			start := free.Start
			options = append(options, models.SlotOption{
				Start: start,
				End:   start.Add(req.Duration),
				Score: m.score(req, start),
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Score != options[j].Score {
			return options[i].Score > options[j].Score
		}
		return options[i].Start.Before(options[j].Start)
	})
	return options
}

// anchorCandidates returns pinned options for resolved anchor rules. The
// second return is false when the request carries no usable anchor.
func (m *SlotMatcher) anchorCandidates(req models.SchedulingRequest, busy []models.Interval) ([]models.SlotOption, bool) {
	var options []models.SlotOption
	seen := false
	for _, rule := range req.Anchors {
		if rule.Pending() {
			continue
		}
		seen = true
		start := rule.TargetStart()
		slot := models.Interval{Start: start, End: start.Add(req.Duration)}
		if !req.Window.IsZero() &&
			(start.Before(req.Window.Earliest) || slot.End.After(req.Window.Latest)) {
			continue
		}
		if m.blocked(req, slot, busy) {
			continue
		}
		options = append(options, models.SlotOption{
			Start: slot.Start,
			End:   slot.End,
			Score: 1.0,
		})
	}
	if !seen {
		return nil, false
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Start.Before(options[j].Start)
	})
	return options, true
}

func (m *SlotMatcher) blocked(req models.SchedulingRequest, slot models.Interval, busy []models.Interval) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	for _, ex := range req.Exclusions {
		if ex.Excludes(slot) {
			return true
		}
	}
	return false
}

// dayFreeIntervals computes the admissible free intervals for one calendar
// day: work hours clipped to the window and day part, clock exclusions
// subtracted, then busy time subtracted.
func (m *SlotMatcher) dayFreeIntervals(req models.SchedulingRequest, day time.Time, busy []models.Interval) []models.Interval {
	if dayExcluded(req, day) {
		return nil
	}

	startHour, endHour := m.Config.WorkHoursStart, m.Config.WorkHoursEnd
	if req.DayPart != nil {
		if req.DayPart.StartHour > startHour {
			startHour = req.DayPart.StartHour
		}
		if req.DayPart.EndHour < endHour {
			endHour = req.DayPart.EndHour
		}
	}
	if endHour <= startHour {
		return nil
	}

	admissible := models.Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
	admissible = clipToWindow(admissible, req.Window)
	if admissible.IsZero() || !admissible.Start.Before(admissible.End) {
		return nil
	}

	segments := []models.Interval{admissible}
	for _, ex := range req.Exclusions {
		if ex.Clock == nil {
			continue
		}
		if ex.Weekday != nil && *ex.Weekday != day.Weekday() {
			continue
		}
		blocked := models.Interval{
			Start: day.Add(time.Duration(ex.Clock.StartMin) * time.Minute),
			End:   day.Add(time.Duration(ex.Clock.EndMin) * time.Minute),
		}
		segments = subtractInterval(segments, blocked)
	}
	for _, b := range busy {
		segments = subtractInterval(segments, b)
	}
	return segments
}

func dayExcluded(req models.SchedulingRequest, day time.Time) bool {
	date := day.Format("2006-01-02")
	for _, ex := range req.Exclusions {
		if ex.Weekday != nil && ex.Clock == nil && *ex.Weekday == day.Weekday() {
			return true
		}
		if ex.Date != "" && ex.Date == date {
			return true
		}
	}
	return false
}

// subtractInterval removes blocked time from each segment, splitting
// segments the block falls inside.
func subtractInterval(segments []models.Interval, blocked models.Interval) []models.Interval {
	var out []models.Interval
	for _, seg := range segments {
		if !seg.Overlaps(blocked) {
			out = append(out, seg)
			continue
		}
		if blocked.Start.After(seg.Start) {
			out = append(out, models.Interval{Start: seg.Start, End: blocked.Start})
		}
		if blocked.End.Before(seg.End) {
			out = append(out, models.Interval{Start: blocked.End, End: seg.End})
		}
	}
	return out
}

func clipToWindow(iv models.Interval, window models.DateWindow) models.Interval {
	if iv.Start.Before(window.Earliest) {
		iv.Start = window.Earliest
	}
	if iv.End.After(window.Latest) {
		iv.End = window.Latest
	}
	if !iv.Start.Before(iv.End) {
		return models.Interval{}
	}
	return iv
}

// score prefers starts near the middle of the requested day part, then
// earlier starts. Scores stay in (0, 1].
func (m *SlotMatcher) score(req models.SchedulingRequest, start time.Time) float64 {
	score := 1.0
	if req.DayPart != nil {
		startMin := start.Hour()*60 + start.Minute()
		dist := startMin - req.DayPart.MidMinute()
		if dist < 0 {
			dist = -dist
		}
		score -= float64(dist) / (24 * 60)
	}
	return score
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
