package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"smartsched/models"
)

// Parser converts natural-language time phrases into structured constraints
// against a reference instant. It is stateless and safe for concurrent use.
type Parser struct {
	DayParts          DayPartTable
	DefaultWindowDays int
}

func NewParser(dayParts DayPartTable) *Parser {
	if dayParts == nil {
		dayParts = DefaultDayParts()
	}
	return &Parser{DayParts: dayParts, DefaultWindowDays: 7}
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

const weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

var (
	ambiguousAltRe = regexp.MustCompile(`\b(` + weekdayAlt + `)\b\s+or\s+\b(` + weekdayAlt + `)\b`)

	weekdayRe = regexp.MustCompile(
		`(?:(not)\s+(?:on\s+)?)?(?:(next|this)\s+)?\b(` + weekdayAlt + `)s?\b(?:\s+(is fine|works for me|works|is okay|is ok))?`)

	anchorRe = regexp.MustCompile(
		`(?:(\d+|an|a|one|two|half an?)\s+(minutes?|mins?|hours?|hrs?)\s+)?\b(before|after)\s+(?:my\s+)?([a-z0-9 :'.]+)`)

	clockBoundRe = regexp.MustCompile(`\b(?:(not)\s+)?(before|after)\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

	atClockRe = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

	inUnitsRe = regexp.MustCompile(`\b(?:in\s+(\d+)\s+(days?|weeks?)|(\d+)\s+(days?|weeks?)\s+from\s+now)\b`)

	monthDayRe = regexp.MustCompile(
		`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// Parse converts one utterance fragment into zero or more constraints.
// Relative terms resolve against ref with calendar-aware arithmetic. Named
// anchors are resolved through the supplied map; unknown anchors produce a
// pending-anchor constraint rather than a guess.
func (p *Parser) Parse(fragment string, ref time.Time, anchors map[string]models.Interval) ([]models.TimeConstraint, error) {
	text := strings.ToLower(strings.TrimSpace(fragment))
	if text == "" {
		return nil, &UnrecognizedError{Phrase: fragment}
	}

	if m := ambiguousAltRe.FindStringSubmatch(text); m != nil {
		return nil, &AmbiguousError{
			Phrase:          fragment,
			Interpretations: []string{m[1], m[2]},
		}
	}

	var out []models.TimeConstraint

	// Exclusions and lifted exclusions come out of the weekday scan, and the
	// first non-negated weekday mention doubles as the date window.
	excluded, lifted, windowDay := p.scanWeekdays(text, ref)
	out = append(out, excluded...)
	out = append(out, lifted...)

	// "not too early" / "not too late" / weekend constraints.
	out = append(out, p.scanBoundExclusions(text)...)

	// Anchor-relative phrase consumes the rest of the text from its match on;
	// "an hour before my 5 PM call on friday" should not also read "friday"
	// as a date window.
	if c, matched := p.parseAnchor(text, ref, anchors); matched {
		out = appendAnchorOnly(out, c)
		// The offset words are stripped so they cannot double as a duration
		// phrase; the accumulator derives one from a stated offset instead.
		rest := text
		if loc := anchorRe.FindStringIndex(text); loc != nil {
			rest = text[:loc[0]] + text[loc[1]:]
		}
		if d, ok := ParseDuration(rest); ok {
			out = append(out, durationConstraint(d))
		}
		return out, nil
	}

	// Relative windows ("next week", "tomorrow", "in 3 days", "june 5",
	// "last weekday of the month").
	if win, conf, ok := p.parseRelativeWindow(text, ref); ok {
		windowDay = nil
		out = append(out, rangeConstraint(win, nil, conf))
	} else if windowDay != nil {
		win := dayWindow(*windowDay)
		out = append(out, rangeConstraint(win, nil, 0.8))
	}

	// Part-of-day narrows a pending single-day window, or rides along as a
	// preference for multi-day windows.
	if dp, ok := p.findDayPart(text); ok {
		out = p.applyDayPart(out, dp, ref)
	}

	// Specific clock time narrows further: "tuesday at 3 pm".
	if m := atClockRe.FindStringSubmatch(text); m != nil && !clockBoundRe.MatchString(text) {
		out = applyClockTime(out, m, ref)
	}

	if d, ok := ParseDuration(text); ok {
		out = append(out, durationConstraint(d))
	}

	if len(out) == 0 {
		return nil, &UnrecognizedError{Phrase: fragment}
	}
	return out, nil
}

// scanWeekdays walks every weekday mention, sorting them into exclusions
// ("not wednesday"), lifts ("wednesday is fine"), and a window candidate.
func (p *Parser) scanWeekdays(text string, ref time.Time) (exclusions, lifts []models.TimeConstraint, windowDay *time.Time) {
	for _, m := range weekdayRe.FindAllStringSubmatch(text, -1) {
		negated, qualifier, name, lift := m[1] != "", m[2], m[3], m[4] != ""
		wd := weekdayNames[name]

		switch {
		case lift:
			lifts = append(lifts, models.TimeConstraint{
				Kind:         models.ConstraintExclusion,
				LiftWeekdays: []time.Weekday{wd},
				Confidence:   0.7,
			})
		case negated:
			exclusions = append(exclusions, models.TimeConstraint{
				Kind:             models.ConstraintExclusion,
				ExcludedWeekdays: []time.Weekday{wd},
				Confidence:       0.6,
			})
		case windowDay == nil:
			day := resolveWeekday(ref, wd, qualifier)
			windowDay = &day
		}
	}
	return exclusions, lifts, windowDay
}

// resolveWeekday finds the referenced occurrence of wd after ref using
// weekday rollover, never day-count addition across month boundaries.
func resolveWeekday(ref time.Time, wd time.Weekday, qualifier string) time.Time {
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	if qualifier == "next" {
		days += 7
	}
	return startOfDay(ref).AddDate(0, 0, days)
}

func (p *Parser) scanBoundExclusions(text string) []models.TimeConstraint {
	var out []models.TimeConstraint

	if strings.Contains(text, "not too early") {
		out = append(out, clockExclusion(models.ClockRange{StartMin: 0, EndMin: 9 * 60}))
	}
	if strings.Contains(text, "not too late") {
		out = append(out, clockExclusion(models.ClockRange{StartMin: 18 * 60, EndMin: 24 * 60}))
	}

	switch {
	case strings.Contains(text, "weekdays only") || strings.Contains(text, "no weekends") ||
		strings.Contains(text, "not on the weekend") || strings.Contains(text, "not on a weekend"):
		out = append(out, models.TimeConstraint{
			Kind:             models.ConstraintExclusion,
			ExcludedWeekdays: []time.Weekday{time.Saturday, time.Sunday},
			Confidence:       0.6,
		})
	case strings.Contains(text, "weekends only") || strings.Contains(text, "on the weekend"):
		out = append(out, models.TimeConstraint{
			Kind: models.ConstraintExclusion,
			ExcludedWeekdays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			Confidence: 0.6,
		})
	}

	// "before 9" / "after 3 pm" with no event text bound the day directly;
	// a leading "not" flips which side of the clock value is given up.
	if m := clockBoundRe.FindStringSubmatch(text); m != nil && !anchorHasEventText(text) {
		if min, ok := clockToMinute(m[3], m[4], m[5]); ok {
			negated := m[1] != ""
			if (m[2] == "before") != negated {
				out = append(out, clockExclusion(models.ClockRange{StartMin: min, EndMin: 24 * 60}))
			} else {
				out = append(out, clockExclusion(models.ClockRange{StartMin: 0, EndMin: min}))
			}
		}
	}
	return out
}

// parseAnchor recognizes "an hour before my 5 PM call on friday" shapes.
// The offset defaults to one hour when only a direction is given.
func (p *Parser) parseAnchor(text string, ref time.Time, anchors map[string]models.Interval) (models.TimeConstraint, bool) {
	m := anchorRe.FindStringSubmatch(text)
	if m == nil {
		return models.TimeConstraint{}, false
	}
	tail := strings.TrimSpace(m[4])
	if !hasEventText(tail) {
		return models.TimeConstraint{}, false
	}

	offset := time.Hour
	if m[1] != "" {
		n := 1.0
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			n = v
		} else if v, ok := numberWords[m[1]]; ok {
			n = v
		} else if strings.HasPrefix(m[1], "half") {
			n = 0.5
		}
		if strings.HasPrefix(m[2], "m") {
			offset = time.Duration(n * float64(time.Minute))
		} else {
			offset = time.Duration(n * float64(time.Hour))
		}
	}

	label, dayHint := splitDayHint(tail, ref)

	c := models.TimeConstraint{
		AnchorRef:          label,
		AnchorOffset:       offset,
		AnchorBefore:       m[3] == "before",
		AnchorOffsetStated: m[1] != "",
	}
	if dayHint != nil {
		win := dayWindow(*dayHint)
		c.Earliest = &win.Start
		c.Latest = &win.End
	}

	if ev, ok := lookupAnchor(anchors, label); ok {
		c.Kind = models.ConstraintRelativeAnchor
		c.AnchorEvent = &ev
		c.Confidence = 0.9
	} else {
		c.Kind = models.ConstraintPendingAnchor
		c.Confidence = 0.5
	}
	return c, true
}

// splitDayHint peels a trailing "on friday" off an anchor label.
func splitDayHint(label string, ref time.Time) (string, *time.Time) {
	for name, wd := range weekdayNames {
		marker := " on " + name
		if idx := strings.Index(label, marker); idx >= 0 {
			day := resolveWeekday(ref, wd, "")
			return strings.TrimSpace(label[:idx]), &day
		}
	}
	return label, nil
}

// lookupAnchor matches a parsed label against known anchors by containment in
// either direction, so "5 pm call" finds an anchor registered as "call".
func lookupAnchor(anchors map[string]models.Interval, label string) (models.Interval, bool) {
	if anchors == nil {
		return models.Interval{}, false
	}
	label = strings.ToLower(label)
	if ev, ok := anchors[label]; ok {
		return ev, true
	}
	for name, ev := range anchors {
		name = strings.ToLower(name)
		if strings.Contains(label, name) || strings.Contains(name, label) {
			return ev, true
		}
	}
	return models.Interval{}, false
}

// parseRelativeWindow handles week/month/day relative phrases. All produced
// windows are bounded.
func (p *Parser) parseRelativeWindow(text string, ref time.Time) (models.Interval, float64, bool) {
	today := startOfDay(ref)

	switch {
	case strings.Contains(text, "next week"):
		weekStart := startOfNextWeek(ref)
		win := models.Interval{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}
		// Vague sub-window modifiers bound rather than widen.
		if strings.Contains(text, "late next week") {
			win.Start = win.End.AddDate(0, 0, -2)
		} else if strings.Contains(text, "early next week") {
			win.End = win.Start.AddDate(0, 0, 2)
		}
		return win, 0.8, true

	case strings.Contains(text, "this week"):
		return models.Interval{Start: today, End: startOfNextWeek(ref)}, 0.8, true

	case strings.Contains(text, "next month"):
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
		return models.Interval{Start: first, End: first.AddDate(0, 1, 0)}, 0.7, true

	case strings.Contains(text, "this month"):
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return models.Interval{Start: today, End: first.AddDate(0, 1, 0)}, 0.7, true

	case strings.Contains(text, "last weekday of the month"):
		day := lastWeekdayOfMonth(ref)
		return dayWindow(day), 0.8, true

	case strings.Contains(text, "day after tomorrow"):
		return dayWindow(today.AddDate(0, 0, 2)), 0.9, true

	case strings.Contains(text, "tomorrow"):
		return dayWindow(today.AddDate(0, 0, 1)), 0.9, true

	case strings.Contains(text, "today"):
		return dayWindow(today), 0.9, true
	}

	if m := inUnitsRe.FindStringSubmatch(text); m != nil {
		numStr, unit := m[1], m[2]
		if numStr == "" {
			numStr, unit = m[3], m[4]
		}
		n, err := strconv.Atoi(numStr)
		if err == nil {
			if strings.HasPrefix(unit, "week") {
				start := today.AddDate(0, 0, n*7)
				return models.Interval{Start: start, End: start.AddDate(0, 0, 7)}, 0.8, true
			}
			return dayWindow(today.AddDate(0, 0, n)), 0.8, true
		}
	}

	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		month := monthNames[m[1]]
		dayNum, err := strconv.Atoi(m[2])
		if err == nil && dayNum >= 1 && dayNum <= 31 {
			day := time.Date(ref.Year(), month, dayNum, 0, 0, 0, 0, ref.Location())
			if day.Before(today) {
				day = day.AddDate(1, 0, 0)
			}
			// Reject rollover artifacts like february 30.
			if day.Day() == dayNum {
				return dayWindow(day), 0.7, true
			}
		}
	}

	return models.Interval{}, 0, false
}

func (p *Parser) findDayPart(text string) (models.DayPart, bool) {
	for label, dp := range p.DayParts {
		if strings.Contains(text, label) {
			return dp, true
		}
	}
	return models.DayPart{}, false
}

// applyDayPart narrows a single-day range constraint to the part-of-day hours
// and records the preference. A part of day with no date still yields a
// bounded default window; unbounded windows are disallowed.
func (p *Parser) applyDayPart(cs []models.TimeConstraint, dp models.DayPart, ref time.Time) []models.TimeConstraint {
	for i := range cs {
		if cs[i].Kind != models.ConstraintAbsoluteRange {
			continue
		}
		c := cs[i]
		c.DayPart = &dp
		if c.Earliest != nil && c.Latest != nil && c.Latest.Sub(*c.Earliest) <= 24*time.Hour {
			day := startOfDay(*c.Earliest)
			e := day.Add(time.Duration(dp.StartHour) * time.Hour)
			l := day.Add(time.Duration(dp.EndHour) * time.Hour)
			if dp.EndHour <= dp.StartHour { // wraps midnight
				l = l.AddDate(0, 0, 1)
			}
			c.Earliest, c.Latest = &e, &l
		}
		cs[i] = c
		return cs
	}
	days := p.DefaultWindowDays
	if days <= 0 {
		days = 7
	}
	earliest := ref.Add(time.Hour).Truncate(time.Minute)
	latest := startOfDay(ref).AddDate(0, 0, days+1)
	return append(cs, models.TimeConstraint{
		Kind:       models.ConstraintAbsoluteRange,
		Earliest:   &earliest,
		Latest:     &latest,
		DayPart:    &dp,
		Confidence: 0.6,
	})
}

// applyClockTime pins a range constraint to a specific start time,
// "tuesday at 3 pm" becoming a one-hour window from 15:00.
func applyClockTime(cs []models.TimeConstraint, m []string, ref time.Time) []models.TimeConstraint {
	min, ok := clockToMinute(m[1], m[2], m[3])
	if !ok {
		return cs
	}
	for i := range cs {
		if cs[i].Kind != models.ConstraintAbsoluteRange || cs[i].Earliest == nil {
			continue
		}
		c := cs[i]
		day := startOfDay(*c.Earliest)
		e := day.Add(time.Duration(min) * time.Minute)
		l := e.Add(time.Hour)
		c.Earliest, c.Latest = &e, &l
		cs[i] = c
		return cs
	}
	day := startOfDay(ref)
	e := day.Add(time.Duration(min) * time.Minute)
	if !e.After(ref) {
		e = e.AddDate(0, 0, 1)
	}
	l := e.Add(time.Hour)
	return append(cs, models.TimeConstraint{
		Kind:       models.ConstraintAbsoluteRange,
		Earliest:   &e,
		Latest:     &l,
		Confidence: 0.7,
	})
}

func clockToMinute(hourStr, minStr, ampm string) (int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute := 0
	if minStr != "" {
		minute, err = strconv.Atoi(minStr)
		if err != nil || minute < 0 || minute > 59 {
			return 0, false
		}
	}
	switch ampm {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		// Bare small hours in scheduling context read as daytime.
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return hour*60 + minute, true
}

func anchorHasEventText(text string) bool {
	m := anchorRe.FindStringSubmatch(text)
	return m != nil && hasEventText(strings.TrimSpace(m[4]))
}

// Relative-date vocabulary that can trail "before"/"after" without naming an
// event: "the day after tomorrow", "after next week".
var relativeDayWords = map[string]struct{}{
	"today": {}, "tomorrow": {}, "tonight": {}, "yesterday": {},
	"next": {}, "this": {}, "week": {}, "month": {}, "weekend": {},
	"morning": {}, "afternoon": {}, "evening": {}, "night": {},
}

// hasEventText reports whether an anchor tail names an actual event rather
// than a bare clock value or day term.
func hasEventText(tail string) bool {
	for _, word := range strings.Fields(tail) {
		word = strings.Trim(word, ".':")
		if word == "" || word == "am" || word == "pm" || word == "on" || word == "the" || word == "my" {
			continue
		}
		if _, isDay := weekdayNames[word]; isDay {
			continue
		}
		if _, isRelative := relativeDayWords[word]; isRelative {
			continue
		}
		if _, err := strconv.Atoi(strings.ReplaceAll(word, ":", "")); err == nil {
			continue
		}
		return true
	}
	return false
}

func appendAnchorOnly(cs []models.TimeConstraint, anchor models.TimeConstraint) []models.TimeConstraint {
	return append(cs, anchor)
}

func durationConstraint(d time.Duration) models.TimeConstraint {
	return models.TimeConstraint{
		Kind:       models.ConstraintDuration,
		Duration:   d,
		Confidence: 0.9,
	}
}

func rangeConstraint(win models.Interval, dp *models.DayPart, conf float64) models.TimeConstraint {
	start, end := win.Start, win.End
	return models.TimeConstraint{
		Kind:       models.ConstraintAbsoluteRange,
		Earliest:   &start,
		Latest:     &end,
		DayPart:    dp,
		Confidence: conf,
	}
}

func clockExclusion(cr models.ClockRange) models.TimeConstraint {
	return models.TimeConstraint{
		Kind:          models.ConstraintExclusion,
		ExcludedClock: &cr,
		Confidence:    0.5,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayWindow(day time.Time) models.Interval {
	start := startOfDay(day)
	return models.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// startOfNextWeek returns the Monday after ref.
func startOfNextWeek(ref time.Time) time.Time {
	days := (int(time.Monday) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return startOfDay(ref).AddDate(0, 0, days)
}

// lastWeekdayOfMonth returns the last Monday-to-Friday day of ref's month.
func lastWeekdayOfMonth(ref time.Time) time.Time {
	firstOfNext := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
	day := firstOfNext.AddDate(0, 0, -1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Describe renders a constraint for clarifying questions and logs.
func Describe(c models.TimeConstraint) string {
	switch c.Kind {
	case models.ConstraintDuration:
		return fmt.Sprintf("duration %s", c.Duration)
	case models.ConstraintAbsoluteRange:
		if c.Earliest != nil && c.Latest != nil {
			return fmt.Sprintf("between %s and %s",
				c.Earliest.Format("Mon Jan 2 15:04"), c.Latest.Format("Mon Jan 2 15:04"))
		}
		if c.DayPart != nil {
			return "in the " + c.DayPart.Label
		}
		return "a time range"
	case models.ConstraintRelativeAnchor, models.ConstraintPendingAnchor:
		dir := "after"
		if c.AnchorBefore {
			dir = "before"
		}
		return fmt.Sprintf("%s %s %q", c.AnchorOffset, dir, c.AnchorRef)
	case models.ConstraintExclusion:
		if len(c.ExcludedWeekdays) > 0 {
			names := make([]string, len(c.ExcludedWeekdays))
			for i, wd := range c.ExcludedWeekdays {
				names[i] = wd.String()
			}
			return "not on " + strings.Join(names, ", ")
		}
		return "an excluded time range"
	}
	return string(c.Kind)
}
