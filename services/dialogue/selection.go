package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"smartsched/models"
)

var (
	ordinalRe   = regexp.MustCompile(`\b(first|second|third|1st|2nd|3rd|option\s*(\d))\b`)
	pickClockRe = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	pickDayRe   = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// resolveSelection maps a pick phrase onto exactly one offered option, by
// ordinal ("the first one"), clock time ("the 3pm one"), or weekday
// ("friday works"). Anything that matches zero or more than one option is
// ambiguous.
func resolveSelection(phrase string, offer []models.SlotOption) (*models.SlotOption, error) {
	if len(offer) == 0 {
		return nil, &SelectionAmbiguousError{Phrase: phrase, Matches: 0}
	}
	lower := strings.ToLower(phrase)

	// A bare number is an ordinal pick.
	if n, err := strconv.Atoi(strings.TrimSpace(lower)); err == nil {
		if n < 1 || n > len(offer) {
			return nil, &SelectionAmbiguousError{Phrase: phrase, Matches: 0}
		}
		return &offer[n-1], nil
	}

	if idx, ok := ordinalIndex(lower); ok {
		if idx < 0 || idx >= len(offer) {
			return nil, &SelectionAmbiguousError{Phrase: phrase, Matches: 0}
		}
		return &offer[idx], nil
	}
	if strings.Contains(lower, "earlier") {
		return &offer[0], nil
	}
	if strings.Contains(lower, "later") || strings.Contains(lower, "latter") || strings.Contains(lower, "last") {
		return &offer[len(offer)-1], nil
	}

	matches := filterByClock(lower, offer)
	matches = filterByDay(lower, matches)
	if len(matches) == 1 {
		return &matches[0], nil
	}
	return nil, &SelectionAmbiguousError{Phrase: phrase, Matches: len(matches)}
}

func ordinalIndex(lower string) (int, bool) {
	m := ordinalRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	switch m[1] {
	case "first", "1st":
		return 0, true
	case "second", "2nd":
		return 1, true
	case "third", "3rd":
		return 2, true
	}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err == nil && n >= 1 {
			return n - 1, true
		}
	}
	return 0, false
}

func filterByClock(lower string, offer []models.SlotOption) []models.SlotOption {
	m := pickClockRe.FindStringSubmatch(lower)
	if m == nil {
		return offer
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}

	var out []models.SlotOption
	for _, opt := range offer {
		if opt.Start.Hour() == hour && opt.Start.Minute() == minute {
			out = append(out, opt)
		}
	}
	return out
}

func filterByDay(lower string, offer []models.SlotOption) []models.SlotOption {
	m := pickDayRe.FindString(lower)
	if m == "" {
		return offer
	}
	var out []models.SlotOption
	for _, opt := range offer {
		if strings.ToLower(opt.Start.Weekday().String()) == m {
			out = append(out, opt)
		}
	}
	return out
}
