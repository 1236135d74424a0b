package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericDurationRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(minutes?|mins?|m\b|hours?|hrs?|h\b)`)
	wordDurationRe    = regexp.MustCompile(`\b(an?|one|two|three|four|five|six)\s+(hours?|minutes?)\b`)
)

var numberWords = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
}

// ParseDuration extracts a meeting duration from free text: "30 minutes",
// "1 hour", "an hour", "half an hour", "1.5 hours", "90 min", "2h",
// "an hour and a half". The boolean reports whether anything matched.
func ParseDuration(text string) (time.Duration, bool) {
	text = strings.ToLower(text)

	// Fractional idioms first so "half an hour" doesn't read as "an hour".
	switch {
	case strings.Contains(text, "half an hour") || strings.Contains(text, "half hour"):
		return 30 * time.Minute, true
	case strings.Contains(text, "quarter of an hour") || strings.Contains(text, "quarter hour"):
		return 15 * time.Minute, true
	}

	andAHalf := strings.Contains(text, "and a half")

	if m := numericDurationRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if strings.HasPrefix(m[2], "h") {
				if andAHalf {
					n += 0.5
				}
				return time.Duration(n * float64(time.Hour)), true
			}
			return time.Duration(n * float64(time.Minute)), true
		}
	}

	if m := wordDurationRe.FindStringSubmatch(text); m != nil {
		n := numberWords[m[1]]
		if strings.HasPrefix(m[2], "hour") {
			if andAHalf {
				n += 0.5
			}
			return time.Duration(n * float64(time.Hour)), true
		}
		return time.Duration(n * float64(time.Minute)), true
	}

	return 0, false
}
