// File: service/ai/keyword.go
package ai

import (
	"context"
	"regexp"
	"strings"

	"smartsched/models"
)

// KeywordExtractor is the deterministic fallback: keyword matching over the
// lowercased utterance. It is deliberately coarse and never errors.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

var (
	durationPhraseRe = regexp.MustCompile(`(?i)\b(half an? hour|quarter(?: of an)? hour|an? hour(?: and a half)?|\d+(?:\.\d+)?\s*(?:minutes?|mins?|hours?|hrs?)|(?:one|two|three|four|five|six|ninety|sixty|thirty|forty[- ]five|fifteen|twenty)\s+(?:minutes?|hours?))\b`)

	selectionRe = regexp.MustCompile(`(?i)\b(first|second|third|earlier|later|latter|option\s*\d|\d+(?::\d{2})?\s*(?:am|pm)\s+one)\b`)

	bareNumberRe = regexp.MustCompile(`^\s*\d{1,2}\s*$`)

	timeWordRe = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow|tonight|morning|afternoon|evening|night|week|month|weekend|am|pm|o'?clock|before|after|early|late|between|january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

var cancelPhrases = []string{"cancel", "never mind", "nevermind", "forget it", "don't bother", "stop"}

var confirmPhrases = []string{"yes", "yep", "yeah", "sure", "sounds good", "sounds great", "perfect", "book it", "confirm", "go ahead", "let's do", "that works", "that one"}

var schedulePhrases = []string{"schedule", "set up", "book", "arrange", "find a time", "find time", "meeting", "meet with", "call with"}

func (k *KeywordExtractor) Extract(_ context.Context, text string) (models.UtteranceSignal, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	sig := models.UtteranceSignal{Intent: models.IntentChat}

	if containsAny(lower, cancelPhrases) {
		sig.Intent = models.IntentCancel
		return sig, nil
	}

	// A bare number is an ordinal pick of an offered slot.
	if bareNumberRe.MatchString(lower) {
		sig.Intent = models.IntentSelect
		sig.SelectionPhrase = lower
		return sig, nil
	}

	if m := durationPhraseRe.FindString(lower); m != "" {
		sig.DurationPhrase = m
	}
	hasTime := timeWordRe.MatchString(lower)

	// "the first one" and "the 3pm one" are picks even though the latter
	// carries a clock time.
	if m := selectionRe.FindString(lower); m != "" {
		if !hasTime || strings.Contains(lower, "one") {
			sig.Intent = models.IntentSelect
			sig.SelectionPhrase = lower
			return sig, nil
		}
	}

	switch {
	case containsAny(lower, schedulePhrases):
		sig.Intent = models.IntentSchedule
	case hasTime || sig.DurationPhrase != "":
		sig.Intent = models.IntentProvide
	case containsAny(lower, confirmPhrases):
		sig.Intent = models.IntentConfirm
		return sig, nil
	default:
		return sig, nil
	}

	if hasTime || sig.DurationPhrase != "" {
		sig.TimePhrases = []string{lower}
	}
	return sig, nil
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
