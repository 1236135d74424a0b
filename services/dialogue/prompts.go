package dialogue

import (
	"fmt"
	"strings"

	"smartsched/models"
)

// nextQuestion picks the highest-priority missing piece of the request:
// duration first, then a date window, then softer preferences.
func nextQuestion(req models.SchedulingRequest) string {
	switch {
	case req.Duration == 0:
		return "How long should the meeting be?"
	case req.Window.IsZero() || req.Window.Empty():
		return "What day or time range works for you?"
	case req.HasPendingAnchor():
		return pendingAnchorQuestion(req)
	default:
		return "Any preference within that range, like morning or afternoon?"
	}
}

func pendingAnchorQuestion(req models.SchedulingRequest) string {
	for _, rule := range req.Anchors {
		if rule.Pending() {
			return fmt.Sprintf("I couldn't find %q on your calendar. When is it?", rule.Ref)
		}
	}
	return "When is the event you mentioned?"
}

// offerReply lists the options and discloses any relaxations taken to find
// them.
func offerReply(result models.MatchResult) string {
	var sb strings.Builder
	if len(result.Options) == 1 {
		sb.WriteString("I found one time that works: ")
		sb.WriteString(result.Options[0].Label())
		sb.WriteString(". Shall I book it?")
	} else {
		sb.WriteString("Here are the times I found:")
		for _, opt := range result.Options {
			sb.WriteString(fmt.Sprintf("\n%d) %s", opt.Rank, opt.Label()))
		}
		sb.WriteString("\nWhich one works for you?")
	}
	if disclosure := relaxationDisclosure(result.Relaxations); disclosure != "" {
		sb.WriteString(" ")
		sb.WriteString(disclosure)
	}
	return sb.String()
}

func relaxationDisclosure(relaxations []models.Relaxation) string {
	if len(relaxations) == 0 {
		return ""
	}
	details := make([]string, 0, len(relaxations))
	for _, r := range relaxations {
		details = append(details, r.Detail)
	}
	return fmt.Sprintf("Note: to find these I %s.", strings.Join(details, ", and "))
}

func noOptionsReply() string {
	return "I couldn't find any open time matching everything you asked for, even after loosening the search. " +
		"Could you relax one of your preferences or suggest different days?"
}

func contradictionReply(reason string) string {
	return fmt.Sprintf("That conflicts with what we have so far (%s). I've kept your earlier preferences; which should change?", reason)
}

func confirmationReply(slot models.SlotOption) string {
	return fmt.Sprintf("Done. Your meeting is booked for %s.", slot.Label())
}

func cancelReply() string {
	return "No problem, I've cancelled this scheduling attempt. Just start a new session whenever you're ready."
}

func ambiguousReply(interpretations []string) string {
	return fmt.Sprintf("Did you mean %s?", strings.Join(interpretations, " or "))
}

func unrecognizedReply(phrase string) string {
	return fmt.Sprintf("I didn't catch the time in %q. Could you say it differently, like \"Tuesday afternoon\" or \"sometime next week\"?", phrase)
}

func chatNudgeReply(req models.SchedulingRequest) string {
	return "I can help you find a meeting time. " + nextQuestion(req)
}

func selectionAmbiguousReply(count int) string {
	if count == 0 {
		return "That doesn't match any of the times I offered. You can pick by number, like \"the first one\"."
	}
	return "That could mean more than one of the offered times. Could you pick by number?"
}
