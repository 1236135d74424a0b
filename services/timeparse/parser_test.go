package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/models"
)

// ref is Monday, December 8 2025, 10:00 UTC.
var ref = time.Date(2025, 12, 8, 10, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2025, 12, d, 0, 0, 0, 0, time.UTC)
}

func findKind(cs []models.TimeConstraint, kind models.ConstraintKind) (models.TimeConstraint, bool) {
	for _, c := range cs {
		if c.Kind == kind {
			return c, true
		}
	}
	return models.TimeConstraint{}, false
}

func TestParseWeekdayWindows(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name     string
		text     string
		earliest time.Time
		latest   time.Time
	}{
		{"bare weekday is the next occurrence", "tuesday", day(9), day(10)},
		{"next weekday skips a week", "next tuesday", day(16), day(17)},
		{"this weekday stays in range", "this friday", day(12), day(13)},
		{"next week spans monday to monday", "sometime next week", day(15), day(22)},
		{"late next week is the last two days", "late next week", day(20), day(22)},
		{"early next week is the first two days", "early next week", day(15), day(17)},
		{"tomorrow", "how about tomorrow", day(9), day(10)},
		{"day after tomorrow", "the day after tomorrow", day(10), day(11)},
		{"in n days", "in 3 days", day(11), day(12)},
		{"month and day", "on december 19", day(19), day(20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := p.Parse(tt.text, ref, nil)
			require.NoError(t, err)
			rng, ok := findKind(cs, models.ConstraintAbsoluteRange)
			require.True(t, ok, "expected a range constraint")
			assert.Equal(t, tt.earliest, *rng.Earliest)
			assert.Equal(t, tt.latest, *rng.Latest)
		})
	}
}

// "after" inside a relative-date phrase is a date, not an event anchor.
func TestParseRelativePhrasesAreNotAnchors(t *testing.T) {
	p := NewParser(nil)
	for _, text := range []string{"the day after tomorrow", "sometime after next week"} {
		cs, err := p.Parse(text, ref, nil)
		require.NoError(t, err, text)
		_, pending := findKind(cs, models.ConstraintPendingAnchor)
		assert.False(t, pending, text)
		_, anchored := findKind(cs, models.ConstraintRelativeAnchor)
		assert.False(t, anchored, text)
	}
}

func TestParseMonthDayRollsForward(t *testing.T) {
	p := NewParser(nil)
	cs, err := p.Parse("march 3", ref, nil)
	require.NoError(t, err)
	rng, ok := findKind(cs, models.ConstraintAbsoluteRange)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *rng.Earliest)
}

func TestParseDayPartNarrowsSingleDay(t *testing.T) {
	p := NewParser(nil)
	cs, err := p.Parse("tuesday afternoon", ref, nil)
	require.NoError(t, err)

	rng, ok := findKind(cs, models.ConstraintAbsoluteRange)
	require.True(t, ok)
	assert.Equal(t, day(9).Add(12*time.Hour), *rng.Earliest)
	assert.Equal(t, day(9).Add(17*time.Hour), *rng.Latest)
	require.NotNil(t, rng.DayPart)
	assert.Equal(t, "afternoon", rng.DayPart.Label)
}

func TestParseDayPartAloneGetsBoundedWindow(t *testing.T) {
	p := NewParser(nil)
	cs, err := p.Parse("sometime in the morning", ref, nil)
	require.NoError(t, err)

	rng, ok := findKind(cs, models.ConstraintAbsoluteRange)
	require.True(t, ok)
	require.NotNil(t, rng.Earliest)
	require.NotNil(t, rng.Latest)
	assert.True(t, rng.Earliest.After(ref), "window starts after the reference time")
	assert.True(t, rng.Latest.After(*rng.Earliest), "window must be non-empty")
	require.NotNil(t, rng.DayPart)
	assert.Equal(t, "morning", rng.DayPart.Label)
}

func TestParseClockTimePinsHourWindow(t *testing.T) {
	p := NewParser(nil)
	cs, err := p.Parse("tuesday at 3 pm", ref, nil)
	require.NoError(t, err)

	rng, ok := findKind(cs, models.ConstraintAbsoluteRange)
	require.True(t, ok)
	assert.Equal(t, day(9).Add(15*time.Hour), *rng.Earliest)
	assert.Equal(t, day(9).Add(16*time.Hour), *rng.Latest)
}

func TestParseExclusions(t *testing.T) {
	p := NewParser(nil)

	t.Run("negated weekday", func(t *testing.T) {
		cs, err := p.Parse("not on wednesday, any other day next week", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		assert.Equal(t, []time.Weekday{time.Wednesday}, ex.ExcludedWeekdays)
	})

	t.Run("not too early", func(t *testing.T) {
		cs, err := p.Parse("tomorrow, but not too early", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		require.NotNil(t, ex.ExcludedClock)
		assert.Equal(t, 0, ex.ExcludedClock.StartMin)
		assert.Equal(t, 9*60, ex.ExcludedClock.EndMin)
	})

	t.Run("not too late", func(t *testing.T) {
		cs, err := p.Parse("tomorrow, not too late please", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		require.NotNil(t, ex.ExcludedClock)
		assert.Equal(t, 18*60, ex.ExcludedClock.StartMin)
	})

	t.Run("before a clock time", func(t *testing.T) {
		cs, err := p.Parse("not before 10 am", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		require.NotNil(t, ex.ExcludedClock)
		assert.Equal(t, 0, ex.ExcludedClock.StartMin)
		assert.Equal(t, 10*60, ex.ExcludedClock.EndMin)
	})

	t.Run("bare before keeps the morning", func(t *testing.T) {
		cs, err := p.Parse("sometime before 3 pm", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		require.NotNil(t, ex.ExcludedClock)
		assert.Equal(t, 15*60, ex.ExcludedClock.StartMin)
		assert.Equal(t, 24*60, ex.ExcludedClock.EndMin)
	})

	t.Run("not after a clock time", func(t *testing.T) {
		cs, err := p.Parse("tomorrow, but not after 6 pm", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		require.NotNil(t, ex.ExcludedClock)
		assert.Equal(t, 18*60, ex.ExcludedClock.StartMin)
		assert.Equal(t, 24*60, ex.ExcludedClock.EndMin)
	})

	t.Run("weekday lift", func(t *testing.T) {
		cs, err := p.Parse("actually wednesday works for me", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		assert.Equal(t, []time.Weekday{time.Wednesday}, ex.LiftWeekdays)
		assert.Empty(t, ex.ExcludedWeekdays)
	})

	t.Run("no weekends", func(t *testing.T) {
		cs, err := p.Parse("next week, weekdays only", ref, nil)
		require.NoError(t, err)
		ex, ok := findKind(cs, models.ConstraintExclusion)
		require.True(t, ok)
		assert.ElementsMatch(t, []time.Weekday{time.Saturday, time.Sunday}, ex.ExcludedWeekdays)
	})
}

func TestParseAnchors(t *testing.T) {
	p := NewParser(nil)

	t.Run("unknown event is pending", func(t *testing.T) {
		cs, err := p.Parse("an hour before my dentist appointment", ref, nil)
		require.NoError(t, err)
		a, ok := findKind(cs, models.ConstraintPendingAnchor)
		require.True(t, ok)
		assert.Equal(t, "dentist appointment", a.AnchorRef)
		assert.Equal(t, time.Hour, a.AnchorOffset)
		assert.True(t, a.AnchorBefore)

		// The offset phrase must not leak into the meeting duration.
		_, hasDur := findKind(cs, models.ConstraintDuration)
		assert.False(t, hasDur)
	})

	t.Run("known event resolves immediately", func(t *testing.T) {
		event := models.Interval{
			Start: day(12).Add(15 * time.Hour),
			End:   day(12).Add(16 * time.Hour),
		}
		cs, err := p.Parse("right after my dentist appointment",
			ref, map[string]models.Interval{"dentist appointment": event})
		require.NoError(t, err)
		a, ok := findKind(cs, models.ConstraintRelativeAnchor)
		require.True(t, ok)
		require.NotNil(t, a.AnchorEvent)
		assert.Equal(t, event, *a.AnchorEvent)
		assert.False(t, a.AnchorBefore)
		assert.False(t, a.AnchorOffsetStated)
	})

	t.Run("explicit offset and day hint", func(t *testing.T) {
		cs, err := p.Parse("30 minutes before my standup on friday", ref, nil)
		require.NoError(t, err)
		a, ok := findKind(cs, models.ConstraintPendingAnchor)
		require.True(t, ok)
		assert.Equal(t, "standup", a.AnchorRef)
		assert.Equal(t, 30*time.Minute, a.AnchorOffset)
		assert.True(t, a.AnchorOffsetStated)
		require.NotNil(t, a.Earliest)
		assert.Equal(t, day(12), *a.Earliest)
		assert.Equal(t, day(13), *a.Latest)
	})
}

func TestParseAmbiguousAlternatives(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Parse("monday or tuesday", ref, nil)
	require.Error(t, err)
	require.True(t, IsAmbiguous(err))
	ambErr := err.(*AmbiguousError)
	assert.Equal(t, []string{"monday", "tuesday"}, ambErr.Interpretations)
}

func TestParseUnrecognized(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Parse("please and thank you", ref, nil)
	require.Error(t, err)
	assert.True(t, IsUnrecognized(err))
}

func TestParseDurationPhrases(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"30 minutes", 30 * time.Minute},
		{"45 min", 45 * time.Minute},
		{"1 hour", time.Hour},
		{"an hour", time.Hour},
		{"two hours", 2 * time.Hour},
		{"half an hour", 30 * time.Minute},
		{"quarter of an hour", 15 * time.Minute},
		{"1.5 hours", 90 * time.Minute},
		{"an hour and a half", 90 * time.Minute},
		{"90 minutes", 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDuration(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseDuration("no duration here")
	assert.False(t, ok)
}
