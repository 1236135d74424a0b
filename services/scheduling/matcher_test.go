package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/models"
	"smartsched/services/calendar"
)

func newTestMatcher(cal *calendar.StaticProvider, cfg MatcherConfig) *SlotMatcher {
	availability := NewAvailabilityResolver(cal, time.Second)
	availability.RetryBackoff = time.Millisecond
	return NewSlotMatcher(availability, cfg)
}

func afternoon() *models.DayPart {
	return &models.DayPart{Label: "afternoon", StartHour: 12, EndHour: 17}
}

// Tuesday afternoon with two busy blocks leaves exactly two maximal free
// intervals, each contributing one option.
func TestMatchOffersOneOptionPerFreeInterval(t *testing.T) {
	cal := calendar.NewStaticProvider()
	cal.SeedBusy(
		models.Interval{Start: dec(16, 14).Add(30 * time.Minute), End: dec(16, 15).Add(30 * time.Minute)},
		models.Interval{Start: dec(16, 16).Add(45 * time.Minute), End: dec(16, 17).Add(15 * time.Minute)},
	)
	m := newTestMatcher(cal, DefaultMatcherConfig())

	req := models.SchedulingRequest{
		Duration: 30 * time.Minute,
		Window:   models.DateWindow{Earliest: dec(16, 12), Latest: dec(16, 17)},
		DayPart:  afternoon(),
		Status:   models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Options, 2)
	assert.False(t, result.Relaxed())

	starts := []time.Time{result.Options[0].Start, result.Options[1].Start}
	assert.Contains(t, starts, dec(16, 12))
	assert.Contains(t, starts, dec(16, 15).Add(30*time.Minute))

	// Closer to the middle of the afternoon ranks first.
	assert.Equal(t, dec(16, 15).Add(30*time.Minute), result.Options[0].Start)
	assert.Equal(t, 1, result.Options[0].Rank)
	assert.Equal(t, 2, result.Options[1].Rank)
}

func TestMatchAnchorPinsSlot(t *testing.T) {
	cal := calendar.NewStaticProvider()
	m := newTestMatcher(cal, DefaultMatcherConfig())

	event := models.Interval{Start: dec(12, 17), End: dec(12, 18)}
	req := models.SchedulingRequest{
		Duration: time.Hour,
		Window:   models.DateWindow{Earliest: dec(12, 0), Latest: dec(13, 0)},
		Anchors: []models.AnchorRule{{
			Ref: "call", Offset: time.Hour, Before: true, Event: &event,
		}},
		Status: models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Options, 1)
	assert.Equal(t, dec(12, 16), result.Options[0].Start)
	assert.Equal(t, dec(12, 17), result.Options[0].End)
}

func TestMatchAnchorBlockedByBusy(t *testing.T) {
	cal := calendar.NewStaticProvider()
	cal.SeedBusy(models.Interval{Start: dec(12, 16), End: dec(12, 17)})
	m := newTestMatcher(cal, DefaultMatcherConfig())

	event := models.Interval{Start: dec(12, 17), End: dec(12, 18)}
	req := models.SchedulingRequest{
		Duration: time.Hour,
		Window:   models.DateWindow{Earliest: dec(12, 0), Latest: dec(13, 0)},
		Anchors: []models.AnchorRule{{
			Ref: "call", Offset: time.Hour, Before: true, Event: &event,
		}},
		Status: models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Options)
}

func TestMatchWidensWindowAndDisclosesIt(t *testing.T) {
	cal := calendar.NewStaticProvider()
	// Tuesday fully busy during work hours.
	cal.SeedBusy(models.Interval{Start: dec(16, 9), End: dec(16, 17)})
	m := newTestMatcher(cal, DefaultMatcherConfig())

	req := models.SchedulingRequest{
		Duration: 30 * time.Minute,
		Window:   models.DateWindow{Earliest: dec(16, 0), Latest: dec(17, 0)},
		Status:   models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Options)
	require.True(t, result.Relaxed())
	assert.Equal(t, "widen-window", result.Relaxations[0].Kind)
	// First open slot on the following day.
	assert.Equal(t, dec(17, 9), result.Options[0].Start)
}

func TestMatchDropsOldestExclusionLast(t *testing.T) {
	cal := calendar.NewStaticProvider()
	cfg := DefaultMatcherConfig()
	cfg.RelaxationOrder = []string{"drop-exclusion"}
	m := newTestMatcher(cal, cfg)

	tue, wed, thu := time.Tuesday, time.Wednesday, time.Thursday
	req := models.SchedulingRequest{
		Duration: 30 * time.Minute,
		Window:   models.DateWindow{Earliest: dec(16, 0), Latest: dec(19, 0)},
		Exclusions: []models.Exclusion{
			{Weekday: &tue, Seq: 0},
			{Weekday: &wed, Seq: 1},
			{Weekday: &thu, Seq: 2},
		},
		NextSeq: 3,
		Status:  models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Options)
	require.Len(t, result.Relaxations, 1)
	assert.Equal(t, "drop-exclusion", result.Relaxations[0].Kind)
	// The oldest exclusion (Tuesday) was dropped first.
	assert.Equal(t, time.Tuesday, result.Options[0].Start.Weekday())
}

func TestMatchCapsOptions(t *testing.T) {
	cal := calendar.NewStaticProvider()
	// Three gaps per day across a week would exceed the cap without it.
	cal.SeedBusy(
		models.Interval{Start: dec(16, 11), End: dec(16, 12)},
		models.Interval{Start: dec(17, 11), End: dec(17, 12)},
		models.Interval{Start: dec(18, 11), End: dec(18, 12)},
	)
	m := newTestMatcher(cal, DefaultMatcherConfig())

	req := models.SchedulingRequest{
		Duration: time.Hour,
		Window:   models.DateWindow{Earliest: dec(16, 0), Latest: dec(19, 0)},
		Status:   models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Options, 3)
	for i, opt := range result.Options {
		assert.Equal(t, i+1, opt.Rank)
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	cal := calendar.NewStaticProvider()
	cal.SeedBusy(models.Interval{Start: dec(16, 14), End: dec(16, 15)})
	m := newTestMatcher(cal, DefaultMatcherConfig())

	req := models.SchedulingRequest{
		Duration: 30 * time.Minute,
		Window:   models.DateWindow{Earliest: dec(16, 0), Latest: dec(17, 0)},
		Status:   models.StatusReady,
	}

	first, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	second, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatchRejectsUnreadyRequest(t *testing.T) {
	m := newTestMatcher(calendar.NewStaticProvider(), DefaultMatcherConfig())
	_, err := m.Match(context.Background(), models.SchedulingRequest{Status: models.StatusCollecting})
	require.Error(t, err)
}

func TestMatchBufferPadsBusyTime(t *testing.T) {
	cal := calendar.NewStaticProvider()
	cal.SeedBusy(models.Interval{Start: dec(16, 13), End: dec(16, 14)})

	cfg := DefaultMatcherConfig()
	cfg.BufferMinutes = 15
	m := newTestMatcher(cal, cfg)

	req := models.SchedulingRequest{
		Duration: 30 * time.Minute,
		Window:   models.DateWindow{Earliest: dec(16, 9), Latest: dec(16, 17)},
		Status:   models.StatusReady,
	}

	result, err := m.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Options, 2)

	starts := []time.Time{result.Options[0].Start, result.Options[1].Start}
	assert.Contains(t, starts, dec(16, 9))
	assert.Contains(t, starts, dec(16, 14).Add(15*time.Minute))
	for _, opt := range result.Options {
		free := models.Interval{Start: opt.Start, End: opt.End}
		padded := models.Interval{Start: dec(16, 12).Add(45 * time.Minute), End: dec(16, 14).Add(15 * time.Minute)}
		assert.False(t, free.Overlaps(padded))
	}
}
