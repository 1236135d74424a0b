package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/models"
)

func dec(d, hour int) time.Time {
	return time.Date(2025, 12, d, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func rangeC(earliest, latest time.Time) models.TimeConstraint {
	return models.TimeConstraint{
		Kind:     models.ConstraintAbsoluteRange,
		Earliest: &earliest,
		Latest:   &latest,
	}
}

func durationC(d time.Duration) models.TimeConstraint {
	return models.TimeConstraint{Kind: models.ConstraintDuration, Duration: d}
}

func TestMergeBuildsReadyRequest(t *testing.T) {
	req := models.SchedulingRequest{Status: models.StatusCollecting}

	req, err := Merge(req, []models.TimeConstraint{
		durationC(30 * time.Minute),
		rangeC(dec(15, 0), dec(22, 0)),
	})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, req.Duration)
	assert.Equal(t, dec(15, 0), req.Window.Earliest)
	assert.Equal(t, dec(22, 0), req.Window.Latest)
	assert.Equal(t, models.StatusReady, req.Status)
}

func TestMergeNarrowsWindow(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{rangeC(dec(15, 0), dec(22, 0))})
	require.NoError(t, err)

	req, err = Merge(req, []models.TimeConstraint{rangeC(dec(16, 0), dec(17, 0))})
	require.NoError(t, err)

	assert.Equal(t, dec(16, 0), req.Window.Earliest)
	assert.Equal(t, dec(17, 0), req.Window.Latest)
}

func TestMergeContradictionLeavesRequestUntouched(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{
		durationC(30 * time.Minute),
		rangeC(dec(15, 0), dec(22, 0)),
	})
	require.NoError(t, err)
	before := req.Clone()

	// Disjoint window: the returned request is the input, untouched.
	got, err := Merge(req, []models.TimeConstraint{rangeC(dec(1, 0), dec(2, 0))})
	require.Error(t, err)
	assert.True(t, IsContradiction(err))
	assert.Equal(t, before, got)

	// Conflicting duration.
	got, err = Merge(req, []models.TimeConstraint{durationC(time.Hour)})
	require.Error(t, err)
	assert.True(t, IsContradiction(err))
	assert.Equal(t, before, got)
}

func TestMergeExclusionAndLift(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{{
		Kind:             models.ConstraintExclusion,
		ExcludedWeekdays: []time.Weekday{time.Wednesday},
	}})
	require.NoError(t, err)
	require.Len(t, req.Exclusions, 1)
	assert.Equal(t, time.Wednesday, *req.Exclusions[0].Weekday)

	// Restating the same weekday does not duplicate.
	req, err = Merge(req, []models.TimeConstraint{{
		Kind:             models.ConstraintExclusion,
		ExcludedWeekdays: []time.Weekday{time.Wednesday},
	}})
	require.NoError(t, err)
	assert.Len(t, req.Exclusions, 1)

	// "Wednesday is fine" lifts it.
	req, err = Merge(req, []models.TimeConstraint{{
		Kind:         models.ConstraintExclusion,
		LiftWeekdays: []time.Weekday{time.Wednesday},
	}})
	require.NoError(t, err)
	assert.Empty(t, req.Exclusions)
}

func TestMergeRejectsFullDayExclusion(t *testing.T) {
	req := models.SchedulingRequest{}
	_, err := Merge(req, []models.TimeConstraint{{
		Kind:          models.ConstraintExclusion,
		ExcludedClock: &models.ClockRange{StartMin: 0, EndMin: 24 * 60},
	}})
	require.Error(t, err)
	assert.True(t, IsContradiction(err))
}

func TestMergeRejectsFullyExcludedSingleDay(t *testing.T) {
	req := models.SchedulingRequest{}
	// Dec 10 2025 is a Wednesday.
	_, err := Merge(req, []models.TimeConstraint{
		rangeC(dec(10, 0), dec(11, 0)),
		{Kind: models.ConstraintExclusion, ExcludedWeekdays: []time.Weekday{time.Wednesday}},
	})
	require.Error(t, err)
	assert.True(t, IsContradiction(err))
}

func TestMergeAnchorOutsideWindow(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{rangeC(dec(15, 0), dec(22, 0))})
	require.NoError(t, err)

	event := models.Interval{Start: dec(2, 15), End: dec(2, 16)}
	_, err = Merge(req, []models.TimeConstraint{{
		Kind:         models.ConstraintRelativeAnchor,
		AnchorRef:    "review",
		AnchorOffset: time.Hour,
		AnchorBefore: true,
		AnchorEvent:  &event,
	}})
	require.Error(t, err)
	assert.True(t, IsContradiction(err))
}

func TestMergePendingAnchorBlocksReady(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{
		durationC(time.Hour),
		{
			Kind:         models.ConstraintPendingAnchor,
			AnchorRef:    "dentist appointment",
			AnchorOffset: time.Hour,
			AnchorBefore: true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCollecting, req.Status)
	assert.True(t, req.HasPendingAnchor())

	resolved := ResolveAnchor(req, "dentist appointment", models.Interval{
		Start: dec(12, 15), End: dec(12, 16),
	})
	assert.False(t, resolved.HasPendingAnchor())
	assert.Equal(t, models.StatusReady, resolved.Status)
	// The input request is untouched.
	assert.True(t, req.HasPendingAnchor())
}

func TestMergeAnchorDayHintNarrowsWindow(t *testing.T) {
	req := models.SchedulingRequest{}
	req, err := Merge(req, []models.TimeConstraint{{
		Kind:         models.ConstraintPendingAnchor,
		AnchorRef:    "standup",
		AnchorOffset: 30 * time.Minute,
		AnchorBefore: true,
		Earliest:     ptr(dec(12, 0)),
		Latest:       ptr(dec(13, 0)),
	}})
	require.NoError(t, err)
	assert.Equal(t, dec(12, 0), req.Window.Earliest)
	assert.Equal(t, dec(13, 0), req.Window.Latest)
}

// "An hour before my call" carries the meeting length in its offset: the
// hour between the slot and the event is the meeting.
func TestMergeStatedBeforeOffsetImpliesDuration(t *testing.T) {
	event := models.Interval{Start: dec(12, 17), End: dec(12, 18)}
	req, err := Merge(models.SchedulingRequest{}, []models.TimeConstraint{{
		Kind:               models.ConstraintRelativeAnchor,
		AnchorRef:          "call",
		AnchorOffset:       time.Hour,
		AnchorBefore:       true,
		AnchorOffsetStated: true,
		AnchorEvent:        &event,
	}})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, req.Duration)
	assert.Equal(t, models.StatusReady, req.Status)

	// A stated duration wins over the implied one.
	withDuration, err := Merge(models.SchedulingRequest{Duration: 30 * time.Minute}, []models.TimeConstraint{{
		Kind:               models.ConstraintRelativeAnchor,
		AnchorRef:          "call",
		AnchorOffset:       time.Hour,
		AnchorBefore:       true,
		AnchorOffsetStated: true,
		AnchorEvent:        &event,
	}})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, withDuration.Duration)
}
