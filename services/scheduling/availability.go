package scheduling

import (
	"context"
	"sort"
	"time"

	"smartsched/models"
	"smartsched/services/calendar"
	"smartsched/utils"

	"go.uber.org/zap"
)

// AvailabilityResolver queries the calendar capability for busy time and
// hands the slot matcher a minimal disjoint interval set.
type AvailabilityResolver struct {
	Calendar     calendar.Provider
	Timeout      time.Duration
	RetryBackoff time.Duration
}

func NewAvailabilityResolver(provider calendar.Provider, timeout time.Duration) *AvailabilityResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AvailabilityResolver{
		Calendar:     provider,
		Timeout:      timeout,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// ResolveBusy fetches busy intervals inside the window. The calendar call is
// retried once with backoff; a second failure surfaces as CalendarUnavailable
// rather than retrying indefinitely.
func (r *AvailabilityResolver) ResolveBusy(ctx context.Context, window models.Interval) ([]models.Interval, error) {
	logger := utils.GetLogger()

	busy, err := r.fetch(ctx, window)
	if err != nil {
		logger.Warn("busy interval fetch failed, retrying once",
			zap.Time("windowStart", window.Start), zap.Error(err))

		select {
		case <-time.After(r.RetryBackoff):
		case <-ctx.Done():
			return nil, &CalendarUnavailableError{Cause: ctx.Err()}
		}

		busy, err = r.fetch(ctx, window)
		if err != nil {
			return nil, &CalendarUnavailableError{Cause: err}
		}
	}

	return NormalizeBusy(busy), nil
}

func (r *AvailabilityResolver) fetch(ctx context.Context, window models.Interval) ([]models.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Calendar.BusyIntervals(ctx, window)
}

// NormalizeBusy sorts intervals and merges overlapping or adjacent ones into
// a minimal disjoint set, so downstream code never reasons about overlaps.
func NormalizeBusy(busy []models.Interval) []models.Interval {
	if len(busy) == 0 {
		return nil
	}
	sorted := make([]models.Interval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := []models.Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}
