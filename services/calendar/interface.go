package calendar

import (
	"context"

	"smartsched/models"
)

// Provider is the calendar-access capability. One implementation per backend,
// selected by configuration.
type Provider interface {
	// BusyIntervals returns the busy spans inside the window. Callers may not
	// assume the result is disjoint or ordered; the availability resolver
	// normalizes it.
	BusyIntervals(ctx context.Context, window models.Interval) ([]models.Interval, error)

	// ResolveNamedEvent looks up an existing event by free-text label inside
	// the window. The boolean reports whether a match was found.
	ResolveNamedEvent(ctx context.Context, label string, window models.Interval) (models.Interval, bool, error)

	// CreateEvent books the event and returns its backend ID.
	CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error)
}
