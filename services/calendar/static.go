package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smartsched/models"

	"github.com/google/uuid"
)

// StaticProvider is an in-memory calendar seeded with busy intervals and named
// events. It backs demos and tests when no real calendar is configured.
type StaticProvider struct {
	mu     sync.RWMutex
	busy   []models.Interval
	events map[string]models.Interval

	// Fail forces errors from BusyIntervals, simulating an unreachable
	// calendar backend.
	Fail bool
	// FailTimes fails only the first N calls when > 0.
	FailTimes int
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{events: map[string]models.Interval{}}
}

// SeedBusy adds busy intervals to the calendar.
func (s *StaticProvider) SeedBusy(ivs ...models.Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = append(s.busy, ivs...)
}

// SeedEvent registers a named event, e.g. "call" on Friday 17:00-17:30.
func (s *StaticProvider) SeedEvent(label string, iv models.Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[strings.ToLower(label)] = iv
}

func (s *StaticProvider) BusyIntervals(ctx context.Context, window models.Interval) ([]models.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := s.Fail
	if s.FailTimes > 0 {
		s.FailTimes--
		fail = true
	}
	if fail {
		return nil, fmt.Errorf("static calendar: backend unavailable")
	}

	var out []models.Interval
	for _, iv := range s.busy {
		if iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *StaticProvider) ResolveNamedEvent(ctx context.Context, label string, window models.Interval) (models.Interval, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Interval{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(label)
	for name, iv := range s.events {
		if !iv.Overlaps(window) {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			return iv, true, nil
		}
	}
	return models.Interval{}, false, nil
}

func (s *StaticProvider) CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "evt_" + uuid.New().String()[:8]
	s.events[strings.ToLower(event.Summary)] = event.Interval()
	s.busy = append(s.busy, event.Interval())
	return id, nil
}
