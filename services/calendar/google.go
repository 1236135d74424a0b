package calendar

import (
	"context"
	"fmt"
	"time"

	"smartsched/models"
	"smartsched/utils"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Calendar API.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleProvider builds a provider from a service-account credentials file.
func NewGoogleProvider(ctx context.Context, credentialsFile, calendarID string) (*GoogleProvider, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{svc: svc, calendarID: calendarID}, nil
}

func (g *GoogleProvider) BusyIntervals(ctx context.Context, window models.Interval) ([]models.Interval, error) {
	logger := utils.GetLogger()

	req := &gcal.FreeBusyRequest{
		TimeMin: window.Start.Format(time.RFC3339),
		TimeMax: window.End.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: g.calendarID}},
	}
	resp, err := g.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[g.calendarID]
	if !ok {
		return nil, fmt.Errorf("freebusy response missing calendar %q", g.calendarID)
	}

	var busy []models.Interval
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			logger.Warn("skipping unparseable busy period", zap.String("start", p.Start), zap.Error(err))
			continue
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			logger.Warn("skipping unparseable busy period", zap.String("end", p.End), zap.Error(err))
			continue
		}
		busy = append(busy, models.Interval{Start: start, End: end})
	}
	return busy, nil
}

func (g *GoogleProvider) ResolveNamedEvent(ctx context.Context, label string, window models.Interval) (models.Interval, bool, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		Q(label).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return models.Interval{}, false, fmt.Errorf("event search failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return models.Interval{}, false, nil
	}

	ev := resp.Items[0]
	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return models.Interval{}, false, fmt.Errorf("bad event start %q: %w", ev.Start.DateTime, err)
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return models.Interval{}, false, fmt.Errorf("bad event end %q: %w", ev.End.DateTime, err)
	}
	return models.Interval{Start: start, End: end}, true, nil
}

func (g *GoogleProvider) CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error) {
	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &gcal.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("event insert failed: %w", err)
	}
	return created.Id, nil
}
