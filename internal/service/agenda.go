package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Kerhoff/eventboard/internal/models"
)

// Agenda returns the date's events ordered for display: untimed events
// first, then by start time. Ties keep insertion order.
func (s *Service) Agenda(ctx context.Context, date string) ([]*models.Event, error) {
	events, err := s.EventsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	SortByStart(events)
	return events, nil
}

// SortByStart orders events in place by StartTime; events without a start
// time sort first.
func SortByStart(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime < events[j].StartTime
	})
}

// MarkedDates lists the dates that hold events, ascending.
func (s *Service) MarkedDates(ctx context.Context) ([]string, error) {
	dates, err := s.events.Dates(ctx)
	s.recorder.ObserveOp("dates", err)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	return dates, nil
}

// EventsInRange returns a consistent snapshot of the events dated within
// [from, to], keyed by date. Both bounds are YYYY-MM-DD.
func (s *Service) EventsInRange(ctx context.Context, from, to string) (map[string][]*models.Event, error) {
	if !models.ValidDate(from) {
		return nil, models.NewValidationError("from", "must be YYYY-MM-DD")
	}
	if !models.ValidDate(to) {
		return nil, models.NewValidationError("to", "must be YYYY-MM-DD")
	}
	if to < from {
		return nil, models.NewValidationError("to", "must not be before from")
	}

	out, err := s.events.Range(ctx, from, to)
	s.recorder.ObserveOp("range", err)
	if err != nil {
		return nil, fmt.Errorf("list events %s..%s: %w", from, to, err)
	}
	return out, nil
}
