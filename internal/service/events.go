package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/eventboard/internal/models"
)

// CreateEvent validates the draft and stores it under its date.
func (s *Service) CreateEvent(ctx context.Context, draft models.EventDraft) (*models.Event, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		s.recorder.ObserveOp("create", err)
		return nil, err
	}

	event, err := s.events.Create(ctx, draft)
	s.recorder.ObserveOp("create", err)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"date":     event.Date,
	}).Info("Calendar event created")

	return event, nil
}

// UpdateEvent merges the patch onto the event, moving it when the date
// changes. An unknown id yields models.ErrNotFound.
func (s *Service) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	if id == "" {
		err := models.NewValidationError("id", "required")
		s.recorder.ObserveOp("update", err)
		return nil, err
	}
	if patch.IsEmpty() {
		err := models.NewValidationError("patch", "no fields to update")
		s.recorder.ObserveOp("update", err)
		return nil, err
	}
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		s.recorder.ObserveOp("update", err)
		return nil, err
	}

	event, err := s.events.Update(ctx, id, patch)
	s.recorder.ObserveOp("update", err)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.WithField("event_id", id).Warn("Update for unknown event")
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"date":     event.Date,
	}).Info("Calendar event updated")

	return event, nil
}

// DeleteEvent removes the event. An unknown id yields models.ErrNotFound.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		err := models.NewValidationError("id", "required")
		s.recorder.ObserveOp("delete", err)
		return err
	}

	err := s.events.Delete(ctx, id)
	s.recorder.ObserveOp("delete", err)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.WithField("event_id", id).Warn("Delete for unknown event")
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.WithField("event_id", id).Info("Calendar event deleted")
	return nil
}

// EventsByDate returns the date's events in insertion order.
func (s *Service) EventsByDate(ctx context.Context, date string) ([]*models.Event, error) {
	if !models.ValidDate(date) {
		return nil, models.NewValidationError("date", "must be YYYY-MM-DD")
	}

	events, err := s.events.GetByDate(ctx, date)
	s.recorder.ObserveOp("get_by_date", err)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// EventByID returns a single event or models.ErrNotFound.
func (s *Service) EventByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	s.recorder.ObserveOp("get_by_id", err)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
