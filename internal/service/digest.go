package service

import (
	"context"
	"time"

	"github.com/Kerhoff/eventboard/internal/models"
)

// DigestCallback receives the agenda for a day that has just started.
type DigestCallback func(date string, events []*models.Event)

// StartDigestScheduler checks the clock every interval and invokes the
// callback once per calendar day with that day's agenda. It blocks until
// the context is cancelled, so it should be launched in a separate goroutine.
func (s *Service) StartDigestScheduler(ctx context.Context, interval time.Duration, now func() time.Time, callback DigestCallback) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Agenda digest scheduler started")

	var last string
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Agenda digest scheduler stopped")
			return
		case <-ticker.C:
			last = s.sendDigest(ctx, now(), last, callback)
		}
	}
}

// sendDigest fires the callback when today differs from the last digest
// date and returns the date that was covered.
func (s *Service) sendDigest(ctx context.Context, now time.Time, last string, callback DigestCallback) string {
	today := now.Format(models.DateLayout)
	if today == last {
		return last
	}

	events, err := s.Agenda(ctx, today)
	if err != nil {
		s.logger.Errorf("Failed to build agenda digest for %s: %v", today, err)
		return last
	}

	callback(today, events)
	return today
}
