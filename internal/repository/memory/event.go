package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/repository"
)

// maxIDAttempts bounds id regeneration when a generator keeps colliding.
const maxIDAttempts = 8

// EventStore keeps events in memory, partitioned by date. A secondary
// id -> date index is maintained in the same critical section as the
// partitions so each event is found in exactly one partition.
type EventStore struct {
	mu         sync.RWMutex
	partitions map[string][]*models.Event
	index      map[string]string

	newID    func() string
	observer func(models.Change)
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *EventStore) { s.newID = fn }
}

// WithObserver registers fn to receive every committed change. It is called
// after the store lock is released.
func WithObserver(fn func(models.Change)) Option {
	return func(s *EventStore) { s.observer = fn }
}

// NewEventStore creates an empty event store
func NewEventStore(opts ...Option) *EventStore {
	s := &EventStore{
		partitions: make(map[string][]*models.Event),
		index:      make(map[string]string),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repository.EventRepository = (*EventStore)(nil)

// Create stores the draft under a fresh id and appends it to its date.
func (s *EventStore) Create(ctx context.Context, draft models.EventDraft) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id, err := s.freshID()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	event := draft.Event(id)
	s.partitions[event.Date] = append(s.partitions[event.Date], event)
	s.index[id] = event.Date
	out := event.Clone()
	s.mu.Unlock()

	s.notify(models.Change{Type: models.ChangeCreated, Event: out})
	return out.Clone(), nil
}

// Update merges patch onto the event, moving it to the end of the new date
// when the date changes.
func (s *EventStore) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	date, pos, ok := s.locate(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}

	updated := patch.Apply(s.partitions[date][pos])

	change := models.Change{Type: models.ChangeUpdated}
	if updated.Date == date {
		s.partitions[date][pos] = updated
	} else {
		s.removeAt(date, pos)
		s.partitions[updated.Date] = append(s.partitions[updated.Date], updated)
		s.index[id] = updated.Date
		change.Type = models.ChangeMoved
		change.PreviousDate = date
	}
	out := updated.Clone()
	s.mu.Unlock()

	change.Event = out
	s.notify(change)
	return out.Clone(), nil
}

// Delete removes the event from its partition.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	date, pos, ok := s.locate(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	removed := s.partitions[date][pos]
	s.removeAt(date, pos)
	delete(s.index, id)
	s.mu.Unlock()

	s.notify(models.Change{Type: models.ChangeDeleted, Event: removed})
	return nil
}

// GetByDate returns copies of the partition in insertion order. A date with
// no events yields an empty slice.
func (s *EventStore) GetByDate(ctx context.Context, date string) ([]*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	partition := s.partitions[date]
	events := make([]*models.Event, 0, len(partition))
	for _, e := range partition {
		events = append(events, e.Clone())
	}
	return events, nil
}

// GetByID returns a copy of the event with the given id.
func (s *EventStore) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	date, pos, ok := s.locate(id)
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	return s.partitions[date][pos].Clone(), nil
}

// Dates returns the dates that hold at least one event, ascending.
func (s *EventStore) Dates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]string, 0, len(s.partitions))
	for d := range s.partitions {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

// Range returns copies of every non-empty partition with from <= date <= to,
// taken under a single read lock.
func (s *EventStore) Range(ctx context.Context, from, to string) (map[string][]*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]*models.Event)
	for date, partition := range s.partitions {
		if date < from || date > to {
			continue
		}
		events := make([]*models.Event, 0, len(partition))
		for _, e := range partition {
			events = append(events, e.Clone())
		}
		out[date] = events
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index), nil
}

// locate must be called with the lock held.
func (s *EventStore) locate(id string) (date string, pos int, ok bool) {
	date, ok = s.index[id]
	if !ok {
		return "", 0, false
	}
	for i, e := range s.partitions[date] {
		if e.ID == id {
			return date, i, true
		}
	}
	return "", 0, false
}

// removeAt must be called with the write lock held. Empty partitions are
// dropped.
func (s *EventStore) removeAt(date string, pos int) {
	partition := s.partitions[date]
	copy(partition[pos:], partition[pos+1:])
	partition[len(partition)-1] = nil
	partition = partition[:len(partition)-1]
	if len(partition) == 0 {
		delete(s.partitions, date)
		return
	}
	s.partitions[date] = partition
}

func (s *EventStore) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, taken := s.index[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique event id after %d attempts", maxIDAttempts)
}

func (s *EventStore) notify(change models.Change) {
	if s.observer != nil {
		s.observer(change)
	}
}
