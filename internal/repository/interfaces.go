package repository

import (
	"context"

	"github.com/Kerhoff/eventboard/internal/models"
)

// EventRepository defines the interface for calendar event operations.
// Events are partitioned by their Date; every event lives in exactly one
// partition. Returned events are copies owned by the caller.
type EventRepository interface {
	Create(ctx context.Context, draft models.EventDraft) (*models.Event, error)
	Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	GetByDate(ctx context.Context, date string) ([]*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Dates(ctx context.Context) ([]string, error)
	Range(ctx context.Context, from, to string) (map[string][]*models.Event, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore defines the interface for named durable slots holding a
// single serialized value each.
type SessionStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
