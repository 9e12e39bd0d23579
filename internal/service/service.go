package service

import (
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/notify"
	"github.com/Kerhoff/eventboard/internal/repository"
)

// opRecorder receives the outcome of every store operation.
type opRecorder interface {
	ObserveOp(op string, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOp(string, error) {}

// Service is the business logic layer over the event store and the
// session slot. Transports call it; it never hands out store-owned records.
type Service struct {
	logger   *logrus.Logger
	events   repository.EventRepository
	sessions repository.SessionStore
	bus      *notify.Bus
	recorder opRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the operation recorder, usually *metrics.Metrics.
func WithRecorder(r opRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// New creates a Service with all required dependencies. The bus should be
// the one the event repository publishes its changes to.
func New(logger *logrus.Logger,
	events repository.EventRepository,
	sessions repository.SessionStore,
	bus *notify.Bus,
	opts ...Option,
) *Service {
	s := &Service{
		logger:   logger,
		events:   events,
		sessions: sessions,
		bus:      bus,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every committed event change. The returned
// function removes the subscription.
func (s *Service) Subscribe(fn func(models.Change)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}
