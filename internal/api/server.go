package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/eventboard/internal/ics"
	"github.com/Kerhoff/eventboard/internal/metrics"
	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/service"
)

// maxBodyBytes caps JSON and iCalendar request bodies.
const maxBodyBytes = 1 << 20

// Server provides the HTTP API over the event store and session.
type Server struct {
	svc     *service.Service
	logger  *logrus.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
	now     func() time.Time
}

// NewServer creates a Server, registers all routes, and returns it. m may
// be nil to disable request metrics.
func NewServer(svc *service.Service, logger *logrus.Logger, m *metrics.Metrics) *Server {
	s := &Server{svc: svc, logger: logger, metrics: m, mux: http.NewServeMux(), now: time.Now}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Calendar events
	s.handle("GET /api/events", s.handleGetEvents)
	s.handle("GET /api/events/{id}", s.handleGetEvent)
	s.handle("POST /api/events", s.handleCreateEvent)
	s.handle("PATCH /api/events/{id}", s.handleUpdateEvent)
	s.handle("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.handle("GET /api/dates", s.handleGetDates)

	// API – iCalendar
	s.handle("GET /api/export.ics", s.handleExportICS)
	s.handle("POST /api/import.ics", s.handleImportICS)

	// API – Session
	s.handle("GET /api/session", s.handleGetSession)
	s.handle("PUT /api/session", s.handlePutSession)
	s.handle("DELETE /api/session", s.handleDeleteSession)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	if s.metrics == nil {
		s.mux.HandleFunc(pattern, h)
		return
	}
	s.mux.Handle(pattern, s.metrics.Middleware(pattern, h))
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service errors onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, what string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Errors})
	case errors.Is(err, models.ErrNotFound):
		s.respondError(w, http.StatusNotFound, what+" not found")
	default:
		s.logger.WithError(err).Errorf("failed to handle %s", what)
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// ---------------------------------------------------------------------------
// Calendar Events
// ---------------------------------------------------------------------------

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		s.respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	var (
		events []*models.Event
		err    error
	)
	if q.Get("sort") == "start" {
		events, err = s.svc.Agenda(r.Context(), date)
	} else {
		events, err = s.svc.EventsByDate(r.Context(), date)
	}
	if err != nil {
		s.respondServiceError(w, err, "events")
		return
	}

	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.svc.EventByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, err, "event")
		return
	}

	s.respondJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventDraft
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.svc.CreateEvent(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err, "event")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventPatch
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.UpdateEvent(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.respondServiceError(w, err, "event")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		s.respondServiceError(w, err, "event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.svc.MarkedDates(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "dates")
		return
	}

	s.respondJSON(w, http.StatusOK, dates)
}

// ---------------------------------------------------------------------------
// iCalendar
// ---------------------------------------------------------------------------

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}

	byDate, err := s.svc.EventsInRange(r.Context(), from, to)
	if err != nil {
		s.respondServiceError(w, err, "events")
		return
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	var events []*models.Event
	for _, d := range dates {
		events = append(events, byDate[d]...)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	if err := ics.Encode(w, events, s.now()); err != nil {
		s.logger.WithError(err).Error("failed to encode calendar")
	}
}

type importResponse struct {
	Created []*models.Event `json:"created"`
	Skipped []string        `json:"skipped,omitempty"`
}

func (s *Server) handleImportICS(w http.ResponseWriter, r *http.Request) {
	drafts, decodeErr := ics.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if decodeErr != nil && len(drafts) == 0 {
		s.respondError(w, http.StatusBadRequest, decodeErr.Error())
		return
	}

	resp := importResponse{Created: []*models.Event{}}
	if decodeErr != nil {
		resp.Skipped = append(resp.Skipped, decodeErr.Error())
	}
	for _, d := range drafts {
		created, err := s.svc.CreateEvent(r.Context(), d)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				resp.Skipped = append(resp.Skipped, fmt.Sprintf("%q: %v", d.Title, err))
				continue
			}
			s.respondServiceError(w, err, "event")
			return
		}
		resp.Created = append(resp.Created, created)
	}

	s.logger.WithFields(logrus.Fields{
		"created": len(resp.Created),
		"skipped": len(resp.Skipped),
	}).Info("Imported calendar")

	s.respondJSON(w, http.StatusCreated, resp)
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.CurrentUser(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "session")
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var req models.User
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := s.svc.SignIn(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err, "session")
		return
	}

	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SignOut(r.Context()); err != nil {
		s.respondServiceError(w, err, "session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
