package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/service"
)

const notFoundReply = "❌ Event not found. Use /events <date> to see event ids."

// userReply turns expected service failures into a reply for the chat.
// Anything else is returned as an error for the router to report.
func userReply(err error) (string, error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		lines := make([]string, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			lines = append(lines, fmt.Sprintf("• %s %s", fe.Field, fe.Message))
		}
		return "❌ " + escape(strings.Join(lines, "\n")), nil
	case errors.Is(err, models.ErrNotFound):
		return notFoundReply, nil
	}
	return "", err
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// formatEvent renders one agenda line.
func formatEvent(e *models.Event) string {
	when := "all day"
	if !e.IsAllDay() {
		when = e.StartTime
		if e.EndTime != "" {
			when += "-" + e.EndTime
		}
	}
	line := fmt.Sprintf("• %s *%s*", when, escape(e.Title))
	if e.Location != "" {
		line += " @ " + escape(e.Location)
	}
	return line + fmt.Sprintf("\n  `%s`", e.ID)
}

// FormatAgenda renders the events of one day.
func FormatAgenda(date string, events []*models.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf("📅 Nothing planned for %s.", date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s*\n", date)
	for _, e := range events {
		b.WriteString("\n")
		b.WriteString(formatEvent(e))
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// EventAddHandler – /event <title> <date> [time]
// ---------------------------------------------------------------------------

// EventAddHandler handles the /event command. The date (YYYY-MM-DD) and
// optional start time (HH:MM) are taken from the end of the argument list;
// everything before them is the title.
type EventAddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewEventAddHandler creates a new EventAddHandler.
func NewEventAddHandler(svc *service.Service, logger *logrus.Logger) *EventAddHandler {
	return &EventAddHandler{svc: svc, logger: logger}
}

// Handle processes the /event command.
func (h *EventAddHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if len(args) < 2 {
		return "❌ Please provide a title and date.\n\n" +
			"*Usage:*\n" +
			"`/event Meeting 2025-01-15 14:00`\n" +
			"`/event Birthday party 2025-03-20`", nil
	}

	var date, start string
	last := len(args) - 1
	if models.ValidClock(args[last]) {
		start = args[last]
		last--
	}
	if last >= 0 && models.ValidDate(args[last]) {
		date = args[last]
		last--
	}
	if date == "" {
		return "❌ Could not find a date in your command.\n" +
			"Please use the format `YYYY-MM-DD`.", nil
	}
	if last < 0 {
		return "❌ Please provide an event title before the date.", nil
	}

	draft := models.EventDraft{
		Title:      strings.Join(args[:last+1], " "),
		Date:       date,
		StartTime:  start,
		Visibility: models.VisibilityPublic,
	}
	if message.From != nil {
		draft.CreatedBy = message.From.UserName
	}

	event, err := h.svc.CreateEvent(ctx, draft)
	if err != nil {
		return userReply(err)
	}

	return "✅ *Event created!*\n\n" + formatEvent(event), nil
}

// ---------------------------------------------------------------------------
// EventsHandler – /events [date]
// ---------------------------------------------------------------------------

// EventsHandler shows the agenda for a date, today by default.
type EventsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
	now    func() time.Time
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(svc *service.Service, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, logger: logger, now: time.Now}
}

// Handle processes the /events command.
func (h *EventsHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	date := h.now().Format(models.DateLayout)
	if len(args) > 0 {
		date = args[0]
	}

	events, err := h.svc.Agenda(ctx, date)
	if err != nil {
		return userReply(err)
	}
	return FormatAgenda(date, events), nil
}

// ---------------------------------------------------------------------------
// MoveHandler – /move <id> <date>
// ---------------------------------------------------------------------------

// MoveHandler moves an event to another date.
type MoveHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewMoveHandler creates a new MoveHandler.
func NewMoveHandler(svc *service.Service, logger *logrus.Logger) *MoveHandler {
	return &MoveHandler{svc: svc, logger: logger}
}

func (h *MoveHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if len(args) != 2 {
		return "Usage: /move <id> <YYYY-MM-DD>", nil
	}

	event, err := h.svc.UpdateEvent(ctx, args[0], models.EventPatch{Date: &args[1]})
	if err != nil {
		return userReply(err)
	}
	return fmt.Sprintf("📆 Moved to *%s*\n\n%s", event.Date, formatEvent(event)), nil
}

// ---------------------------------------------------------------------------
// RenameHandler – /rename <id> <title>
// ---------------------------------------------------------------------------

// RenameHandler replaces an event's title.
type RenameHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewRenameHandler creates a new RenameHandler.
func NewRenameHandler(svc *service.Service, logger *logrus.Logger) *RenameHandler {
	return &RenameHandler{svc: svc, logger: logger}
}

func (h *RenameHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if len(args) < 2 {
		return "Usage: /rename <id> <new title>", nil
	}

	title := strings.Join(args[1:], " ")
	event, err := h.svc.UpdateEvent(ctx, args[0], models.EventPatch{Title: &title})
	if err != nil {
		return userReply(err)
	}
	return "✏️ Renamed\n\n" + formatEvent(event), nil
}

// ---------------------------------------------------------------------------
// EventDeleteHandler – /delevent <id>
// ---------------------------------------------------------------------------

// EventDeleteHandler removes an event by id.
type EventDeleteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewEventDeleteHandler creates a new EventDeleteHandler.
func NewEventDeleteHandler(svc *service.Service, logger *logrus.Logger) *EventDeleteHandler {
	return &EventDeleteHandler{svc: svc, logger: logger}
}

func (h *EventDeleteHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: /delevent <id>", nil
	}

	if err := h.svc.DeleteEvent(ctx, args[0]); err != nil {
		return userReply(err)
	}
	return "🗑 Event deleted.", nil
}
