package models

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the partition key format for events.
const DateLayout = "2006-01-02"

// Visibility controls who can see an event
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibility values
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Event represents a single calendar occurrence
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"`
	StartTime   string     `json:"startTime,omitempty"`
	EndTime     string     `json:"endTime,omitempty"`
	Location    string     `json:"location,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Color       string     `json:"color,omitempty"`
	IsDeadTime  bool       `json:"isDeadTime,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	Attendees   []string   `json:"attendees,omitempty"`
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	c := *e
	if e.Attendees != nil {
		c.Attendees = append([]string(nil), e.Attendees...)
	}
	return &c
}

// IsAllDay returns true if the event has no start time
func (e *Event) IsAllDay() bool {
	return e.StartTime == ""
}

// EventDraft is the input for creating an event. It carries every Event
// field except the ID, which the store assigns.
type EventDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"`
	StartTime   string     `json:"startTime,omitempty"`
	EndTime     string     `json:"endTime,omitempty"`
	Location    string     `json:"location,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Color       string     `json:"color,omitempty"`
	IsDeadTime  bool       `json:"isDeadTime,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	Attendees   []string   `json:"attendees,omitempty"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (d EventDraft) Normalize() EventDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Date = strings.TrimSpace(d.Date)
	d.StartTime = strings.TrimSpace(d.StartTime)
	d.EndTime = strings.TrimSpace(d.EndTime)
	d.Location = strings.TrimSpace(d.Location)
	d.Color = strings.TrimSpace(d.Color)
	return d
}

// Validate checks all fields and collects all errors.
func (d EventDraft) Validate() error {
	var errs []FieldError

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "required"})
	}
	errs = appendDateError(errs, d.Date)
	errs = appendClockError(errs, "startTime", d.StartTime)
	errs = appendClockError(errs, "endTime", d.EndTime)
	if !d.Visibility.Valid() {
		errs = append(errs, FieldError{Field: "visibility", Message: "must be one of public, friends, private"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Event builds an event from the draft with the given id.
func (d EventDraft) Event(id string) *Event {
	e := &Event{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Location:    d.Location,
		Visibility:  d.Visibility,
		Color:       d.Color,
		IsDeadTime:  d.IsDeadTime,
		CreatedBy:   d.CreatedBy,
	}
	if d.Attendees != nil {
		e.Attendees = append([]string(nil), d.Attendees...)
	}
	return e
}

// EventPatch is a partial set of field overwrites. A nil field is left
// unchanged. The ID cannot be patched.
type EventPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Date        *string     `json:"date,omitempty"`
	StartTime   *string     `json:"startTime,omitempty"`
	EndTime     *string     `json:"endTime,omitempty"`
	Location    *string     `json:"location,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
	Color       *string     `json:"color,omitempty"`
	IsDeadTime  *bool       `json:"isDeadTime,omitempty"`
	CreatedBy   *string     `json:"createdBy,omitempty"`
	Attendees   *[]string   `json:"attendees,omitempty"`
}

// IsEmpty returns true if the patch sets no field
func (p EventPatch) IsEmpty() bool {
	return p == EventPatch{}
}

// Normalize trims surrounding whitespace from every set text field.
func (p EventPatch) Normalize() EventPatch {
	p.Title = trimPtr(p.Title)
	p.Description = trimPtr(p.Description)
	p.Date = trimPtr(p.Date)
	p.StartTime = trimPtr(p.StartTime)
	p.EndTime = trimPtr(p.EndTime)
	p.Location = trimPtr(p.Location)
	p.Color = trimPtr(p.Color)
	return p
}

// Validate checks every set field with the same rules as EventDraft.
func (p EventPatch) Validate() error {
	var errs []FieldError

	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "must not be empty"})
	}
	if p.Date != nil {
		errs = appendDateError(errs, *p.Date)
	}
	if p.StartTime != nil {
		errs = appendClockError(errs, "startTime", *p.StartTime)
	}
	if p.EndTime != nil {
		errs = appendClockError(errs, "endTime", *p.EndTime)
	}
	if p.Visibility != nil && !p.Visibility.Valid() {
		errs = append(errs, FieldError{Field: "visibility", Message: "must be one of public, friends, private"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Apply returns a copy of e with the patch merged onto it.
func (p EventPatch) Apply(e *Event) *Event {
	out := e.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.StartTime != nil {
		out.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		out.EndTime = *p.EndTime
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Visibility != nil {
		out.Visibility = *p.Visibility
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.IsDeadTime != nil {
		out.IsDeadTime = *p.IsDeadTime
	}
	if p.CreatedBy != nil {
		out.CreatedBy = *p.CreatedBy
	}
	if p.Attendees != nil {
		out.Attendees = append([]string(nil), (*p.Attendees)...)
	}
	return out
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	return clockRegex.MatchString(s)
}

func appendDateError(errs []FieldError, date string) []FieldError {
	switch {
	case strings.TrimSpace(date) == "":
		return append(errs, FieldError{Field: "date", Message: "required"})
	case !ValidDate(date):
		return append(errs, FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	return errs
}

func appendClockError(errs []FieldError, field, value string) []FieldError {
	if value != "" && !ValidClock(value) {
		return append(errs, FieldError{Field: field, Message: "must be HH:MM"})
	}
	return errs
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
