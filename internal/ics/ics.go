// Package ics converts events to and from iCalendar.
//
// Events carry wall-clock dates and times without a zone, so DTSTART and
// DTEND are written as floating times (or VALUE=DATE for untimed events)
// and read back the same way.
//
// Dead time is written as TRANSP:OPAQUE and everything else as TRANSPARENT.
// RFC 5545 makes OPAQUE the default, so on import TRANSP is only mapped back
// to dead time for calendars produced by this package (matched on PRODID).
// Events from other calendars are imported as regular events.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Kerhoff/eventboard/internal/models"
)

const (
	productID     = "-//eventboard//calendar//EN"
	icsDateLayout = "20060102"
	icsTimeLayout = "20060102T150405"
)

const (
	// propertyAttendee carries one free-text attendee name. Names are not
	// calendar addresses and so do not fit ATTENDEE.
	propertyAttendee = ical.ComponentProperty("X-EVENTBOARD-ATTENDEE")
	// propertyEndTime holds the end time of an untimed event, which has no
	// DTEND of its own.
	propertyEndTime = ical.ComponentProperty("X-EVENTBOARD-END-TIME")
)

// Encode writes the events as a single VCALENDAR.
func Encode(w io.Writer, events []*models.Event, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		if err := addEvent(cal, e, now); err != nil {
			return fmt.Errorf("event %s: %w", e.ID, err)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, e *models.Event, now time.Time) error {
	day, err := time.Parse(models.DateLayout, e.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", e.Date, err)
	}

	ve := cal.AddEvent(e.ID)
	ve.SetDtStampTime(now.UTC())
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if e.Color != "" {
		ve.SetProperty(ical.ComponentPropertyColor, e.Color)
	}
	ve.SetProperty(ical.ComponentPropertyClass, classFor(e.Visibility))
	if e.IsDeadTime {
		ve.SetProperty(ical.ComponentPropertyTransp, "OPAQUE")
	} else {
		ve.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
	}
	for _, a := range e.Attendees {
		ve.AddProperty(propertyAttendee, a)
	}

	if e.IsAllDay() {
		ve.SetProperty(ical.ComponentPropertyDtStart, day.Format(icsDateLayout), ical.WithValue(string(ical.ValueDataTypeDate)))
		ve.SetProperty(ical.ComponentPropertyDtEnd, day.AddDate(0, 0, 1).Format(icsDateLayout), ical.WithValue(string(ical.ValueDataTypeDate)))
		if e.EndTime != "" {
			if _, err := atClock(day, e.EndTime); err != nil {
				return err
			}
			ve.SetProperty(propertyEndTime, e.EndTime)
		}
		return nil
	}

	start, err := atClock(day, e.StartTime)
	if err != nil {
		return err
	}
	ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(icsTimeLayout))

	if e.EndTime != "" {
		end, err := atClock(day, e.EndTime)
		if err != nil {
			return err
		}
		ve.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icsTimeLayout))
	}
	return nil
}

// Decode reads every VEVENT in the calendar as a draft. Events without a
// usable DTSTART are skipped and reported in the returned error, which is
// nil when everything converted.
func Decode(r io.Reader) ([]models.EventDraft, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	own := producedHere(cal)

	var (
		drafts []models.EventDraft
		errs   []error
	)
	for _, ve := range cal.Events() {
		d, err := draftFrom(ve, own)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts, errors.Join(errs...)
}

// producedHere reports whether the calendar's PRODID is ours.
func producedHere(cal *ical.Calendar) bool {
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == string(ical.PropertyProductId) {
			return p.Value == productID
		}
	}
	return false
}

func draftFrom(ve *ical.VEvent, own bool) (models.EventDraft, error) {
	d := models.EventDraft{Visibility: models.VisibilityPublic}

	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		d.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		d.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		d.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyColor); p != nil {
		d.Color = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyClass); p != nil {
		d.Visibility = visibilityFor(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyTransp); p != nil && own {
		d.IsDeadTime = strings.EqualFold(p.Value, "OPAQUE")
	}
	for _, p := range ve.GetProperties(propertyAttendee) {
		d.Attendees = append(d.Attendees, p.Value)
	}

	start := ve.GetProperty(ical.ComponentPropertyDtStart)
	if start == nil {
		return d, fmt.Errorf("vevent %q: missing DTSTART", uid)
	}
	date, clock, err := splitICSTime(start.Value)
	if err != nil {
		return d, fmt.Errorf("vevent %q: %w", uid, err)
	}
	d.Date, d.StartTime = date, clock

	switch {
	case clock != "":
		if end := ve.GetProperty(ical.ComponentPropertyDtEnd); end != nil {
			if _, endClock, err := splitICSTime(end.Value); err == nil {
				d.EndTime = endClock
			}
		}
	case own:
		if p := ve.GetProperty(propertyEndTime); p != nil {
			d.EndTime = p.Value
		}
	}
	return d, nil
}

// splitICSTime turns 20240304 or 20240304T090000[Z] into a date and an
// optional HH:MM.
func splitICSTime(v string) (date, clock string, err error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "Z")
	if !strings.Contains(v, "T") {
		t, err := time.Parse(icsDateLayout, v)
		if err != nil {
			return "", "", fmt.Errorf("invalid date %q", v)
		}
		return t.Format(models.DateLayout), "", nil
	}
	t, err := time.Parse(icsTimeLayout, v)
	if err != nil {
		return "", "", fmt.Errorf("invalid date-time %q", v)
	}
	return t.Format(models.DateLayout), t.Format("15:04"), nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func classFor(v models.Visibility) string {
	switch v {
	case models.VisibilityPrivate:
		return "PRIVATE"
	case models.VisibilityFriends:
		return "CONFIDENTIAL"
	default:
		return "PUBLIC"
	}
}

func visibilityFor(class string) models.Visibility {
	switch strings.ToUpper(strings.TrimSpace(class)) {
	case "PRIVATE":
		return models.VisibilityPrivate
	case "CONFIDENTIAL":
		return models.VisibilityFriends
	default:
		return models.VisibilityPublic
	}
}
