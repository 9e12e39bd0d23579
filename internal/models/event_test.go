package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	out := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestEventDraft_Validate(t *testing.T) {
	valid := EventDraft{Title: "Standup", Date: "2024-03-04", StartTime: "09:00", EndTime: "09:15", Visibility: VisibilityFriends}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*EventDraft)
		fields []string
	}{
		{name: "blank title", mutate: func(d *EventDraft) { d.Title = "   " }, fields: []string{"title"}},
		{name: "missing date", mutate: func(d *EventDraft) { d.Date = "" }, fields: []string{"date"}},
		{name: "impossible date", mutate: func(d *EventDraft) { d.Date = "2023-02-29" }, fields: []string{"date"}},
		{name: "short date", mutate: func(d *EventDraft) { d.Date = "2024-3-4" }, fields: []string{"date"}},
		{name: "bad clocks", mutate: func(d *EventDraft) { d.StartTime = "24:00"; d.EndTime = "9:00" }, fields: []string{"startTime", "endTime"}},
		{name: "bad visibility", mutate: func(d *EventDraft) { d.Visibility = "" }, fields: []string{"visibility"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.fields, fieldsOf(t, err))
		})
	}
}

func TestEventDraft_NormalizeAndEvent(t *testing.T) {
	attendees := []string{"ann"}
	d := EventDraft{Title: " Lunch ", Date: " 2024-03-04", Location: " cafe ", Visibility: VisibilityPublic, Attendees: attendees}.Normalize()
	assert.Equal(t, "Lunch", d.Title)
	assert.Equal(t, "2024-03-04", d.Date)
	assert.Equal(t, "cafe", d.Location)

	e := d.Event("id-1")
	assert.Equal(t, "id-1", e.ID)
	assert.True(t, e.IsAllDay())

	attendees[0] = "bob"
	assert.Equal(t, []string{"ann"}, e.Attendees)
}

func TestEventPatch_ApplyLeavesOriginal(t *testing.T) {
	orig := &Event{ID: "e1", Title: "Old", Date: "2024-03-04", Visibility: VisibilityPublic, Attendees: []string{"ann"}}

	title := "New"
	attendees := []string{}
	dead := true
	out := EventPatch{Title: &title, IsDeadTime: &dead, Attendees: &attendees}.Apply(orig)

	assert.Equal(t, "New", out.Title)
	assert.True(t, out.IsDeadTime)
	assert.Empty(t, out.Attendees)
	assert.Equal(t, "e1", out.ID)
	assert.Equal(t, "2024-03-04", out.Date)

	assert.Equal(t, "Old", orig.Title)
	assert.Equal(t, []string{"ann"}, orig.Attendees)
}

func TestEventPatch_Validate(t *testing.T) {
	assert.True(t, EventPatch{}.IsEmpty())
	assert.NoError(t, EventPatch{}.Validate())

	empty := ""
	date := "03/04/2024"
	clock := "7pm"
	err := EventPatch{Title: &empty, Date: &date, StartTime: &clock}.Normalize().Validate()
	assert.Equal(t, []string{"title", "date", "startTime"}, fieldsOf(t, err))

	none := ""
	assert.NoError(t, EventPatch{StartTime: &none}.Validate())
}

func TestValidationError_Message(t *testing.T) {
	one := NewValidationError("date", "required")
	assert.Equal(t, "validation: date required", one.Error())
	assert.ErrorIs(t, one, ErrValidation)

	many := &ValidationError{Errors: []FieldError{{Field: "title"}, {Field: "date"}}}
	assert.Equal(t, "validation: 2 errors (title, date)", many.Error())
}

func TestChange_Dates(t *testing.T) {
	e := &Event{ID: "e1", Date: "2024-03-05"}
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, Change{Type: ChangeMoved, Event: e, PreviousDate: "2024-03-04"}.Dates())
	assert.Equal(t, []string{"2024-03-05"}, Change{Type: ChangeUpdated, Event: e}.Dates())
	assert.Nil(t, Change{}.Dates())
}
