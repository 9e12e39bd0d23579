package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/notify"
	"github.com/Kerhoff/eventboard/internal/repository/file"
	"github.com/Kerhoff/eventboard/internal/repository/memory"
)

type recordedOp struct {
	op  string
	err error
}

type fakeRecorder struct {
	ops []recordedOp
}

func (r *fakeRecorder) ObserveOp(op string, err error) {
	r.ops = append(r.ops, recordedOp{op: op, err: err})
}

func newTestService(t *testing.T) (*Service, *logtest.Hook, *fakeRecorder) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	bus := notify.NewBus()
	store := memory.NewEventStore(memory.WithObserver(bus.Publish))
	sessions, err := file.NewSessionStore(t.TempDir())
	require.NoError(t, err)

	rec := &fakeRecorder{}
	return New(logger, store, sessions, bus, WithRecorder(rec)), hook, rec
}

func strPtr(s string) *string { return &s }

func TestCreateEvent_TrimsAndStores(t *testing.T) {
	t.Parallel()
	svc, hook, rec := newTestService(t)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, models.EventDraft{
		Title:      "  Standup ",
		Date:       "2024-03-04",
		Visibility: models.VisibilityPublic,
	})
	require.NoError(t, err)
	assert.Equal(t, "Standup", event.Title)
	assert.NotEmpty(t, event.ID)

	events, err := svc.EventsByDate(ctx, "2024-03-04")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event, events[0])

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Calendar event created", hook.LastEntry().Message)
	assert.Equal(t, "create", rec.ops[0].op)
	assert.NoError(t, rec.ops[0].err)
}

func TestCreateEvent_ValidationNamesFields(t *testing.T) {
	t.Parallel()
	svc, _, rec := newTestService(t)

	_, err := svc.CreateEvent(context.Background(), models.EventDraft{
		Title:      " ",
		Date:       "2024-02-30",
		Visibility: "everyone",
	})
	require.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"title", "date", "visibility"}, fields)

	dates, _ := svc.MarkedDates(context.Background())
	assert.Empty(t, dates)
	assert.ErrorIs(t, rec.ops[0].err, models.ErrValidation)
}

func TestUpdateEvent_MoveAndNotify(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var changes []models.Change
	unsubscribe := svc.Subscribe(func(c models.Change) { changes = append(changes, c) })
	defer unsubscribe()

	e, err := svc.CreateEvent(ctx, models.EventDraft{Title: "Review", Date: "2024-03-04", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	moved, err := svc.UpdateEvent(ctx, e.ID, models.EventPatch{Date: strPtr(" 2024-03-05 ")})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", moved.Date)

	old, _ := svc.EventsByDate(ctx, "2024-03-04")
	assert.Empty(t, old)
	now, _ := svc.EventsByDate(ctx, "2024-03-05")
	assert.Len(t, now, 1)

	require.Len(t, changes, 2)
	assert.Equal(t, models.ChangeMoved, changes[1].Type)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, changes[1].Dates())
}

func TestUpdateEvent_RejectsBadPatch(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, models.EventDraft{Title: "Keep", Date: "2024-03-04", Visibility: models.VisibilityPublic})
	require.NoError(t, err)

	bad := models.Visibility("secret")
	_, err = svc.UpdateEvent(ctx, e.ID, models.EventPatch{Title: strPtr(""), Visibility: &bad})
	require.ErrorIs(t, err, models.ErrValidation)

	got, err := svc.EventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Title)
	assert.Equal(t, models.VisibilityPublic, got.Visibility)
}

func TestUpdateEvent_RejectsEmptyPatch(t *testing.T) {
	t.Parallel()
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, models.EventDraft{Title: "Keep", Date: "2024-03-04", Visibility: models.VisibilityPublic})
	require.NoError(t, err)

	_, err = svc.UpdateEvent(ctx, e.ID, models.EventPatch{})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, []string{"patch"}, fieldNames(err))
	assert.ErrorIs(t, rec.ops[len(rec.ops)-1].err, models.ErrValidation)
}

func fieldNames(err error) []string {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestUpdateAndDelete_UnknownID(t *testing.T) {
	t.Parallel()
	svc, hook, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateEvent(ctx, "nope", models.EventPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	err = svc.DeleteEvent(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteEvent(ctx, ""), models.ErrValidation)
	_, err = svc.UpdateEvent(ctx, "", models.EventPatch{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteEvent_KeepsSiblings(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, _ := svc.CreateEvent(ctx, models.EventDraft{Title: "a", Date: "2024-03-04", Visibility: models.VisibilityPublic})
	b, _ := svc.CreateEvent(ctx, models.EventDraft{Title: "b", Date: "2024-03-04", Visibility: models.VisibilityPublic})

	require.NoError(t, svc.DeleteEvent(ctx, a.ID))

	events, err := svc.EventsByDate(ctx, "2024-03-04")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, b.ID, events[0].ID)

	_, err = svc.EventByID(ctx, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEventsByDate_RejectsMalformedDate(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)

	_, err := svc.EventsByDate(context.Background(), "04/03/2024")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAgenda_SortsWithoutTouchingStore(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, d := range []models.EventDraft{
		{Title: "late", Date: "2024-03-04", StartTime: "18:00", Visibility: models.VisibilityPublic},
		{Title: "allday", Date: "2024-03-04", Visibility: models.VisibilityPublic},
		{Title: "early", Date: "2024-03-04", StartTime: "08:00", Visibility: models.VisibilityPublic},
	} {
		_, err := svc.CreateEvent(ctx, d)
		require.NoError(t, err)
	}

	agenda, err := svc.Agenda(ctx, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"allday", "early", "late"}, titles(agenda))

	stored, _ := svc.EventsByDate(ctx, "2024-03-04")
	assert.Equal(t, []string{"late", "allday", "early"}, titles(stored))
}

func TestEventsInRange(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2024-02-28", "2024-03-01", "2024-03-15", "2024-04-01"} {
		_, err := svc.CreateEvent(ctx, models.EventDraft{Title: date, Date: date, Visibility: models.VisibilityPublic})
		require.NoError(t, err)
	}

	got, err := svc.EventsInRange(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "2024-03-01")
	assert.Contains(t, got, "2024-03-15")

	_, err = svc.EventsInRange(ctx, "2024-03-31", "2024-03-01")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.SignIn(ctx, models.User{Username: "ann"})
	assert.ErrorIs(t, err, models.ErrValidation)

	signed, err := svc.SignIn(ctx, models.User{ID: "u1", Username: "ann", DisplayName: "Ann"})
	require.NoError(t, err)
	assert.False(t, signed.CreatedAt.IsZero())

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", current.ID)
	assert.Equal(t, "Ann", current.Name())

	require.NoError(t, svc.SignOut(ctx))
	_, err = svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSession_CorruptSlotIsDiscarded(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.sessions.Save(ctx, SessionKey, []byte("{not json")))

	_, err := svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.sessions.Load(ctx, SessionKey)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSeed(t *testing.T) {
	t.Parallel()
	svc, hook, _ := newTestService(t)
	ctx := context.Background()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Seed(ctx, 40, from, rand.New(rand.NewPCG(1, 2))))

	dates, err := svc.MarkedDates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, dates)

	total := 0
	for _, d := range dates {
		assert.GreaterOrEqual(t, d, "2024-03-01")
		assert.LessOrEqual(t, d, "2024-03-30")
		events, _ := svc.EventsByDate(ctx, d)
		total += len(events)
	}
	assert.Equal(t, 40, total)

	seeded := 0
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Seeded 40 mock events" {
			seeded++
		}
	}
	assert.Equal(t, 1, seeded)
}

func TestSendDigest_OncePerDay(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, models.EventDraft{Title: "Standup", Date: "2024-03-04", StartTime: "09:00", Visibility: models.VisibilityPublic})
	require.NoError(t, err)

	var calls []string
	cb := func(date string, events []*models.Event) {
		calls = append(calls, date)
		if date == "2024-03-04" {
			assert.Len(t, events, 1)
		}
	}

	morning := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	last := svc.sendDigest(ctx, morning, "", cb)
	last = svc.sendDigest(ctx, morning.Add(time.Hour), last, cb)
	last = svc.sendDigest(ctx, morning.Add(24*time.Hour), last, cb)

	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, calls)
	assert.Equal(t, "2024-03-05", last)
}

func titles(events []*models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}
