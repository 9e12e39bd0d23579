package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/eventboard/internal/models"
)

func TestBus_PublishInOrder(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var order []string
	bus.Subscribe(func(models.Change) { order = append(order, "first") })
	bus.Subscribe(func(models.Change) { order = append(order, "second") })

	bus.Publish(models.Change{Type: models.ChangeCreated, Event: &models.Event{ID: "1"}})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var calls int
	unsubscribe := bus.Subscribe(func(models.Change) { calls++ })
	bus.Publish(models.Change{Type: models.ChangeDeleted})
	unsubscribe()
	unsubscribe()
	bus.Publish(models.Change{Type: models.ChangeDeleted})

	assert.Equal(t, 1, calls)
	assert.Empty(t, bus.order)
}

func TestBus_HandlersGetOwnCopy(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	bus.Subscribe(func(c models.Change) { c.Event.Title = "mutated" })
	var seen string
	bus.Subscribe(func(c models.Change) { seen = c.Event.Title })

	e := &models.Event{ID: "1", Title: "orig"}
	bus.Publish(models.Change{Type: models.ChangeUpdated, Event: e})

	assert.Equal(t, "orig", seen)
	assert.Equal(t, "orig", e.Title)
}

func TestBus_Close(t *testing.T) {
	t.Parallel()
	bus := NewBus()

	var calls int
	bus.Subscribe(func(models.Change) { calls++ })
	bus.Close()
	bus.Publish(models.Change{Type: models.ChangeCreated})

	require.Zero(t, calls)
}
