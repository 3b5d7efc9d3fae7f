package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Publish(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("delivers to specific handlers", func(t *testing.T) {
		bus := NewBus(nil)

		var got Event
		bus.Subscribe(TypeStoreChanged, func(e Event) { got = e })
		bus.Publish(NewStoreChanged(OpTaskCreated, "project-1", "task-1", "activity-1", at))

		require.NotNil(t, got)
		changed, ok := got.(StoreChanged)
		require.True(t, ok)
		assert.Equal(t, OpTaskCreated, changed.Op)
		assert.Equal(t, "task-1", changed.TaskID)
		assert.Equal(t, at, changed.Timestamp())
	})

	t.Run("ignores other event types", func(t *testing.T) {
		bus := NewBus(nil)

		called := false
		bus.Subscribe(TypeImportCompleted, func(Event) { called = true })
		bus.Publish(NewSelectionChanged("project-1", at))

		assert.False(t, called)
	})

	t.Run("specific handlers run before wildcard handlers", func(t *testing.T) {
		bus := NewBus(nil)

		var order []string
		bus.SubscribeAll(func(Event) { order = append(order, "all") })
		bus.Subscribe(TypeStoreChanged, func(Event) { order = append(order, "first") })
		bus.Subscribe(TypeStoreChanged, func(Event) { order = append(order, "second") })
		bus.Publish(NewStoreChanged(OpProjectCreated, "project-1", "", "", at))

		assert.Equal(t, []string{"first", "second", "all"}, order)
	})

	t.Run("recovers from panicking handlers", func(t *testing.T) {
		bus := NewBus(nil)

		called := false
		bus.Subscribe(TypeStoreChanged, func(Event) { panic("boom") })
		bus.Subscribe(TypeStoreChanged, func(Event) { called = true })

		assert.NotPanics(t, func() {
			bus.Publish(NewStoreChanged(OpProjectDeleted, "deleted", "", "", at))
		})
		assert.True(t, called)
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.Subscribe(TypeStoreChanged, func(Event) { calls++ })
	other := bus.Subscribe(TypeStoreChanged, func(Event) {})
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, bus.SubscriptionCount())

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.Equal(t, 1, bus.SubscriptionCount())

	bus.Publish(NewStoreChanged(OpTaskUpdated, "project-1", "task-1", "", time.Now()))
	assert.Equal(t, 0, calls)
}
