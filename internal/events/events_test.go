package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingConfirmed, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	payload := BookingEventPayload{
		BookingID: 42,
		RoomName:  "Conference Room A",
		Date:      "2026-09-15",
		Start:     "09:00",
		End:       "11:00",
	}
	require.NoError(t, bus.PublishJSON(EventBookingConfirmed, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingConfirmed, received[0].Type)
	assert.NotEmpty(t, received[0].ID)

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCancelled, func(*Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingConfirmed, BookingEventPayload{BookingID: 1}))
	assert.Zero(t, calls)
}

func TestEventBusNilSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingConfirmed, BookingEventPayload{}))
}

func TestNewNotificationTask(t *testing.T) {
	payload := BookingEventPayload{BookingID: 7}
	task := NewNotificationTask(EventBookingCancelled, payload)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, EventBookingCancelled, task.Kind)
	assert.Equal(t, payload, task.Payload)
	assert.Zero(t, task.Attempts)
	assert.False(t, task.CreatedAt.IsZero())

	other := NewNotificationTask(EventBookingCancelled, payload)
	assert.NotEqual(t, task.ID, other.ID)
}
