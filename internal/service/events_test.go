package service

import (
	"testing"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(at time.Time) domain.PredictionError {
	return domain.PredictionError{
		ID:         uuid.New(),
		AgentID:    uuid.New(),
		Kind:       domain.PredictionPositive,
		EntryID:    uuid.New(),
		Magnitude:  12,
		Confidence: 0.8,
		At:         at,
	}
}

func TestEventBusExpiresAfterDisplayDuration(t *testing.T) {
	bus := NewEventBus(2*time.Second, nil)
	now := time.Now()

	bus.Publish(testEvent(now))
	assert.Len(t, bus.Active(now), 1)
	assert.Len(t, bus.Active(now.Add(time.Second)), 1)
	assert.Empty(t, bus.Active(now.Add(3*time.Second)), "events vanish after the display window")
}

func TestEventBusFansOutToSubscribers(t *testing.T) {
	bus := NewEventBus(2*time.Second, nil)

	ch, cancel := bus.Subscribe()
	defer cancel()

	ev := testEvent(time.Now())
	bus.Publish(ev)

	select {
	case got := <-ch:
		assert.Equal(t, ev.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	bus := NewEventBus(2*time.Second, nil)

	ch, cancel := bus.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancellation must not panic.
	bus.Publish(testEvent(time.Now()))
}

func TestEventBusActiveReturnsCopy(t *testing.T) {
	bus := NewEventBus(2*time.Second, nil)
	now := time.Now()
	bus.Publish(testEvent(now))

	a := bus.Active(now)
	require.Len(t, a, 1)
	a[0].Magnitude = -1

	b := bus.Active(now)
	assert.Equal(t, 12.0, b[0].Magnitude, "callers cannot mutate the bus's state")
}
