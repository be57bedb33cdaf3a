package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(EventTypeMoodChanged, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	b.Publish(Event{Type: EventTypeMoodChanged, Data: map[string]any{"to": "joy"}})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0].Data["to"] == "joy"
	}, time.Second, time.Millisecond)
}

func TestPublishSyncWaits(t *testing.T) {
	b := NewEventBus()

	count := 0
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		b.Subscribe(EventTypeModeChanged, func(Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}

	b.PublishSync(Event{Type: EventTypeModeChanged})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, count)
}

func TestUnrelatedEventsAreIgnored(t *testing.T) {
	b := NewEventBus()

	called := false
	b.Subscribe(EventTypeTrackerConnected, func(Event) { called = true })
	b.PublishSync(Event{Type: EventTypeTrackerDisconnected})

	assert.False(t, called)
}

func TestClear(t *testing.T) {
	b := NewEventBus()

	called := false
	b.Subscribe(EventTypeEngineStarted, func(Event) { called = true })
	b.Clear()
	b.PublishSync(Event{Type: EventTypeEngineStarted})

	assert.False(t, called)
}
