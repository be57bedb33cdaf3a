// Package status folds bus events into the live snapshot served by the
// status endpoint, so mood, audio mode, and the last reported problem are
// visible without a stage connection.
package status

import (
	"sync"

	"github.com/normanking/lumenstack/internal/bus"
)

// Snapshot is the aggregated state as served over HTTP.
type Snapshot struct {
	Mood             string `json:"mood"`
	AudioMode        string `json:"audioMode"`
	TrackerConnected bool   `json:"trackerConnected"`
	LastIssue        string `json:"lastIssue,omitempty"`
}

// Board subscribes to the event bus and keeps the latest value per concern.
type Board struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewBoard creates a board and wires its subscriptions.
func NewBoard(eventBus *bus.EventBus) *Board {
	b := &Board{snap: Snapshot{Mood: "default", AudioMode: "off"}}

	eventBus.Subscribe(bus.EventTypeMoodChanged, func(e bus.Event) {
		if to, ok := e.Data["to"].(string); ok {
			b.mu.Lock()
			b.snap.Mood = to
			b.mu.Unlock()
		}
	})
	eventBus.Subscribe(bus.EventTypeModeChanged, func(e bus.Event) {
		if mode, ok := e.Data["mode"].(string); ok {
			b.mu.Lock()
			b.snap.AudioMode = mode
			b.mu.Unlock()
		}
	})
	eventBus.Subscribe(bus.EventTypeDeviceError, func(e bus.Event) {
		if msg, ok := e.Data["error"].(string); ok {
			b.ReportIssue("audio device: " + msg)
		}
	})
	eventBus.Subscribe(bus.EventTypeTrackerConnected, func(bus.Event) {
		b.mu.Lock()
		b.snap.TrackerConnected = true
		b.mu.Unlock()
	})
	eventBus.Subscribe(bus.EventTypeTrackerDisconnected, func(bus.Event) {
		b.mu.Lock()
		b.snap.TrackerConnected = false
		b.mu.Unlock()
	})

	return b
}

// ReportIssue records a problem string from outside the bus (log streaming
// hooks use this for warn/error entries).
func (b *Board) ReportIssue(issue string) {
	b.mu.Lock()
	b.snap.LastIssue = issue
	b.mu.Unlock()
}

// Snapshot returns the current aggregated state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}
