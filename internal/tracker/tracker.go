// Package tracker receives detection frames from the browser-side tracking
// client over WebSocket and republishes them as signal snapshots for the
// frame loop.
package tracker

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/lumenstack/internal/bus"
	"github.com/normanking/lumenstack/internal/signal"
)

// inbound is the wire envelope. Control messages carry a type; everything
// else is a detection frame. Spectrum bytes arrive base64-encoded per the
// usual JSON []byte convention.
type inbound struct {
	Type string `json:"type,omitempty"`
	Mode string `json:"mode,omitempty"`
	signal.Detection
}

// Server accepts tracking connections and keeps the most recent extracted
// frame. Reads are lock-free: the frame loop polls Latest at render rate
// while detections arrive at whatever cadence the tracker manages.
type Server struct {
	upgrader websocket.Upgrader
	latest   atomic.Value // signal.Frame
	onMode   atomic.Value // func(string)

	logger   zerolog.Logger
	eventBus *bus.EventBus
}

// NewServer creates a tracker server. logger should already carry the
// component tag (logging.Logger.Component).
func NewServer(logger zerolog.Logger, eventBus *bus.EventBus) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:   logger,
		eventBus: eventBus,
	}
	s.latest.Store(signal.Frame{})
	return s
}

// SetModeHandler registers the callback for mode control messages.
func (s *Server) SetModeHandler(fn func(mode string)) {
	s.onMode.Store(fn)
}

// Latest returns the most recently accepted frame. Zero frame until the
// first detection arrives.
func (s *Server) Latest() signal.Frame {
	return s.latest.Load().(signal.Frame)
}

// Handler is the WebSocket endpoint for the tracking client.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Tracker upgrade failed")
			return
		}
		s.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Tracker connected")
		s.publish(bus.EventTypeTrackerConnected, map[string]any{
			"remote": conn.RemoteAddr().String(),
		})

		s.readLoop(conn)

		conn.Close()
		s.logger.Info().Msg("Tracker disconnected")
		s.publish(bus.EventTypeTrackerDisconnected, nil)
	}
}

func (s *Server) readLoop(conn *websocket.Conn) {
	// Timestamps restart with each connection, so the stale guard is
	// per-connection state.
	lastTS := -1.0

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			// Transient tracking glitch: skip the frame, keep the
			// connection.
			s.logger.Debug().Err(err).Msg("Dropping malformed tracker frame")
			continue
		}

		if msg.Type == "mode" {
			if fn, ok := s.onMode.Load().(func(string)); ok && fn != nil {
				fn(msg.Mode)
			}
			continue
		}

		if msg.TimestampMs <= lastTS {
			// The detector resends its last result when it has nothing
			// new; a non-advancing timestamp means no new information.
			s.publish(bus.EventTypeTrackerStale, map[string]any{
				"timestamp_ms": msg.TimestampMs,
			})
			continue
		}
		lastTS = msg.TimestampMs

		s.latest.Store(signal.Extract(msg.Detection))
	}
}

func (s *Server) publish(t bus.EventType, data map[string]any) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(bus.Event{Type: t, Data: data})
}
