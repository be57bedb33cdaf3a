// Package stage broadcasts the per-frame render state to every connected
// rendering client over WebSocket.
package stage

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/lumenstack/internal/audio"
	"github.com/normanking/lumenstack/internal/bus"
	"github.com/normanking/lumenstack/internal/geometry"
	"github.com/normanking/lumenstack/internal/lighting"
)

// RenderFrame is the wire format of one published frame: everything a
// rendering client needs to draw the stack.
type RenderFrame struct {
	Elapsed   float64             `json:"elapsed"`
	Mood      string              `json:"mood"`
	Instances []geometry.Instance `json:"instances"`
	Colors    []mgl64.Vec3        `json:"colors"`
	Materials geometry.Materials  `json:"materials"`
	Lights    lighting.Rig        `json:"lights"`
	Audio     audio.Features      `json:"audio"`
}

// Per-client send buffer in frames. A client that falls this far behind the
// frame loop is dropped rather than allowed to apply backpressure.
const sendBuffer = 8

// Hub fans frames out to render clients. Broadcast never blocks: each
// client has a buffered queue drained by its own write pump, and a full
// queue disconnects the client.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]chan []byte

	logger   zerolog.Logger
	eventBus *bus.EventBus
}

// NewHub creates an empty hub. logger should already carry the component
// tag (logging.Logger.Component).
func NewHub(logger zerolog.Logger, eventBus *bus.EventBus) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[string]chan []byte),
		logger:   logger,
		eventBus: eventBus,
	}
}

// Handler is the WebSocket endpoint render clients connect to.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Stage upgrade failed")
			return
		}

		id := uuid.New().String()
		ch := make(chan []byte, sendBuffer)

		h.mu.Lock()
		h.clients[id] = ch
		n := len(h.clients)
		h.mu.Unlock()

		h.logger.Info().Str("client", id).Int("clients", n).Msg("Stage client joined")
		h.publish(bus.EventTypeStageClientJoined, map[string]any{"client": id})

		go h.writePump(id, conn, ch)
		go h.readPump(id, conn)
	}
}

// readPump drains the client's inbound side so close and ping control
// frames are processed; a departed client is noticed here rather than on
// the next write failure.
func (h *Hub) readPump(id string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	h.removeLocked(id)
	h.mu.Unlock()
}

// Broadcast publishes one frame to all clients. Called from the frame loop;
// marshals once and never blocks.
func (h *Hub) Broadcast(frame RenderFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Msg("Encoding render frame")
		return
	}

	h.mu.Lock()
	for id, ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Queue full: the client cannot keep up with the frame
			// rate. Cut it loose instead of stalling everyone.
			h.removeLocked(id)
			h.logger.Warn().Str("client", id).Msg("Dropping slow stage client")
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected render clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	for id := range h.clients {
		h.removeLocked(id)
	}
	h.mu.Unlock()
}

// removeLocked closes the client's queue, which ends its write pump.
// Caller holds h.mu.
func (h *Hub) removeLocked(id string) {
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *Hub) writePump(id string, conn *websocket.Conn, ch chan []byte) {
	defer func() {
		conn.Close()
		h.mu.Lock()
		h.removeLocked(id)
		h.mu.Unlock()
		h.publish(bus.EventTypeStageClientLeft, map[string]any{"client": id})
	}()

	for data := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) publish(t bus.EventType, data map[string]any) {
	if h.eventBus == nil {
		return
	}
	h.eventBus.Publish(bus.Event{Type: t, Data: data})
}
