package tracker

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lumenstack/internal/signal"
)

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func handAt(handedness string, x, y float64) signal.Hand {
	pts := make([]signal.Point, signal.NumLandmarks)
	for i := range pts {
		pts[i] = signal.Point{X: x, Y: y}
	}
	return signal.Hand{Points: pts, Handedness: handedness, Score: 0.9}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestDetectionUpdatesLatest(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)
	conn := dial(t, s)

	send(t, conn, signal.Detection{
		Hands:       []signal.Hand{handAt("Right", 0.5, 0.5)},
		TimestampMs: 100,
	})

	assert.Eventually(t, func() bool {
		return s.Latest().Right.Present
	}, time.Second, time.Millisecond)

	frame := s.Latest()
	assert.InDelta(t, 0.0, frame.Right.X, 1e-9)
	assert.InDelta(t, 0.0, frame.Right.Y, 1e-9)
	assert.False(t, frame.Left.Present)
	assert.Equal(t, 100.0, frame.TimestampMs)
}

func TestStaleTimestampIsDropped(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)
	conn := dial(t, s)

	send(t, conn, signal.Detection{
		Hands:       []signal.Hand{handAt("Left", 0.2, 0.8)},
		TimestampMs: 100,
	})
	assert.Eventually(t, func() bool {
		return s.Latest().Left.Present
	}, time.Second, time.Millisecond)

	// Same timestamp: the detector is repeating itself, drop it.
	send(t, conn, signal.Detection{TimestampMs: 100})
	// Advancing timestamp: accepted, hands now absent.
	send(t, conn, signal.Detection{TimestampMs: 200})

	assert.Eventually(t, func() bool {
		return s.Latest().TimestampMs == 200
	}, time.Second, time.Millisecond)
	assert.False(t, s.Latest().Left.Present)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)
	conn := dial(t, s)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, conn, signal.Detection{
		Hands:       []signal.Hand{handAt("Right", 0.5, 0.5)},
		TimestampMs: 50,
	})

	assert.Eventually(t, func() bool {
		return s.Latest().Right.Present
	}, time.Second, time.Millisecond)
}

func TestModeControlMessage(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)

	var mu sync.Mutex
	var got string
	s.SetModeHandler(func(mode string) {
		mu.Lock()
		got = mode
		mu.Unlock()
	})

	conn := dial(t, s)
	send(t, conn, map[string]string{"type": "mode", "mode": "theremin"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got == "theremin"
	}, time.Second, time.Millisecond)
}

func TestLatestBeforeAnyFrame(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)
	frame := s.Latest()
	assert.False(t, frame.Left.Present)
	assert.False(t, frame.Face.Present)
	assert.Empty(t, frame.Spectrum)
}

func TestSpectrumPassesThrough(t *testing.T) {
	s := NewServer(zerolog.Nop(), nil)
	conn := dial(t, s)

	spec := make([]byte, 256)
	for i := range spec {
		spec[i] = byte(i)
	}
	send(t, conn, signal.Detection{Spectrum: spec, TimestampMs: 10})

	assert.Eventually(t, func() bool {
		return len(s.Latest().Spectrum) == 256
	}, time.Second, time.Millisecond)
	assert.Equal(t, spec, s.Latest().Spectrum)
}
