package stage

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lumenstack/internal/geometry"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClient(t *testing.T) {
	h := NewHub(zerolog.Nop(), nil)
	conn := dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, time.Millisecond)

	frame := RenderFrame{
		Elapsed: 1.5,
		Mood:    "joy",
		Instances: []geometry.Instance{
			{Position: mgl64.Vec3{0, 1, 0}, Scale: mgl64.Vec3{1, 1, 1}},
		},
		Colors: []mgl64.Vec3{{1, 0.6, 0.63}},
	}
	h.Broadcast(frame)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got RenderFrame
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "joy", got.Mood)
	assert.Equal(t, 1.5, got.Elapsed)
	require.Len(t, got.Instances, 1)
	assert.Equal(t, frame.Instances[0].Position, got.Instances[0].Position)
	assert.Equal(t, frame.Colors, got.Colors)
}

func TestBroadcastWithNoClients(t *testing.T) {
	h := NewHub(zerolog.Nop(), nil)
	// Must not block or panic.
	h.Broadcast(RenderFrame{Mood: "default"})
	assert.Zero(t, h.ClientCount())
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub(zerolog.Nop(), nil)
	dial(t, h) // never reads

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, time.Millisecond)

	// Flood well past the send buffer plus whatever the write pump and
	// socket buffers absorb.
	for i := 0; i < 10000; i++ {
		h.Broadcast(RenderFrame{Elapsed: float64(i)})
	}

	assert.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDepartedClientIsNoticedWithoutBroadcast(t *testing.T) {
	h := NewHub(zerolog.Nop(), nil)
	conn := dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, time.Millisecond)

	// Closing the connection must unregister the client even though the
	// hub never writes to it.
	conn.Close()
	assert.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	h := NewHub(zerolog.Nop(), nil)
	dial(t, h)
	dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 2
	}, time.Second, time.Millisecond)

	h.Close()
	assert.Zero(t, h.ClientCount())
}
