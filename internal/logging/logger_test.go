package logging

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, maxHist int) *Logger {
	t.Helper()
	l, err := New(&Config{
		LogDir:     t.TempDir(),
		Level:      LevelDebug,
		MaxHistory: maxHist,
		Console:    false,
	})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestHistoryRecordsEntries(t *testing.T) {
	l := newTestLogger(t, 100)

	l.Debug("engine", "Tick", map[string]interface{}{"elapsed": 0.016})
	l.Info("audio", "Audio mode changed", map[string]interface{}{"mode": "mic"})
	l.Warn("tracker", "Dropping malformed tracker frame", nil)
	l.Error("stage", "Encoding render frame", errors.New("boom"), nil)

	// New logs its own startup line first.
	hist := l.GetHistory(0)
	require.GreaterOrEqual(t, len(hist), 4)

	last := hist[len(hist)-1]
	assert.Equal(t, "error", last.Level)
	assert.Equal(t, "stage", last.Component)
	assert.Contains(t, last.Data, "boom")

	warn := hist[len(hist)-2]
	assert.Equal(t, "warn", warn.Level)
	assert.Equal(t, "tracker", warn.Component)
}

func TestGetHistoryLimit(t *testing.T) {
	l := newTestLogger(t, 100)
	for i := 0; i < 10; i++ {
		l.Info("engine", "tick", nil)
	}

	assert.Len(t, l.GetHistory(3), 3)
	// Most recent entries come back, oldest first.
	hist := l.GetHistory(3)
	assert.Equal(t, "tick", hist[2].Message)
}

func TestHistoryTrimsAtMax(t *testing.T) {
	l := newTestLogger(t, 5)
	for i := 0; i < 20; i++ {
		l.Info("engine", "tick", nil)
	}

	hist := l.GetHistory(0)
	assert.Len(t, hist, 5)
}

func TestComponentLoggerFeedsHistory(t *testing.T) {
	l := newTestLogger(t, 100)

	zlog := l.Component("tracker")
	zlog.Warn().Msg("Tracker upgrade failed")

	hist := l.GetHistory(0)
	require.NotEmpty(t, hist)
	last := hist[len(hist)-1]
	assert.Equal(t, "warn", last.Level)
	assert.Equal(t, "tracker", last.Component)
	assert.Equal(t, "Tracker upgrade failed", last.Message)
}

func TestOnLogStreamsEntries(t *testing.T) {
	l := newTestLogger(t, 100)

	var mu sync.Mutex
	var got []LogEntry
	l.SetOnLog(func(e LogEntry) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	zlog := l.Component("audio")
	zlog.Warn().Msg("Audio device unavailable, theremin runs silent")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range got {
			if e.Component == "audio" && e.Level == "warn" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
}

func TestGetLogPath(t *testing.T) {
	dir := t.TempDir()
	l, err := New(&Config{LogDir: dir, Level: LevelInfo, MaxHistory: 10, Console: false})
	require.NoError(t, err)
	defer l.Close()

	assert.True(t, strings.HasPrefix(l.GetLogPath(), dir))
	assert.Contains(t, l.GetLogPath(), "lumenstack_")
}
