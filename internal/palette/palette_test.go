package palette

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lumenstack/internal/mood"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    mgl64.Vec3
		wantErr bool
	}{
		{"white", "#FFFFFF", mgl64.Vec3{1, 1, 1}, false},
		{"black", "#000000", mgl64.Vec3{0, 0, 0}, false},
		{"joy key light", "#FF9AA2", mgl64.Vec3{255.0 / 255, 154.0 / 255, 162.0 / 255}, false},
		{"lowercase", "#ff4d6d", mgl64.Vec3{255.0 / 255, 77.0 / 255, 109.0 / 255}, false},
		{"missing hash", "FFFFFF", mgl64.Vec3{}, true},
		{"too short", "#FFF", mgl64.Vec3{}, true},
		{"not hex", "#GGHHII", mgl64.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestNamedPalettesHaveFiveSlots(t *testing.T) {
	for _, p := range []Palette{Calm, Sunny, Electric, Ember} {
		assert.Len(t, p, Size)
	}
}

func TestForMoodMapping(t *testing.T) {
	assert.Equal(t, Calm, ForMood(mood.Default))
	assert.Equal(t, Sunny, ForMood(mood.Joy))
	assert.Equal(t, Electric, ForMood(mood.Surprise))
	assert.Equal(t, Ember, ForMood(mood.Moody))
}

func TestBlenderConvergesToTarget(t *testing.T) {
	b := NewBlender(DefaultBlendRate)

	for i := 0; i < 500; i++ {
		b.Update(mood.Joy)
	}

	got := b.Current()
	for i := range Sunny {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, Sunny[i][c], got[i][c], 1e-6)
		}
	}
}

func TestBlenderIdempotentWhenConverged(t *testing.T) {
	b := NewBlender(DefaultBlendRate)

	// Current already equals the Calm target.
	before := b.Current()
	b.Update(mood.Default)
	after := b.Current()

	assert.Equal(t, before, after)
}

func TestBlenderMovesMonotonically(t *testing.T) {
	b := NewBlender(DefaultBlendRate)

	// Slot 0 red channel: Calm #4C... toward Sunny #FF..., must only increase.
	prev := b.Current()[0][0]
	for i := 0; i < 50; i++ {
		b.Update(mood.Joy)
		cur := b.Current()[0][0]
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestSlotFor(t *testing.T) {
	tests := []struct {
		i, size, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 0},
		{59, 5, 4},
		{7, 3, 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlotFor(tt.i, tt.size))
	}
}

func TestBlenderColorCyclesAcrossInstances(t *testing.T) {
	b := NewBlender(DefaultBlendRate)
	assert.Equal(t, b.Color(0), b.Color(5))
	assert.Equal(t, b.Color(2), b.Color(57))
}
