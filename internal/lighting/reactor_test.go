package lighting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lumenstack/internal/mood"
	"github.com/normanking/lumenstack/internal/palette"
)

func TestJoyProfileConstants(t *testing.T) {
	p := ProfileFor(mood.Joy)

	want := palette.MustParse("#FF9AA2")[0]
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], p.KeyColor[i], 1e-9)
	}
	assert.Equal(t, 150.0, p.Intensity)
	assert.Equal(t, 1.2, p.Ambient)
}

func TestEveryMoodHasAProfile(t *testing.T) {
	for _, m := range []mood.Mood{mood.Default, mood.Joy, mood.Surprise, mood.Moody} {
		p := ProfileFor(m)
		assert.Greater(t, p.Intensity, 0.0, m.String())
		assert.Greater(t, p.Ambient, 0.0, m.String())
	}
}

func TestReactorLerpsMonotonicallyTowardJoy(t *testing.T) {
	r := NewReactor(DefaultLerpRate)
	target := ProfileFor(mood.Joy)

	prevIntensity := r.Rig().Key.Intensity
	prevAmbient := r.Rig().Ambient
	require.Less(t, prevIntensity, target.Intensity)

	for i := 0; i < 100; i++ {
		r.Update(mood.Joy)
		rig := r.Rig()

		// Intensity and ambient rise monotonically toward the Joy targets.
		assert.GreaterOrEqual(t, rig.Key.Intensity, prevIntensity)
		assert.GreaterOrEqual(t, rig.Ambient, prevAmbient)
		assert.LessOrEqual(t, rig.Key.Intensity, target.Intensity+1e-9)
		prevIntensity = rig.Key.Intensity
		prevAmbient = rig.Ambient
	}
}

func TestReactorConverges(t *testing.T) {
	r := NewReactor(DefaultLerpRate)

	for i := 0; i < 1000; i++ {
		r.Update(mood.Surprise)
	}

	p := ProfileFor(mood.Surprise)
	rig := r.Rig()
	assert.InDelta(t, p.Intensity, rig.Key.Intensity, 1e-3)
	assert.InDelta(t, p.Ambient, rig.Ambient, 1e-6)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, p.KeyColor[i], rig.Key.Color[i], 1e-6)
	}
}

func TestReactorNeverJumps(t *testing.T) {
	r := NewReactor(DefaultLerpRate)

	// Toggle mood every frame; per-frame movement must stay bounded by the
	// lerp rate times the largest target distance.
	moods := []mood.Mood{mood.Joy, mood.Moody, mood.Surprise, mood.Default}
	prev := r.Rig().Key.Intensity
	for i := 0; i < 200; i++ {
		r.Update(moods[i%len(moods)])
		cur := r.Rig().Key.Intensity
		assert.Less(t, math.Abs(cur-prev), 200*DefaultLerpRate+1e-9)
		prev = cur
	}
}

func TestFillTracksSharedIntensity(t *testing.T) {
	r := NewReactor(DefaultLerpRate)
	for i := 0; i < 1000; i++ {
		r.Update(mood.Joy)
	}

	rig := r.Rig()
	assert.InDelta(t, rig.Key.Intensity*fillRatio, rig.Fill.Intensity, 1e-3)
}
