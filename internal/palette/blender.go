package palette

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/lumenstack/internal/mood"
)

// DefaultBlendRate is the per-frame lerp factor toward the target palette.
const DefaultBlendRate = 0.15

// Blender owns the live palette and lerps each slot independently toward
// the mood-selected target. Single writer: only the frame loop calls Update.
type Blender struct {
	current Palette
	rate    float64
}

// NewBlender starts at the Calm palette.
func NewBlender(rate float64) *Blender {
	if rate <= 0 || rate > 1 {
		rate = DefaultBlendRate
	}
	return &Blender{
		current: Calm.Clone(),
		rate:    rate,
	}
}

// Update advances every slot one frame toward the palette for the mood.
// Blending a converged palette leaves it unchanged.
func (b *Blender) Update(m mood.Mood) {
	target := ForMood(m)
	for i := range b.current {
		b.current[i] = lerpVec3(b.current[i], target[i], b.rate)
	}
}

// Color returns the blended color for instance i (slot i mod Size).
func (b *Blender) Color(i int) mgl64.Vec3 {
	return b.current[SlotFor(i, len(b.current))]
}

// SetRate retunes the blend rate. Out-of-range values are ignored.
func (b *Blender) SetRate(rate float64) {
	if rate > 0 && rate <= 1 {
		b.rate = rate
	}
}

// Current returns a copy of the live palette.
func (b *Blender) Current() Palette {
	return b.current.Clone()
}

// SlotFor maps an instance index onto a palette slot.
func SlotFor(i, size int) int {
	if size <= 0 {
		return 0
	}
	return ((i % size) + size) % size
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
