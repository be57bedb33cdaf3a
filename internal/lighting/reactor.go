// Package lighting mirrors the mood classifier's output into smoothed
// color and intensity targets for the two key lights and the ambient light.
package lighting

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/lumenstack/internal/mood"
	"github.com/normanking/lumenstack/internal/palette"
)

// Light is one light's live state as sent to the rendering backend.
type Light struct {
	Color     mgl64.Vec3 `json:"color"`
	Intensity float64    `json:"intensity"`
}

// Rig is the full live lighting state.
type Rig struct {
	Key     Light   `json:"key"`
	Fill    Light   `json:"fill"`
	Ambient float64 `json:"ambient"`
}

// Profile is a mood's lighting target. Both key lights chase the shared
// intensity; the fill runs at a fixed fraction of it.
type Profile struct {
	KeyColor  mgl64.Vec3
	FillColor mgl64.Vec3
	Intensity float64
	Ambient   float64
}

const fillRatio = 0.6

// The fixed mood-to-profile table.
var profiles = map[mood.Mood]Profile{
	mood.Default: {
		KeyColor:  palette.MustParse("#4C6EF5")[0],
		FillColor: palette.MustParse("#91A7FF")[0],
		Intensity: 80,
		Ambient:   0.6,
	},
	mood.Joy: {
		KeyColor:  palette.MustParse("#FF9AA2")[0],
		FillColor: palette.MustParse("#FFDAC1")[0],
		Intensity: 150,
		Ambient:   1.2,
	},
	mood.Surprise: {
		KeyColor:  palette.MustParse("#FEE440")[0],
		FillColor: palette.MustParse("#00BBF9")[0],
		Intensity: 200,
		Ambient:   1.5,
	},
	mood.Moody: {
		KeyColor:  palette.MustParse("#A4133C")[0],
		FillColor: palette.MustParse("#590D22")[0],
		Intensity: 60,
		Ambient:   0.3,
	},
}

// ProfileFor returns the lighting target for a mood.
func ProfileFor(m mood.Mood) Profile {
	return profiles[m]
}

// DefaultLerpRate is the per-frame approach rate toward the active profile.
// Transitions are gradual even when the mood toggles every frame.
const DefaultLerpRate = 0.05

// Reactor owns the live rig and chases the active mood's profile.
// Single writer: only the frame loop calls Update.
type Reactor struct {
	rig  Rig
	rate float64
}

// NewReactor starts settled on the Default profile.
func NewReactor(rate float64) *Reactor {
	if rate <= 0 || rate > 1 {
		rate = DefaultLerpRate
	}
	p := profiles[mood.Default]
	return &Reactor{
		rate: rate,
		rig: Rig{
			Key:     Light{Color: p.KeyColor, Intensity: p.Intensity},
			Fill:    Light{Color: p.FillColor, Intensity: p.Intensity * fillRatio},
			Ambient: p.Ambient,
		},
	}
}

// Update lerps the live rig one frame toward the mood's profile.
func (r *Reactor) Update(m mood.Mood) {
	p := profiles[m]
	r.rig.Key.Color = lerpVec3(r.rig.Key.Color, p.KeyColor, r.rate)
	r.rig.Key.Intensity = lerp(r.rig.Key.Intensity, p.Intensity, r.rate)
	r.rig.Fill.Color = lerpVec3(r.rig.Fill.Color, p.FillColor, r.rate)
	r.rig.Fill.Intensity = lerp(r.rig.Fill.Intensity, p.Intensity*fillRatio, r.rate)
	r.rig.Ambient = lerp(r.rig.Ambient, p.Ambient, r.rate)
}

// SetRate retunes the approach rate. Out-of-range values are ignored.
func (r *Reactor) SetRate(rate float64) {
	if rate > 0 && rate <= 1 {
		r.rate = rate
	}
}

// Rig returns the current live state.
func (r *Reactor) Rig() Rig {
	return r.rig
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{lerp(a[0], b[0], t), lerp(a[1], b[1], t), lerp(a[2], b[2], t)}
}
