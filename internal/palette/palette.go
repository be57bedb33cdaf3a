// Package palette maintains the smoothly blended color set that chases the
// mood-selected target palette.
package palette

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/lumenstack/internal/mood"
)

// Size is the number of independently blending color slots. Instances are
// assigned slot i mod Size, so the colors repeat cyclically regardless of
// instance count.
const Size = 5

// Palette is an ordered color set. Components are linear RGB in [0,1].
type Palette []mgl64.Vec3

// The four named constant palettes, selected 1:1 by mood.
var (
	Calm     = MustParse("#4C6EF5", "#5C7CFA", "#748FFC", "#91A7FF", "#BAC8FF")
	Sunny    = MustParse("#FF9AA2", "#FFB7B2", "#FFDAC1", "#E2F0CB", "#B5EAD7")
	Electric = MustParse("#9B5DE5", "#F15BB5", "#FEE440", "#00BBF9", "#00F5D4")
	Ember    = MustParse("#590D22", "#800F2F", "#A4133C", "#C9184A", "#FF4D6D")
)

// ForMood returns the target palette for a mood.
func ForMood(m mood.Mood) Palette {
	switch m {
	case mood.Joy:
		return Sunny
	case mood.Surprise:
		return Electric
	case mood.Moody:
		return Ember
	default:
		return Calm
	}
}

// ParseHex converts "#RRGGBB" to a color vector.
func ParseHex(s string) (mgl64.Vec3, error) {
	if len(s) != 7 || s[0] != '#' {
		return mgl64.Vec3{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return mgl64.Vec3{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return mgl64.Vec3{float64(r) / 255, float64(g) / 255, float64(b) / 255}, nil
}

// MustParse builds a palette from hex literals. Panics on malformed input;
// only used for the package-level constants.
func MustParse(hexes ...string) Palette {
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			panic(err)
		}
		p[i] = c
	}
	return p
}

// Clone returns an independent copy.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	copy(out, p)
	return out
}
