// Package mood classifies facial expression signals into one of a fixed set
// of mutually exclusive visual/audio themes.
package mood

import "github.com/normanking/lumenstack/internal/signal"

// Mood is the active theme. The zero value is Default.
type Mood int

const (
	Default Mood = iota
	Joy
	Surprise
	Moody
)

func (m Mood) String() string {
	switch m {
	case Joy:
		return "joy"
	case Surprise:
		return "surprise"
	case Moody:
		return "moody"
	default:
		return "default"
	}
}

// Activation thresholds. The cascade is priority-ordered, not scored: the
// first exceeded threshold wins even when a later channel scores higher.
const (
	smileThreshold     = 0.4
	mouthOpenThreshold = 0.2
	browDownThreshold  = 0.3
)

// Classify maps a face signal to its mood. Pure: same input, same output.
// An absent face is always Default.
func Classify(face signal.FaceSignal) Mood {
	if !face.Present {
		return Default
	}
	switch {
	case face.Smile > smileThreshold:
		return Joy
	case face.MouthOpen > mouthOpenThreshold:
		return Surprise
	case face.BrowDown > browDownThreshold:
		return Moody
	default:
		return Default
	}
}

// Intensity returns the raw score of the channel driving the given mood,
// used to scale emissive glow. Default has no driving channel and reads 0.
func Intensity(face signal.FaceSignal, m Mood) float64 {
	if !face.Present {
		return 0
	}
	switch m {
	case Joy:
		return face.Smile
	case Surprise:
		return face.MouthOpen
	case Moody:
		return face.BrowDown
	default:
		return 0
	}
}
