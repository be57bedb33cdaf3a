// Package audio bridges the installation to sound in both directions:
// analysis of the spectrum delivered by the tracker, and theremin-style
// synthesis driven by the hand signals.
package audio

// Features are the smoothed band energies consumed by the visual engine,
// each normalized to [0,1].
type Features struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Vol  float64 `json:"vol"`
}

// Band edges over the 256-bin byte spectrum. The low band is the kick/bass
// region; the high band skips the muddy low-mids.
const (
	lowBandEnd    = 4
	highBandStart = 20
	highBandEnd   = 100

	smoothRate = 0.3
	decayRate  = 0.1
)

// Analyzer folds raw spectrum frames into smoothed Features. Not safe for
// concurrent use; the engine owns one and feeds it from the frame loop.
type Analyzer struct {
	feats Features
}

// Process folds one spectrum frame in with exponential smoothing.
// Bins are bytes as delivered by the browser analyser node.
func (a *Analyzer) Process(spectrum []byte) Features {
	raw := Features{
		Low:  bandMean(spectrum, 0, lowBandEnd),
		High: bandMean(spectrum, highBandStart, highBandEnd),
		Vol:  bandMean(spectrum, 0, len(spectrum)),
	}
	a.feats.Low += (raw.Low - a.feats.Low) * smoothRate
	a.feats.High += (raw.High - a.feats.High) * smoothRate
	a.feats.Vol += (raw.Vol - a.feats.Vol) * smoothRate
	return a.feats
}

// Decay eases the features toward silence. Called when no spectrum is
// available so the visuals wind down instead of freezing.
func (a *Analyzer) Decay() Features {
	a.feats.Low *= 1 - decayRate
	a.feats.High *= 1 - decayRate
	a.feats.Vol *= 1 - decayRate
	return a.feats
}

// Features returns the current smoothed values without advancing them.
func (a *Analyzer) Features() Features {
	return a.feats
}

// Reset snaps the analyzer back to silence.
func (a *Analyzer) Reset() {
	a.feats = Features{}
}

func bandMean(spectrum []byte, from, to int) float64 {
	if to > len(spectrum) {
		to = len(spectrum)
	}
	if from >= to {
		return 0
	}
	sum := 0.0
	for _, b := range spectrum[from:to] {
		sum += float64(b)
	}
	return sum / float64(to-from) / 255.0
}
