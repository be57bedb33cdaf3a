package audio

import "github.com/normanking/lumenstack/internal/signal"

// SinkParams is the full parameter set for the two-oscillator theremin
// voice. Frequencies in Hz, gains in [0,1], taus in seconds.
type SinkParams struct {
	BassFreq float64
	BassGain float64
	// BassGainTau controls how fast the bass gain chases its target. The
	// attack is fast; releasing to silence when the hand leaves is slower
	// so the note fades rather than clicks.
	BassGainTau float64

	LeadFreq float64
	LeadGain float64
	// VibratoDepth is the peak frequency deviation of the lead oscillator
	// in Hz. Pinching the right hand stills the vibrato.
	VibratoDepth float64
}

// Sink is the synthesis output backend. SetParams may be called every frame;
// implementations ramp toward the new values rather than jumping. Close is
// idempotent.
type Sink interface {
	SetParams(SinkParams)
	Close() error
}

// SinkFactory opens a synthesis backend. Called on entry to theremin mode;
// an error degrades the engine to silent operation instead of crashing.
type SinkFactory func() (Sink, error)

// Theremin voice mapping constants.
const (
	bassFreqCenter = 100.0
	bassFreqSwing  = 50.0
	bassGainMax    = 0.5

	leadFreqCenter  = 440.0
	leadFreqSwing   = 300.0
	leadGain        = 0.3
	vibratoDepthMax = 20.0

	attackTau  = 0.05
	releaseTau = 0.1
)

// ThereminParams maps the two hand signals onto the synth voice.
// Left hand: height picks the bass pitch (50-150 Hz), pinch opens the gain.
// Right hand: horizontal position picks the lead pitch (140-740 Hz), pinch
// suppresses the vibrato. An absent hand releases its oscillator to silence.
func ThereminParams(left, right signal.HandSignal) SinkParams {
	p := SinkParams{
		BassFreq:    bassFreqCenter,
		BassGainTau: releaseTau,
		LeadFreq:    leadFreqCenter,
	}
	if left.Present {
		p.BassFreq = bassFreqCenter + left.Y*bassFreqSwing
		p.BassGain = left.Pinch * bassGainMax
		p.BassGainTau = attackTau
	}
	if right.Present {
		p.LeadFreq = leadFreqCenter + right.X*leadFreqSwing
		p.LeadGain = leadGain
		p.VibratoDepth = (1 - right.Pinch) * vibratoDepthMax
	}
	return p
}
