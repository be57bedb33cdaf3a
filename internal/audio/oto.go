package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate = 44100
	vibratoHz  = 5.0
	// Master attenuation keeps the two summed oscillators out of clipping.
	masterGain = 0.8
)

// OtoSink is the production synthesis backend: a two-oscillator sine voice
// rendered as float32 PCM through an oto player. All parameter changes ramp
// exponentially per-sample, so there are no clicks on frame-rate updates.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	voice  *voice

	closeOnce sync.Once
	closeErr  error
}

// NewOtoSink opens the default audio device and starts the voice at zero
// gain. Blocks until the device is ready.
func NewOtoSink() (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	v := &voice{}
	v.target = SinkParams{
		BassFreq:    bassFreqCenter,
		BassGainTau: releaseTau,
		LeadFreq:    leadFreqCenter,
	}
	v.bassFreq = v.target.BassFreq
	v.leadFreq = v.target.LeadFreq

	s := &OtoSink{
		ctx:    ctx,
		player: ctx.NewPlayer(v),
		voice:  v,
	}
	s.player.Play()
	return s, nil
}

// SetParams publishes new ramp targets to the render goroutine.
func (s *OtoSink) SetParams(p SinkParams) {
	s.voice.setTarget(p)
}

// Close stops playback. Safe to call more than once.
func (s *OtoSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.player.Close()
	})
	return s.closeErr
}

// voice renders the PCM stream. oto pulls from Read on its own goroutine;
// the frame loop pushes targets through setTarget.
type voice struct {
	mu     sync.Mutex
	target SinkParams

	bassFreq, bassGain float64
	leadFreq, leadGain float64
	vibratoDepth       float64
	bassPhase          float64
	leadPhase          float64
	lfoPhase           float64
}

func (v *voice) setTarget(p SinkParams) {
	v.mu.Lock()
	v.target = p
	v.mu.Unlock()
}

// rampCoef converts a time constant into a per-sample smoothing factor.
func rampCoef(tau float64) float64 {
	return 1 - math.Exp(-1/(tau*sampleRate))
}

func (v *voice) Read(buf []byte) (int, error) {
	v.mu.Lock()
	t := v.target
	v.mu.Unlock()

	freqCoef := rampCoef(attackTau)
	bassCoef := rampCoef(t.BassGainTau)
	leadCoef := rampCoef(attackTau)

	n := len(buf) / 4
	for i := 0; i < n; i++ {
		v.bassFreq += (t.BassFreq - v.bassFreq) * freqCoef
		v.bassGain += (t.BassGain - v.bassGain) * bassCoef
		v.leadFreq += (t.LeadFreq - v.leadFreq) * freqCoef
		v.leadGain += (t.LeadGain - v.leadGain) * leadCoef
		v.vibratoDepth += (t.VibratoDepth - v.vibratoDepth) * freqCoef

		v.lfoPhase += 2 * math.Pi * vibratoHz / sampleRate
		lead := v.leadFreq + math.Sin(v.lfoPhase)*v.vibratoDepth

		v.bassPhase += 2 * math.Pi * v.bassFreq / sampleRate
		v.leadPhase += 2 * math.Pi * lead / sampleRate

		sample := masterGain * (math.Sin(v.bassPhase)*v.bassGain +
			math.Sin(v.leadPhase)*v.leadGain)
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(sample)))
	}

	// Keep phases bounded over long sessions.
	v.bassPhase = math.Mod(v.bassPhase, 2*math.Pi)
	v.leadPhase = math.Mod(v.leadPhase, 2*math.Pi)
	v.lfoPhase = math.Mod(v.lfoPhase, 2*math.Pi)

	return n * 4, nil
}
