package audio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/normanking/lumenstack/internal/bus"
	"github.com/normanking/lumenstack/internal/signal"
)

// Mode selects what the audio bridge does each frame.
type Mode int

const (
	// ModeOff decays the features toward silence and runs no synthesis.
	ModeOff Mode = iota
	// ModeMic analyzes the incoming spectrum, no synthesis.
	ModeMic
	// ModeTheremin analyzes the spectrum and drives the synth voice from
	// the hand signals.
	ModeTheremin
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeMic:
		return "mic"
	case ModeTheremin:
		return "theremin"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a wire name as sent by control messages.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "mic":
		return ModeMic, nil
	case "theremin":
		return ModeTheremin, nil
	default:
		return ModeOff, fmt.Errorf("unknown audio mode %q", s)
	}
}

// Engine is the audio bridge state machine. Mode switches fully tear down
// the previous mode's sink before the next one is set up; a generation
// counter discards async device setup that completes after a later switch.
type Engine struct {
	mu       sync.Mutex
	mode     Mode
	gen      uint64
	sink     Sink
	analyzer Analyzer

	factory  SinkFactory
	logger   zerolog.Logger
	eventBus *bus.EventBus
}

// NewEngine creates the bridge in ModeOff. factory may be nil, in which
// case theremin mode runs silent (analysis only). logger should already
// carry the component tag (logging.Logger.Component).
func NewEngine(factory SinkFactory, logger zerolog.Logger, eventBus *bus.EventBus) *Engine {
	return &Engine{
		factory:  factory,
		logger:   logger,
		eventBus: eventBus,
	}
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches the bridge. Idempotent: switching to the active mode is
// a no-op. Safe under rapid repeated switching.
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	if m == e.mode {
		e.mu.Unlock()
		return
	}

	// Teardown first. Closing an already-stopped sink is harmless;
	// failures are logged and swallowed.
	e.teardownLocked()
	e.mode = m
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	e.logger.Info().Str("mode", m.String()).Msg("Audio mode changed")
	if e.eventBus != nil {
		e.eventBus.Publish(bus.Event{
			Type: bus.EventTypeModeChanged,
			Data: map[string]any{"mode": m.String()},
		})
	}

	if m == ModeTheremin && e.factory != nil {
		// Device setup can block on OS permission prompts; run it off
		// the caller's goroutine and let the generation counter decide
		// whether the result is still wanted.
		go e.setupSink(gen)
	}
}

func (e *Engine) setupSink(gen uint64) {
	sink, err := e.factory()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Audio device unavailable, theremin runs silent")
		if e.eventBus != nil {
			e.eventBus.Publish(bus.Event{
				Type: bus.EventTypeDeviceError,
				Data: map[string]any{"error": err.Error()},
			})
		}
		return
	}

	e.mu.Lock()
	if e.gen != gen {
		// A later switch won; this device belongs to a dead generation.
		e.mu.Unlock()
		if err := sink.Close(); err != nil {
			e.logger.Debug().Err(err).Msg("Closing superseded sink")
		}
		return
	}
	e.sink = sink
	e.mu.Unlock()
}

// Process advances the bridge one frame: spectrum analysis per the active
// mode, and in theremin mode the synth voice follows the hands. Called from
// the frame loop.
func (e *Engine) Process(frame signal.Frame) Features {
	e.mu.Lock()
	defer e.mu.Unlock()

	var feats Features
	switch e.mode {
	case ModeOff:
		feats = e.analyzer.Decay()
	case ModeMic, ModeTheremin:
		if len(frame.Spectrum) > 0 {
			feats = e.analyzer.Process(frame.Spectrum)
		} else {
			feats = e.analyzer.Decay()
		}
	}

	if e.mode == ModeTheremin && e.sink != nil {
		e.sink.SetParams(ThereminParams(frame.Left, frame.Right))
	}
	return feats
}

// Features returns the current smoothed values without advancing them.
func (e *Engine) Features() Features {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analyzer.Features()
}

// Close tears down any active sink and leaves the bridge in ModeOff.
func (e *Engine) Close() {
	e.mu.Lock()
	e.teardownLocked()
	e.mode = ModeOff
	e.gen++
	e.mu.Unlock()
}

func (e *Engine) teardownLocked() {
	if e.sink == nil {
		return
	}
	if err := e.sink.Close(); err != nil {
		e.logger.Debug().Err(err).Msg("Closing audio sink")
	}
	e.sink = nil
}
