// Package engine runs the frame loop: one goroutine ticking at the render
// rate, pulling the latest input snapshot through the reactive pipeline and
// publishing the resulting render state.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/lumenstack/internal/audio"
	"github.com/normanking/lumenstack/internal/bus"
	"github.com/normanking/lumenstack/internal/config"
	"github.com/normanking/lumenstack/internal/geometry"
	"github.com/normanking/lumenstack/internal/lighting"
	"github.com/normanking/lumenstack/internal/mood"
	"github.com/normanking/lumenstack/internal/palette"
	"github.com/normanking/lumenstack/internal/signal"
	"github.com/normanking/lumenstack/internal/stage"
)

// FrameSource supplies the most recent input snapshot. The tracker server
// implements this; tests substitute a fixture.
type FrameSource interface {
	Latest() signal.Frame
}

// Broadcaster receives the finished render frame. The stage hub implements
// this.
type Broadcaster interface {
	Broadcast(stage.RenderFrame)
}

// Engine owns the pipeline state and the loop goroutine. All pipeline
// mutation happens on that goroutine; external control is limited to Stop
// and the queued config reload.
type Engine struct {
	fps    int
	source FrameSource
	audio  *audio.Engine
	out    Broadcaster

	driver  *geometry.Driver
	blender *palette.Blender
	reactor *lighting.Reactor

	// mood is loop-owned; moodShadow mirrors it for external reads.
	mood       mood.Mood
	moodShadow atomic.Int64

	pending atomic.Pointer[config.Config]

	logger   zerolog.Logger
	eventBus *bus.EventBus

	started  atomic.Bool
	active   atomic.Bool
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// New assembles the pipeline from config. noise may be nil for a still
// stack; logger should already carry the component tag.
func New(cfg *config.Config, source FrameSource, audioEngine *audio.Engine,
	out Broadcaster, noise geometry.NoiseSource, logger zerolog.Logger,
	eventBus *bus.EventBus) *Engine {

	fps := cfg.Engine.FPS
	if fps <= 0 {
		fps = 60
	}

	return &Engine{
		fps:    fps,
		source: source,
		audio:  audioEngine,
		out:    out,
		driver: geometry.New(geometry.Config{
			Instances:   cfg.Engine.Instances,
			BaseHeight:  cfg.Engine.BaseHeight,
			SpeedFactor: cfg.Engine.SpeedFactor,
			Springs:     cfg.Springs,
		}, noise),
		blender:  palette.NewBlender(cfg.Palette.BlendRate),
		reactor:  lighting.NewReactor(cfg.Lighting.LerpRate),
		logger:   logger,
		eventBus: eventBus,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Run starts the loop goroutine and returns immediately. Calling Run more
// than once is a no-op.
func (e *Engine) Run() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	e.active.Store(true)
	e.logger.Info().Int("fps", e.fps).Msg("Engine started")
	e.publish(bus.EventTypeEngineStarted, map[string]any{"fps": e.fps})

	go e.loop()
}

// Stop halts the loop and waits for it to exit. Idempotent, and safe to
// call on an engine that was never started.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.active.Store(false)
		close(e.done)
		if e.started.Load() {
			<-e.stopped
		}
		e.logger.Info().Msg("Engine stopped")
		e.publish(bus.EventTypeEngineStopped, nil)
	})
}

// ApplyConfig queues reloaded tuning values. They take effect at the start
// of the next tick, never mid-frame.
func (e *Engine) ApplyConfig(cfg *config.Config) {
	e.pending.Store(cfg)
	e.publish(bus.EventTypeConfigReloaded, nil)
}

// Mood returns the mood chosen on the most recent tick.
func (e *Engine) Mood() mood.Mood {
	return mood.Mood(e.moodShadow.Load())
}

func (e *Engine) loop() {
	defer close(e.stopped)

	ticker := time.NewTicker(time.Second / time.Duration(e.fps))
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-e.done:
			return
		case now := <-ticker.C:
			if !e.active.Load() {
				return
			}
			e.safeTick(now.Sub(start).Seconds())
		}
	}
}

// safeTick isolates a tick so one bad frame cannot take the loop down.
func (e *Engine) safeTick(elapsed float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Float64("elapsed", elapsed).
				Msg("Tick panicked, frame skipped")
			e.publish(bus.EventTypeTickPanic, map[string]any{"panic": r})
		}
	}()
	e.tick(elapsed)
}

func (e *Engine) tick(elapsed float64) {
	if cfg := e.pending.Swap(nil); cfg != nil {
		e.applyTuning(cfg)
	}

	frame := e.source.Latest()
	feats := e.audio.Process(frame)

	m := mood.Classify(frame.Face)
	if m != e.mood {
		e.logger.Debug().Str("from", e.mood.String()).Str("to", m.String()).
			Msg("Mood changed")
		e.publish(bus.EventTypeMoodChanged, map[string]any{
			"from": e.mood.String(),
			"to":   m.String(),
		})
		e.mood = m
		e.moodShadow.Store(int64(m))
	}

	e.driver.ApplyInput(frame.Left, frame.Right, feats.Low)
	e.blender.Update(m)
	e.reactor.Update(m)
	e.driver.Step(elapsed, e.blender.Color(0), mood.Intensity(frame.Face, m))

	// The driver reuses its instance slice between frames; the wire frame
	// gets its own copy.
	instances := append([]geometry.Instance(nil), e.driver.Instances()...)

	out := stage.RenderFrame{
		Elapsed:   elapsed,
		Mood:      m.String(),
		Instances: instances,
		Colors:    e.blender.Current(),
		Materials: e.driver.Materials(),
		Lights:    e.reactor.Rig(),
		Audio:     feats,
	}
	e.out.Broadcast(out)
}

// applyTuning folds reloaded config into the live pipeline.
func (e *Engine) applyTuning(cfg *config.Config) {
	s := e.driver.Springs()
	s.Height.Stiffness, s.Height.Damping = cfg.Springs.Height.Stiffness, cfg.Springs.Height.Damping
	s.Twist.Stiffness, s.Twist.Damping = cfg.Springs.Twist.Stiffness, cfg.Springs.Twist.Damping
	s.Radius.Stiffness, s.Radius.Damping = cfg.Springs.Radius.Stiffness, cfg.Springs.Radius.Damping
	s.Chaos.Stiffness, s.Chaos.Damping = cfg.Springs.Chaos.Stiffness, cfg.Springs.Chaos.Damping
	e.blender.SetRate(cfg.Palette.BlendRate)
	e.reactor.SetRate(cfg.Lighting.LerpRate)
	e.logger.Info().Msg("Tuning applied")
}

func (e *Engine) publish(t bus.EventType, data map[string]any) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(bus.Event{Type: t, Data: data})
}
