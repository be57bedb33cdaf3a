// Package geometry computes the per-frame transform for every instanced
// primitive in the stack, driven by the four geometry springs plus
// deterministic noise-based organic motion.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/lumenstack/internal/signal"
	"github.com/normanking/lumenstack/internal/spring"
)

// Config holds the driver's tunables.
type Config struct {
	Instances   int              `mapstructure:"instances"`
	BaseHeight  float64          `mapstructure:"base_height"`
	SpeedFactor float64          `mapstructure:"speed_factor"`
	Springs     spring.SetParams `mapstructure:"springs"`
}

// DefaultConfig returns the installation defaults: a 60-ring stack.
func DefaultConfig() Config {
	return Config{
		Instances:   60,
		BaseHeight:  4.0,
		SpeedFactor: 1.0,
		Springs:     spring.DefaultSetParams(),
	}
}

// Instance is one primitive's transform for the rendering backend.
// Rotation is Euler XYZ in radians; Scale is per-axis.
type Instance struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

// Materials are the shared shader uniforms derived from spring motion.
type Materials struct {
	IOR        float64    `json:"ior"`
	Aberration float64    `json:"aberration"`
	Emissive   mgl64.Vec3 `json:"emissive"`
}

const (
	minRadius    = 0.1
	waveAmp      = 0.2
	chaosEpsilon = 0.01

	// Input-to-target mapping constants.
	twistRange  = 4 * math.Pi
	radiusSwing = 0.8

	// Audio kick: low-band energy above the threshold punches the
	// height and radius springs.
	kickThreshold    = 0.4
	heightKickScale  = 0.1
	radiusKickScale  = 0.05
	energyVelocityX  = 10.0
	materialLerpRate = 0.1

	baseIOR        = 1.1
	iorEnergySwing = 0.9
	aberrationMax  = 0.35
)

// Driver owns the geometry springs and the derived instance transforms.
// Single writer: ApplyInput and Step run only from the frame loop.
type Driver struct {
	cfg     Config
	springs *spring.Set
	noise   NoiseSource

	instances []Instance
	mats      Materials
	energy    float64
}

// New creates a driver with the springs settled at their rest targets.
func New(cfg Config, noise NoiseSource) *Driver {
	if cfg.Instances <= 0 {
		cfg.Instances = DefaultConfig().Instances
	}
	if noise == nil {
		noise = zeroNoise{}
	}

	s := spring.NewSet(cfg.Springs)
	s.Height.Target = cfg.BaseHeight
	s.Radius.Target = 1.0
	s.Height.Settle()
	s.Twist.Settle()
	s.Radius.Settle()
	s.Chaos.Settle()

	return &Driver{
		cfg:       cfg,
		springs:   s,
		noise:     noise,
		instances: make([]Instance, cfg.Instances),
		mats:      Materials{IOR: baseIOR},
	}
}

// ApplyInput maps the hand signals and audio energy onto spring targets and
// impulses. Absent hands leave their targets untouched, so the stack holds
// its last commanded shape. The audio kick is additive: it perturbs
// velocity without moving the targets.
func (d *Driver) ApplyInput(left, right signal.HandSignal, audioLow float64) {
	if left.Present {
		d.springs.Height.Target = d.cfg.BaseHeight * math.Max(0.5, 1.5+left.Y)
		d.springs.Twist.Target = left.X * twistRange
	}
	if right.Present {
		d.springs.Radius.Target = 1 + right.Y*radiusSwing
		d.springs.Chaos.Target = (right.X + 1) * 0.5
	}
	if audioLow > kickThreshold {
		d.springs.Height.Kick(heightKickScale * audioLow)
		d.springs.Radius.Kick(radiusKickScale * audioLow)
	}
}

// Step integrates the springs and recomputes every instance transform and
// the material uniforms. elapsed is the animation clock in seconds; glow is
// the first palette slot scaled later by the mood intensity.
func (d *Driver) Step(elapsed float64, glow mgl64.Vec3, glowIntensity float64) {
	d.springs.Update()

	t0 := elapsed * d.cfg.SpeedFactor
	height := d.springs.Height.Value
	twist := d.springs.Twist.Value
	chaos := d.springs.Chaos.Value
	jitter := chaos > chaosEpsilon

	n := len(d.instances)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		ct := t - 0.5

		// Traveling wave up the stack, purely deterministic.
		wave := math.Sin(t*6*math.Pi-2*t0) * waveAmp
		radius := math.Max(minRadius, d.springs.Radius.Value+wave)

		x := 0.0
		z := 0.0
		if jitter {
			x += (d.noise.Float64() - 0.5) * chaos
			z += (d.noise.Float64() - 0.5) * chaos
		}
		// Slow horizontal worm drift on top of the jitter.
		x += math.Sin(t0+t*4) * chaos * 2

		d.instances[i] = Instance{
			Position: mgl64.Vec3{x, ct * height, z},
			// X tilt lays torus-like primitives flat; Y combines the
			// helical twist with a slow continuous spin.
			Rotation: mgl64.Vec3{math.Pi / 2, t*twist + t0*0.2, 0},
			Scale:    mgl64.Vec3{radius, radius, 1},
		}
	}

	// Fast radius oscillation visually shatters the refractive surface.
	d.energy = math.Abs(d.springs.Radius.Velocity) * energyVelocityX
	e := math.Min(d.energy, 1)
	d.mats.IOR = lerp(d.mats.IOR, baseIOR+e*iorEnergySwing, materialLerpRate)
	d.mats.Aberration = lerp(d.mats.Aberration, e*aberrationMax, materialLerpRate)

	emissiveTarget := glow.Mul(glowIntensity * 0.5)
	d.mats.Emissive = mgl64.Vec3{
		lerp(d.mats.Emissive[0], emissiveTarget[0], materialLerpRate),
		lerp(d.mats.Emissive[1], emissiveTarget[1], materialLerpRate),
		lerp(d.mats.Emissive[2], emissiveTarget[2], materialLerpRate),
	}
}

// Instances returns the current transforms. The slice is reused between
// frames; callers must copy if they hold it across a Step.
func (d *Driver) Instances() []Instance {
	return d.instances
}

// Materials returns the current shader uniforms.
func (d *Driver) Materials() Materials {
	return d.mats
}

// Springs exposes the spring set for impulse injection and inspection.
func (d *Driver) Springs() *spring.Set {
	return d.springs
}

// Energy is the current spring-motion energy driving the material uniforms.
func (d *Driver) Energy() float64 {
	return d.energy
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
