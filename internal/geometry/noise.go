package geometry

import "math/rand"

// NoiseSource supplies the uniform randomness behind the chaos jitter.
// Injectable so tests can run the driver with a fixed sequence.
type NoiseSource interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
}

// RandNoise is the production source: a seeded math/rand generator.
type RandNoise struct {
	rng *rand.Rand
}

// NewRandNoise seeds a generator. The jitter is intentionally
// non-reproducible in production; pass a fixed seed for repeatability.
func NewRandNoise(seed int64) *RandNoise {
	return &RandNoise{rng: rand.New(rand.NewSource(seed))}
}

func (n *RandNoise) Float64() float64 {
	return n.rng.Float64()
}

// zeroNoise always returns 0.5, centering the jitter offset at zero.
// Used as a fallback when no source is supplied.
type zeroNoise struct{}

func (zeroNoise) Float64() float64 { return 0.5 }
