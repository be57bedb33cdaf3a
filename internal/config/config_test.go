package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 60, cfg.Engine.FPS)
	assert.Equal(t, 60, cfg.Engine.Instances)
	assert.Equal(t, 4.0, cfg.Engine.BaseHeight)
	assert.Equal(t, "off", cfg.Audio.Mode)
	assert.Equal(t, 0.15, cfg.Palette.BlendRate)
	assert.Equal(t, 0.05, cfg.Lighting.LerpRate)

	// Springs must be stable out of the box.
	for _, p := range []struct {
		name      string
		stiffness float64
		damping   float64
	}{
		{"height", cfg.Springs.Height.Stiffness, cfg.Springs.Height.Damping},
		{"twist", cfg.Springs.Twist.Stiffness, cfg.Springs.Twist.Damping},
		{"radius", cfg.Springs.Radius.Stiffness, cfg.Springs.Radius.Damping},
		{"chaos", cfg.Springs.Chaos.Stiffness, cfg.Springs.Chaos.Damping},
	} {
		assert.Greater(t, p.stiffness, 0.0, p.name)
		assert.Greater(t, p.damping, 0.0, p.name)
		assert.Less(t, p.damping, 1.0, p.name)
	}
}
