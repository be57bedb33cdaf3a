// Package config provides configuration management for LumenStack
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/normanking/lumenstack/internal/spring"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Engine   EngineConfig     `mapstructure:"engine"`
	Springs  spring.SetParams `mapstructure:"springs"`
	Audio    AudioConfig      `mapstructure:"audio"`
	Palette  PaletteConfig    `mapstructure:"palette"`
	Lighting LightingConfig   `mapstructure:"lighting"`
	Logging  LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig configures the WebSocket endpoints
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	TrackerPath string `mapstructure:"tracker_path"`
	StagePath   string `mapstructure:"stage_path"`
}

// EngineConfig configures the frame loop and geometry driver
type EngineConfig struct {
	FPS         int     `mapstructure:"fps"`
	Instances   int     `mapstructure:"instances"`
	BaseHeight  float64 `mapstructure:"base_height"`
	SpeedFactor float64 `mapstructure:"speed_factor"`
	NoiseSeed   int64   `mapstructure:"noise_seed"` // 0 seeds from the clock
}

// AudioConfig configures the analysis/synthesis bridge
type AudioConfig struct {
	Mode string `mapstructure:"mode"` // off, mic, theremin
}

// PaletteConfig configures color blending
type PaletteConfig struct {
	BlendRate float64 `mapstructure:"blend_rate"`
}

// LightingConfig configures the mood lighting reactor
type LightingConfig struct {
	LerpRate float64 `mapstructure:"lerp_rate"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8090",
			TrackerPath: "/ws/tracker",
			StagePath:   "/ws/stage",
		},
		Engine: EngineConfig{
			FPS:         60,
			Instances:   60,
			BaseHeight:  4.0,
			SpeedFactor: 1.0,
		},
		Springs: spring.DefaultSetParams(),
		Audio: AudioConfig{
			Mode: "off",
		},
		Palette: PaletteConfig{
			BlendRate: 0.15,
		},
		Lighting: LightingConfig{
			LerpRate: 0.05,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configDir, err := GetConfigDir()
	if err != nil {
		return cfg, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("LUMENSTACK")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	viper.Set("server", cfg.Server)
	viper.Set("engine", cfg.Engine)
	viper.Set("springs", cfg.Springs)
	viper.Set("audio", cfg.Audio)
	viper.Set("palette", cfg.Palette)
	viper.Set("lighting", cfg.Lighting)
	viper.Set("logging", cfg.Logging)

	configPath := filepath.Join(configDir, "config.yaml")
	return viper.WriteConfigAs(configPath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".lumenstack"), nil
}
