// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Track       TrackConfig       `yaml:"track"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Engine      EngineConfig      `yaml:"engine"`
	Hooks       HooksConfig       `yaml:"hooks"`
}

// LogConfig represents logging configuration. Command-line flags win.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stdout"` // "stdout", "stderr", or file path
}

// TrackConfig describes the bundled track.
type TrackConfig struct {
	ID      string `yaml:"id" default:"puppies-demo-track" validate:"required"`
	URL     string `yaml:"url" default:"file:///assets/audio/puppies.mp3" validate:"required,uri"`
	Title   string `yaml:"title" default:"puppies.mp3" validate:"required"`
	Artist  string `yaml:"artist" default:"AudioPro Demo"`
	Artwork string `yaml:"artwork" default:"file:///assets/images/icon.png" validate:"omitempty,uri"`
}

// RecognitionConfig holds the options used for every capture session.
type RecognitionConfig struct {
	Lang             string `yaml:"lang" default:"en-US" validate:"required,bcp47_language_tag"`
	InterimResults   bool   `yaml:"interim_results" default:"true"`
	Continuous       bool   `yaml:"continuous" default:"true"`
	RequiresOnDevice bool   `yaml:"requires_on_device"`
	FeedBuffer       int    `yaml:"feed_buffer" default:"16" validate:"gte=1,lte=1024"`
}

// CoordinatorConfig represents audio focus arbitration configuration.
type CoordinatorConfig struct {
	ResumePolicy          string `yaml:"resume_policy" default:"quiesced" validate:"oneof=quiesced always"`
	NotificationTimeoutMs int    `yaml:"notification_timeout_ms" default:"500" validate:"gte=10,lte=10000"`
}

// EngineConfig selects the native capability backend.
type EngineConfig struct {
	Type     string         `yaml:"type" default:"simulated" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// HooksConfig represents lifecycle hooks of the interactive driver.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. An empty path yields the
// defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		// Defaults are applied first so explicit false/zero values in the file survive.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("FOCUSBOX_RECOGNITION_LANG"); v != "" {
		c.Recognition.Lang = v
	}
	if v := os.Getenv("FOCUSBOX_RESUME_POLICY"); v != "" {
		c.Coordinator.ResumePolicy = v
	}
	if v := os.Getenv("FOCUSBOX_ENGINE"); v != "" {
		c.Engine.Type = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
