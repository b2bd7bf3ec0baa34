// Package simulated provides in-process playback and recognition engines
// that stand in for the native audio and speech modules.
package simulated

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Settings is the typed form of engine.settings in the configuration.
type Settings struct {
	Playback    PlaybackSettings    `mapstructure:"playback"`
	Recognition RecognitionSettings `mapstructure:"recognition"`
}

// PlaybackSettings configures the simulated audio engine.
type PlaybackSettings struct {
	FailOn  []string `mapstructure:"fail_on" validate:"dive,oneof=play stop pause resume"`
	PanicOn []string `mapstructure:"panic_on" validate:"dive,oneof=play stop pause resume"`
}

// RecognitionSettings configures the simulated speech engine.
type RecognitionSettings struct {
	Permission  string   `mapstructure:"permission" default:"granted" validate:"oneof=granted denied error"`
	Available   bool     `mapstructure:"available" default:"true"`
	FailOn      []string `mapstructure:"fail_on" validate:"dive,oneof=start stop abort"`
	PanicOn     []string `mapstructure:"panic_on" validate:"dive,oneof=start stop abort"`
	FlushOnStop string   `mapstructure:"flush_on_stop"` // Final result emitted during a graceful stop
}

// DecodeSettings decodes a free-form settings map. Defaults are applied
// before decoding so explicit false values are kept.
func DecodeSettings(raw map[string]any) (Settings, error) {
	var s Settings
	if err := defaults.Set(&s); err != nil {
		return Settings{}, errors.Wrap(err, "failed to set defaults")
	}
	if len(raw) > 0 {
		if err := mapstructure.Decode(raw, &s); err != nil {
			return Settings{}, errors.Wrap(err, "failed to decode settings")
		}
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, errors.Wrap(err, "validation failed")
	}
	return s, nil
}

// faults decides whether an operation fails or panics.
type faults struct {
	failOn  []string
	panicOn []string
}

func (f faults) check(op string) error {
	if slices.Contains(f.panicOn, op) {
		panic("simulated " + op + " crash")
	}
	if slices.Contains(f.failOn, op) {
		return errors.Newf("simulated %s failure", op)
	}
	return nil
}
