package simulated

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/infra/config"
)

// Engines bundles the two native capabilities.
type Engines struct {
	Playback    *Playback
	Recognition *Recognition
}

// NewFromConfig creates engines from configuration.
func NewFromConfig(cfg config.EngineConfig) (*Engines, error) {
	zlog.Debug().Msgf("creating engines: type=%s settings=%+v", cfg.Type, cfg.Settings)
	switch cfg.Type {
	case "simulated":
		settings, err := DecodeSettings(cfg.Settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create simulated engines")
		}
		return &Engines{
			Playback:    NewPlayback(settings.Playback),
			Recognition: NewRecognition(settings.Recognition),
		}, nil
	default:
		return nil, errors.Newf("unsupported engine type: %s", cfg.Type)
	}
}
