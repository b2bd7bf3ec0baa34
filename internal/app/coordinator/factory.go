package coordinator

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/permission"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
	"github.com/osa030/focusbox/internal/domain/track"
	"github.com/osa030/focusbox/internal/infra/config"
)

// NewFromConfig wires controllers, the permission gate and the coordinator
// over the given engines.
func NewFromConfig(cfg *config.Config, audio playback.Engine, speech recognition.Engine) (*Coordinator, error) {
	if audio == nil || speech == nil {
		return nil, errors.New("audio and speech engines are required")
	}

	t, err := track.New(cfg.Track.ID, cfg.Track.URL, cfg.Track.Title, cfg.Track.Artist, cfg.Track.Artwork)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build track")
	}

	pb := playback.NewController(audio, playback.Config{})
	rc := recognition.NewController(speech, recognition.Config{FeedBuffer: cfg.Recognition.FeedBuffer})
	gate := permission.NewGate(speech)

	coord, err := New(pb, rc, gate, Config{
		Track: t,
		Options: recognition.Options{
			Lang:                        cfg.Recognition.Lang,
			InterimResults:              cfg.Recognition.InterimResults,
			Continuous:                  cfg.Recognition.Continuous,
			RequiresOnDeviceRecognition: cfg.Recognition.RequiresOnDevice,
		},
		ResumePolicy: ResumePolicy(cfg.Coordinator.ResumePolicy),
		SendTimeout:  time.Duration(cfg.Coordinator.NotificationTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		pb.Close()
		return nil, err
	}

	zlog.Info().Msgf("coordinator created: track=%s lang=%s resume_policy=%s",
		t, cfg.Recognition.Lang, cfg.Coordinator.ResumePolicy)
	return coord, nil
}
