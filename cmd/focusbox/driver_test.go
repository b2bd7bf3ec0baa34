package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/focusbox/internal/app/coordinator"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
	"github.com/osa030/focusbox/internal/infra/config"
	"github.com/osa030/focusbox/internal/infra/simulated"
)

func newTestDriver(t *testing.T) (*driver, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)

	engines, err := simulated.NewFromConfig(cfg.Engine)
	require.NoError(t, err)
	coord, err := coordinator.NewFromConfig(cfg, engines.Playback, engines.Recognition)
	require.NoError(t, err)
	t.Cleanup(coord.Close)
	coord.Start(context.Background())

	var out bytes.Buffer
	return newDriver(coord, engines.Recognition, &out), &out
}

func TestDriver_Loop(t *testing.T) {
	d, out := newTestDriver(t)

	input := strings.Join([]string{
		"toggle_audio",
		"3",
		"result hello | yellow",
		"state",
		"",
		"stop_recognition",
		"quit",
		"toggle_audio",
	}, "\n")
	require.NoError(t, d.loop(context.Background(), strings.NewReader(input)))

	s := d.coord.Snapshot()
	assert.Equal(t, playback.StatePlaying, s.Playback, "lines after quit are not read")
	assert.Equal(t, recognition.StateInactive, s.Recognition)
	assert.Equal(t, "hello", s.Transcript)
	assert.Contains(t, out.String(), `playback=paused recognition=active permission=granted transcript="hello"`)
}

func TestDriver_Errors(t *testing.T) {
	d, out := newTestDriver(t)
	ctx := context.Background()

	assert.False(t, d.handle(ctx, "rewind"))
	assert.Contains(t, out.String(), `unknown intent: "rewind"`)

	assert.False(t, d.handle(ctx, "9"))
	assert.Contains(t, out.String(), "no intent number 9")

	assert.False(t, d.handle(ctx, "result too early"))
	assert.Contains(t, out.String(), "Recognition is not listening")

	assert.True(t, d.handle(ctx, "exit"))
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		input string
		want  coordinator.Intent
	}{
		{"1", coordinator.IntentToggleAudio},
		{"2", coordinator.IntentTogglePauseResume},
		{"toggle_recognition", coordinator.IntentToggleRecognition},
		{"4", coordinator.IntentStopRecognition},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseIntent(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseIntent("0")
	assert.Error(t, err)
}
