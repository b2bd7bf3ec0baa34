package simulated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/focusbox/internal/infra/config"
)

func TestNewFromConfig(t *testing.T) {
	engines, err := NewFromConfig(config.EngineConfig{
		Type: "simulated",
		Settings: map[string]any{
			"recognition": map[string]any{"available": false},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, engines.Playback)
	require.NotNil(t, engines.Recognition)
	assert.False(t, engines.Recognition.IsAvailable())

	_, err = NewFromConfig(config.EngineConfig{Type: "expo"})
	assert.ErrorContains(t, err, "unsupported engine type: expo")

	_, err = NewFromConfig(config.EngineConfig{
		Type:     "simulated",
		Settings: map[string]any{"playback": map[string]any{"fail_on": []any{"rewind"}}},
	})
	assert.ErrorContains(t, err, "failed to create simulated engines")
}
