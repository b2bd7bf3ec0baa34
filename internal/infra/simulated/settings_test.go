package simulated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    Settings
		wantErr string
	}{
		{
			name: "empty map yields defaults",
			raw:  nil,
			want: Settings{Recognition: RecognitionSettings{Permission: "granted", Available: true}},
		},
		{
			name: "explicit false survives defaults",
			raw: map[string]any{
				"recognition": map[string]any{"available": false, "permission": "denied"},
			},
			want: Settings{Recognition: RecognitionSettings{Permission: "denied", Available: false}},
		},
		{
			name: "fault lists",
			raw: map[string]any{
				"playback":    map[string]any{"fail_on": []any{"pause"}, "panic_on": []any{"resume"}},
				"recognition": map[string]any{"fail_on": []any{"stop"}, "flush_on_stop": "good night"},
			},
			want: Settings{
				Playback: PlaybackSettings{FailOn: []string{"pause"}, PanicOn: []string{"resume"}},
				Recognition: RecognitionSettings{
					Permission:  "granted",
					Available:   true,
					FailOn:      []string{"stop"},
					FlushOnStop: "good night",
				},
			},
		},
		{
			name:    "unknown permission",
			raw:     map[string]any{"recognition": map[string]any{"permission": "maybe"}},
			wantErr: "Permission",
		},
		{
			name:    "unknown playback operation",
			raw:     map[string]any{"playback": map[string]any{"fail_on": []any{"seek"}}},
			wantErr: "FailOn",
		},
		{
			name:    "wrong type",
			raw:     map[string]any{"recognition": "denied"},
			wantErr: "failed to decode settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSettings(tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
