package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "valid",
			input: `
name: ok
steps:
  - intent: toggle_audio
  - result: [hello, hollow]
  - expect: {playback: playing, transcript: ""}
`,
		},
		{
			name:    "missing name",
			input:   "steps:\n  - intent: toggle_audio\n",
			wantErr: "Name",
		},
		{
			name:    "no steps",
			input:   "name: empty\n",
			wantErr: "Steps",
		},
		{
			name:    "unknown intent",
			input:   "name: bad\nsteps:\n  - intent: rewind\n",
			wantErr: "step 1",
		},
		{
			name:    "two actions in one step",
			input:   "name: bad\nsteps:\n  - intent: toggle_audio\n    result: [hi]\n",
			wantErr: "exactly one of intent, result or expect, got 2",
		},
		{
			name:    "empty step",
			input:   "name: bad\nsteps:\n  - intent: toggle_audio\n  - {}\n",
			wantErr: "step 2",
		},
		{
			name:    "unknown playback state",
			input:   "name: bad\nsteps:\n  - expect: {playback: stopped}\n",
			wantErr: "Playback",
		},
		{
			name:    "unknown resume policy",
			input:   "name: bad\nresume_policy: never\nsteps:\n  - intent: toggle_audio\n",
			wantErr: "ResumePolicy",
		},
		{
			name:    "not yaml",
			input:   "name: [",
			wantErr: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sc.Steps, 3)
		})
	}
}

func TestParse_TranscriptExpectation(t *testing.T) {
	sc, err := Parse([]byte(`
name: transcript
steps:
  - expect: {transcript: ""}
  - expect: {playback: idle}
`))
	require.NoError(t, err)

	require.NotNil(t, sc.Steps[0].Expect.Transcript, "explicit empty transcript is checked")
	assert.Equal(t, "", *sc.Steps[0].Expect.Transcript)
	assert.Nil(t, sc.Steps[1].Expect.Transcript, "absent transcript is not checked")
}

func TestStep_Kind(t *testing.T) {
	assert.Equal(t, "intent toggle_audio", Step{Intent: "toggle_audio"}.Kind())
	assert.Equal(t, `result ["hi"]`, Step{Result: []string{"hi"}}.Kind())
	assert.Equal(t, "expect", Step{Expect: &Expectation{}}.Kind())
	assert.Equal(t, "empty", Step{}.Kind())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("testdata/does_not_exist.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}
