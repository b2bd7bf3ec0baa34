package scenario

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/focusbox/internal/infra/config"
)

func runScenario(t *testing.T, sc *Scenario) Report {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)

	r, err := NewSimulatedRunner(cfg, sc)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := r.Run(ctx)
	require.NoError(t, err)
	return report
}

func TestRunner_Fixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			sc, err := Load(file)
			require.NoError(t, err)

			report := runScenario(t, sc)
			assert.True(t, report.Passed(), report.String())
			assert.Equal(t, len(sc.Steps), report.Steps)
		})
	}
}

func TestRunner_ReportsFailuresWithoutAborting(t *testing.T) {
	sc, err := Parse([]byte(`
name: wrong expectations
steps:
  - expect: {playback: playing}
  - intent: toggle_audio
  - expect: {playback: idle, recognition: active, transcript: hi}
  - expect: {playback: playing}
`))
	require.NoError(t, err)

	report := runScenario(t, sc)

	assert.False(t, report.Passed())
	assert.Equal(t, []Failure{
		{Step: 1, Field: "playback", Want: "playing", Got: "idle"},
		{Step: 3, Field: "playback", Want: "idle", Got: "playing"},
		{Step: 3, Field: "recognition", Want: "active", Got: "inactive"},
		{Step: 3, Field: "transcript", Want: "hi", Got: ""},
	}, report.Failures)
	assert.Contains(t, report.String(), "FAIL wrong expectations (4 steps, 4 failures)")
	assert.Contains(t, report.String(), `step 3: transcript: want "hi", got ""`)
}

func TestRunner_EngineOverrideError(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	sc := &Scenario{
		Name:   "bad engine",
		Engine: map[string]any{"recognition": map[string]any{"permission": "perhaps"}},
		Steps:  []Step{{Intent: "toggle_audio"}},
	}
	_, err = NewSimulatedRunner(cfg, sc)
	assert.ErrorContains(t, err, "scenario bad engine")
}

func TestRunner_CancelledContext(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	sc, err := Parse([]byte("name: cancelled\nsteps:\n  - expect: {permission: denied, playback: idle}\n"))
	require.NoError(t, err)

	r, err := NewSimulatedRunner(cfg, sc)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Permission resolution fails on a cancelled context
	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Passed(), report.String())
}

func TestReport_String(t *testing.T) {
	assert.Equal(t, "PASS ok (2 steps)", Report{Name: "ok", Steps: 2}.String())
}
