package scenario

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/focusbox/internal/app/coordinator"
	"github.com/osa030/focusbox/internal/app/permission"
	"github.com/osa030/focusbox/internal/app/playback"
	"github.com/osa030/focusbox/internal/app/recognition"
	"github.com/osa030/focusbox/internal/infra/config"
	"github.com/osa030/focusbox/internal/infra/simulated"
)

// Emitter injects recognition results into the running engine.
type Emitter interface {
	Emit(candidates ...string) bool
}

// Failure is one unmet expectation.
type Failure struct {
	Step  int // 1-based
	Field string
	Want  string
	Got   string
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d: %s: want %q, got %q", f.Step, f.Field, f.Want, f.Got)
}

// Report summarizes a run.
type Report struct {
	Name     string
	Steps    int
	Failures []Failure
}

// Passed reports whether every expectation held.
func (r Report) Passed() bool {
	return len(r.Failures) == 0
}

func (r Report) String() string {
	if r.Passed() {
		return fmt.Sprintf("PASS %s (%d steps)", r.Name, r.Steps)
	}
	lines := []string{fmt.Sprintf("FAIL %s (%d steps, %d failures)", r.Name, r.Steps, len(r.Failures))}
	for _, f := range r.Failures {
		lines = append(lines, "  "+f.String())
	}
	return strings.Join(lines, "\n")
}

// Runner executes one scenario against a coordinator.
type Runner struct {
	scenario *Scenario
	coord    *coordinator.Coordinator
	emitter  Emitter
	owned    bool
}

// NewRunner creates a runner over an existing coordinator.
func NewRunner(sc *Scenario, coord *coordinator.Coordinator, emitter Emitter) *Runner {
	return &Runner{scenario: sc, coord: coord, emitter: emitter}
}

// NewSimulatedRunner creates a runner with its own coordinator over
// simulated engines. The scenario's overrides are applied on top of cfg.
func NewSimulatedRunner(cfg *config.Config, sc *Scenario) (*Runner, error) {
	c := *cfg
	if sc.ResumePolicy != "" {
		c.Coordinator.ResumePolicy = sc.ResumePolicy
	}
	if len(sc.Engine) > 0 {
		settings := make(map[string]any, len(cfg.Engine.Settings)+len(sc.Engine))
		maps.Copy(settings, cfg.Engine.Settings)
		maps.Copy(settings, sc.Engine)
		c.Engine = config.EngineConfig{Type: "simulated", Settings: settings}
	}

	engines, err := simulated.NewFromConfig(c.Engine)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", sc.Name)
	}
	coord, err := coordinator.NewFromConfig(&c, engines.Playback, engines.Recognition)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", sc.Name)
	}

	r := NewRunner(sc, coord, engines.Recognition)
	r.owned = true
	return r, nil
}

// Close releases a coordinator created by NewSimulatedRunner.
func (r *Runner) Close() {
	if r.owned {
		r.coord.Close()
	}
}

// Run resolves permission and executes every step. Unmet expectations are
// collected in the report; an error is returned only if the run could not
// complete.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{Name: r.scenario.Name, Steps: len(r.scenario.Steps)}
	zlog.Info().Msgf("running scenario: name=%s steps=%d", r.scenario.Name, report.Steps)

	r.coord.Start(ctx)

	for i, step := range r.scenario.Steps {
		n := i + 1
		zlog.Debug().Msgf("scenario step: step=%d %s", n, step.Kind())

		switch {
		case step.Intent != "":
			intent, err := coordinator.ParseIntent(step.Intent)
			if err != nil {
				return report, errors.Wrapf(err, "step %d", n)
			}
			r.coord.Dispatch(ctx, intent)

		case step.Result != nil:
			if r.emitter == nil {
				return report, errors.Newf("step %d: no result emitter configured", n)
			}
			if !r.emitter.Emit(step.Result...) {
				zlog.Debug().Msgf("scenario step: step=%d result not delivered, engine is not listening", n)
			}

		case step.Expect != nil:
			report.Failures = append(report.Failures, check(n, *step.Expect, r.coord.Snapshot())...)
			continue
		}

		if err := r.coord.Settle(ctx); err != nil {
			return report, errors.Wrapf(err, "step %d", n)
		}
	}

	if report.Passed() {
		zlog.Info().Msgf("scenario passed: name=%s", r.scenario.Name)
	} else {
		zlog.Warn().Msgf("scenario failed: name=%s failures=%d", r.scenario.Name, len(report.Failures))
	}
	return report, nil
}

func check(step int, want Expectation, got coordinator.Snapshot) []Failure {
	var failures []Failure
	fail := func(field, w string, g fmt.Stringer) {
		failures = append(failures, Failure{Step: step, Field: field, Want: w, Got: g.String()})
	}
	if want.Playback != "" {
		if s, ok := playback.ParseState(want.Playback); !ok || s != got.Playback {
			fail("playback", want.Playback, got.Playback)
		}
	}
	if want.Recognition != "" {
		if s, ok := recognition.ParseState(want.Recognition); !ok || s != got.Recognition {
			fail("recognition", want.Recognition, got.Recognition)
		}
	}
	if want.Permission != "" {
		if s, ok := permission.ParseState(want.Permission); !ok || s != got.Permission {
			fail("permission", want.Permission, got.Permission)
		}
	}
	if want.Transcript != nil && *want.Transcript != got.Transcript {
		failures = append(failures, Failure{Step: step, Field: "transcript", Want: *want.Transcript, Got: got.Transcript})
	}
	return failures
}
