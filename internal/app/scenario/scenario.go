// Package scenario replays scripted intents and recognition results against
// a coordinator and checks the resulting state.
package scenario

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/focusbox/internal/app/coordinator"
)

// Scenario is a named list of steps.
type Scenario struct {
	Name string `yaml:"name" validate:"required"`
	// ResumePolicy overrides coordinator.resume_policy when set.
	ResumePolicy string `yaml:"resume_policy" validate:"omitempty,oneof=quiesced always"`
	// Engine overrides engine.settings when set.
	Engine map[string]any `yaml:"engine"`
	Steps  []Step         `yaml:"steps" validate:"required,min=1,dive"`
}

// Step does exactly one thing: dispatch an intent, emit a recognition
// result, or check expectations.
type Step struct {
	Intent string       `yaml:"intent"`
	Result []string     `yaml:"result"`
	Expect *Expectation `yaml:"expect"`
}

// Expectation lists the fields to check. Unset fields are not checked.
type Expectation struct {
	Playback    string  `yaml:"playback" validate:"omitempty,oneof=idle playing paused"`
	Recognition string  `yaml:"recognition" validate:"omitempty,oneof=inactive active"`
	Permission  string  `yaml:"permission" validate:"omitempty,oneof=checking granted denied"`
	Transcript  *string `yaml:"transcript"`
}

// Kind returns a short description of the step.
func (s Step) Kind() string {
	switch {
	case s.Intent != "":
		return "intent " + s.Intent
	case s.Result != nil:
		return fmt.Sprintf("result %q", s.Result)
	case s.Expect != nil:
		return "expect"
	default:
		return "empty"
	}
}

func (s Step) validate() error {
	n := 0
	if s.Intent != "" {
		n++
		if _, err := coordinator.ParseIntent(s.Intent); err != nil {
			return err
		}
	}
	if s.Result != nil {
		n++
	}
	if s.Expect != nil {
		n++
	}
	if n != 1 {
		return errors.Newf("step must have exactly one of intent, result or expect, got %d", n)
	}
	return nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "failed to parse scenario")
	}
	if err := validator.New().Struct(&sc); err != nil {
		return nil, errors.Wrap(err, "scenario validation failed")
	}
	for i, step := range sc.Steps {
		if err := step.validate(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i+1)
		}
	}
	return &sc, nil
}
