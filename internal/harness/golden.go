package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/myurch/mock-rel/internal/ir"
)

// Snapshot captures the observable outcome of a scenario run.
// It is serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Steps        []StepRecord
	Resolved     []ResolvedSnapshot
	State        ir.State
}

// NewSnapshot captures a finished run of scenario.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: scenario.Name,
		Steps:        result.Steps,
		Resolved:     result.Resolved,
		State:        result.State,
	}
}

// Canonical returns the snapshot as canonical JSON, the golden file format.
func (s *Snapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization, since ir.MarshalCanonical only handles IR types, plain
// scalars, lists and maps.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		m := map[string]any{
			"index":   step.Index,
			"type":    step.Type,
			"model":   step.Model,
			"changed": step.Changed,
		}
		if step.Error != "" {
			m["error"] = step.Error
		}
		steps[i] = m
	}

	resolved := make([]any, len(s.Resolved))
	for i, r := range s.Resolved {
		m := map[string]any{
			"assertion": r.Assertion,
			"source":    r.Source,
			"model":     r.Model,
			"value":     r.Value,
		}
		if r.ID != nil {
			m["id"] = r.ID
		}
		resolved[i] = m
	}

	state := s.State
	if state == nil {
		state = ir.State{}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
		"resolved":      resolved,
		"state":         state,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := NewSnapshot(scenario, result)
	if err := AssertGolden(t, scenario.Name, snapshot.toCanonicalMap()); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the canonical JSON of value against the golden file
// testdata/golden/{name}.golden.
//
// value may be anything ir.MarshalCanonical accepts: a state, a resolved
// object graph, or a list of them.
func AssertGolden(t *testing.T, name string, value any) error {
	t.Helper()

	data, err := ir.MarshalCanonical(value)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
