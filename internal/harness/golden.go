package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cmdres/internal/ir"
)

// Snapshot captures a scenario outcome for golden comparison.
type Snapshot struct {
	ScenarioName string      `json:"scenario_name"`
	MergedKey    string      `json:"merged_key"`
	MergeType    string      `json:"merge_type"`
	MergedKeys   []string    `json:"merged_keys"`
	Trace        []StepTrace `json:"trace"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		MergedKey:    result.MergedKey,
		MergeType:    result.MergeType,
		MergedKeys:   result.MergedKeys,
		Trace:        result.Trace,
	}
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical, which only
// handles maps, slices and primitives. Empty optional fields are omitted.
func (s Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, step := range s.Trace {
		m := map[string]any{
			"input":      step.Input,
			"request_id": step.RequestID,
			"outcome":    step.Outcome,
			"candidates": nonNil(step.Candidates),
		}
		if len(step.Match) > 0 {
			m["match"] = step.Match
		}
		if len(step.Owners) > 0 {
			m["owners"] = step.Owners
		}
		if step.Args != "" {
			m["args"] = step.Args
		}
		if step.Qualifier != "" {
			m["qualifier"] = step.Qualifier
		}
		if step.Fallback != "" {
			m["fallback"] = step.Fallback
		}
		trace[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"merged_key":    s.MergedKey,
		"merge_type":    s.MergeType,
		"merged_keys":   nonNil(s.MergedKeys),
		"trace":         trace,
	}
}

// MarshalCanonical returns the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
