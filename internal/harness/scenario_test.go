package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdres/internal/ir"
)

// writeScenario writes content to dir/test.yaml and returns the path.
func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const inlineScenario = `
name: inline
description: "one inline set"
cmdsets:
  - key: Basic
    merge_type: intersect
    commands:
      - {key: "  Look  ", aliases: [l], help: "look around"}
sources:
  - {set: Basic, kind: actor}
steps:
  - input: l
    expect: {outcome: matched, match: look}
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), inlineScenario)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "inline", scenario.Name)
	assert.Equal(t, "one inline set", scenario.Description)
	require.Len(t, scenario.CmdSets, 1)
	require.Len(t, scenario.Sources, 1)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, "actor", scenario.Sources[0].Kind)
	assert.Nil(t, scenario.Sources[0].Include)
	assert.Equal(t, OutcomeMatched, scenario.Steps[0].Expect.Outcome)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), inlineScenario+"flow: []\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\ncmdsets: [{key: A}]\nsteps: [{input: x}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\ncmdsets: [{key: A}]\nsteps: [{input: x}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no definitions",
			content: "name: n\ndescription: d\nsteps: [{input: x}]\n",
			wantErr: "specs or cmdsets",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\n",
			wantErr: "steps or assertions",
		},
		{
			name:    "missing spec file",
			content: "name: n\ndescription: d\nspecs: [/nonexistent/a.cue]\nsteps: [{input: x}]\n",
			wantErr: "spec file not found",
		},
		{
			name:    "blank command key",
			content: "name: n\ndescription: d\ncmdsets: [{key: A, commands: [{key: '  '}]}]\nsteps: [{input: x}]\n",
			wantErr: "cmdsets[0].commands[0]: key is required",
		},
		{
			name:    "source without set",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nsources: [{kind: actor}]\nsteps: [{input: x}]\n",
			wantErr: "sources[0]: set is required",
		},
		{
			name:    "unknown source kind",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nsources: [{set: A, kind: weather}]\nsteps: [{input: x}]\n",
			wantErr: "sources[0]",
		},
		{
			name:    "unknown outcome",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nsteps: [{input: x, expect: {outcome: maybe}}]\n",
			wantErr: `unknown outcome "maybe"`,
		},
		{
			name:    "assertion without type",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{keys: [a]}]\n",
			wantErr: "type is required",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{type: trace_contains}]\n",
			wantErr: `unknown type "trace_contains"`,
		},
		{
			name:    "merged_keys without keys",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{type: merged_keys}]\n",
			wantErr: "keys is required for merged_keys",
		},
		{
			name:    "bad merge_type",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{type: merge_type, merge_type: Merge}]\n",
			wantErr: `unknown merge_type "Merge"`,
		},
		{
			name:    "candidate_names without input",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{type: candidate_names, names: [a]}]\n",
			wantErr: "input is required",
		},
		{
			name:    "system_present without keys",
			content: "name: n\ndescription: d\ncmdsets: [{key: A}]\nassertions: [{type: system_present}]\n",
			wantErr: "keys is required for system_present",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "a.cue"), []byte("cmdset: A: {}\n"), 0644))

	path := writeScenario(t, dir, "name: n\ndescription: d\nspecs: [specs/a.cue]\nsteps: [{input: x}]\n")

	scenario, err := LoadScenarioWithBasePath(path, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "specs", "a.cue")}, scenario.Specs)
}

func TestCmdSetDef_Spec(t *testing.T) {
	def := CmdSetDef{
		Key:           "Basic",
		Priority:      -4,
		MergeType:     "replace",
		KeyMergeTypes: map[string]string{"Other": "remove", "Bad": "nope"},
		Duplicates:    true,
		NoExits:       true,
		Commands: []CommandDef{
			{Key: "  Look  ", Aliases: []string{"L"}, Help: "look around"},
		},
	}

	spec := def.Spec()

	assert.Equal(t, "Basic", spec.Key)
	assert.Equal(t, 0, spec.Priority, "negative priority clamps to zero")
	assert.Equal(t, ir.Replace, spec.MergeType)
	assert.Equal(t, map[string]ir.MergeType{"Other": ir.Remove}, spec.KeyMergeTypes)
	assert.True(t, spec.Duplicates)
	assert.True(t, spec.NoExits)
	require.Len(t, spec.Commands, 1)
	assert.Equal(t, "look", spec.Commands[0].Key)
	assert.Equal(t, []string{"l"}, spec.Commands[0].Aliases)
	assert.Equal(t, "look around", spec.Commands[0].Help)
}

func TestCmdSetDef_Spec_UnknownMergeTypeIsUnion(t *testing.T) {
	spec := CmdSetDef{Key: "A", MergeType: "whatever"}.Spec()
	assert.Equal(t, ir.Union, spec.MergeType)
	assert.Nil(t, spec.KeyMergeTypes)
}
