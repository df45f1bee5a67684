package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/resolver"
)

// Scenario defines a resolution test case loaded from YAML.
type Scenario struct {
	// Name identifies the scenario; it names the golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// MaxWords is the tokenizer word budget; 0 uses the default.
	MaxWords int `yaml:"max_words,omitempty"`

	// Parser names a registered parser; empty uses the default tokenizer.
	Parser string `yaml:"parser,omitempty"`

	// RequestID prefixes the fixed request ids, one per step.
	RequestID string `yaml:"request_id,omitempty"`

	// Specs are CUE files whose cmdset definitions are loaded first.
	Specs []string `yaml:"specs,omitempty"`

	// CmdSets are inline definitions. They replace CUE definitions with
	// the same key.
	CmdSets []CmdSetDef `yaml:"cmdsets,omitempty"`

	Sources []SourceDef `yaml:"sources"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// CmdSetDef is an inline command-set definition.
type CmdSetDef struct {
	Key           string            `yaml:"key"`
	Priority      int               `yaml:"priority,omitempty"`
	MergeType     string            `yaml:"merge_type,omitempty"`
	KeyMergeTypes map[string]string `yaml:"key_merge_types,omitempty"`
	Duplicates    bool              `yaml:"duplicates,omitempty"`
	NoObjs        bool              `yaml:"no_objs,omitempty"`
	NoExits       bool              `yaml:"no_exits,omitempty"`
	NoChannels    bool              `yaml:"no_channels,omitempty"`
	Commands      []CommandDef      `yaml:"commands,omitempty"`
}

// CommandDef is an inline command descriptor.
type CommandDef struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases,omitempty"`
	Help    string   `yaml:"help,omitempty"`
}

// SourceDef places an instance of a definition in the resolution.
type SourceDef struct {
	// Set is the definition key.
	Set string `yaml:"set"`

	// Owner is the object the set belongs to; the "<owner>'s" qualifier
	// matches it. Defaults to the set key.
	Owner string `yaml:"owner,omitempty"`

	// Kind is one of actor, location, object, exit, channel, global.
	Kind string `yaml:"kind"`

	// Include defaults to true.
	Include *bool `yaml:"include,omitempty"`
}

// Step is one input line and its expected outcome.
type Step struct {
	Input  string  `yaml:"input"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a step. Empty fields are not
// checked.
type Expect struct {
	// Outcome is one of matched, ambiguous, no_match, empty_input.
	Outcome string `yaml:"outcome"`

	// Match is the expected command key of every matched command.
	Match string `yaml:"match,omitempty"`

	Args string `yaml:"args,omitempty"`

	// Owners lists the owners of the matched commands, in order.
	Owners []string `yaml:"owners,omitempty"`

	// Fallback is the expected system command key.
	Fallback string `yaml:"fallback,omitempty"`
}

// Outcome names.
const (
	OutcomeMatched    = "matched"
	OutcomeAmbiguous  = "ambiguous"
	OutcomeNoMatch    = "no_match"
	OutcomeEmptyInput = "empty_input"
)

// Assertion checks the merged set or the parser, independent of steps.
type Assertion struct {
	Type string `yaml:"type"`

	// Keys for merged_keys (exact, in order) and system_present.
	Keys []string `yaml:"keys,omitempty"`

	// MergeType for merge_type: the policy applied by the last merge.
	MergeType string `yaml:"merge_type,omitempty"`

	// Input and Names for candidate_names.
	Input string   `yaml:"input,omitempty"`
	Names []string `yaml:"names,omitempty"`
}

// Assertion types
const (
	AssertMergedKeys     = "merged_keys"
	AssertMergeType      = "merge_type"
	AssertCandidateNames = "candidate_names"
	AssertSystemPresent  = "system_present"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath is LoadScenario with spec paths resolved
// relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Specs) == 0 && len(s.CmdSets) == 0 {
		return fmt.Errorf("specs or cmdsets must define at least one command set")
	}
	if len(s.Steps) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("steps or assertions must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, def := range s.CmdSets {
		if def.Key == "" {
			return fmt.Errorf("cmdsets[%d]: key is required", i)
		}
		for j, cmd := range def.Commands {
			if ir.NormalizeKey(cmd.Key) == "" {
				return fmt.Errorf("cmdsets[%d].commands[%d]: key is required", i, j)
			}
		}
	}

	for i, src := range s.Sources {
		if src.Set == "" {
			return fmt.Errorf("sources[%d]: set is required", i)
		}
		if _, err := resolver.ParseSourceKind(src.Kind); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if step.Expect == nil {
			continue
		}
		switch step.Expect.Outcome {
		case OutcomeMatched, OutcomeAmbiguous, OutcomeNoMatch, OutcomeEmptyInput:
		default:
			return fmt.Errorf("steps[%d].expect: unknown outcome %q", i, step.Expect.Outcome)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertMergedKeys:
		if a.Keys == nil {
			return fmt.Errorf("assertions[%d]: keys is required for merged_keys", index)
		}
	case AssertMergeType:
		if _, ok := ir.ParseMergeType(a.MergeType); !ok {
			return fmt.Errorf("assertions[%d]: unknown merge_type %q", index, a.MergeType)
		}
	case AssertCandidateNames:
		if a.Input == "" {
			return fmt.Errorf("assertions[%d]: input is required for candidate_names", index)
		}
	case AssertSystemPresent:
		if len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: keys is required for system_present", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}

// Spec converts the inline definition, normalising the merge type names
// the way the CUE compiler does. Unknown override names are dropped.
func (d CmdSetDef) Spec() ir.CmdSetSpec {
	mt, _ := ir.ParseMergeType(d.MergeType)
	spec := ir.CmdSetSpec{
		Key:        d.Key,
		Priority:   max(d.Priority, 0),
		MergeType:  mt,
		Duplicates: d.Duplicates,
		NoObjs:     d.NoObjs,
		NoExits:    d.NoExits,
		NoChannels: d.NoChannels,
	}
	for other, name := range d.KeyMergeTypes {
		omt, ok := ir.ParseMergeType(name)
		if !ok {
			continue
		}
		if spec.KeyMergeTypes == nil {
			spec.KeyMergeTypes = make(map[string]ir.MergeType)
		}
		spec.KeyMergeTypes[other] = omt
	}
	for _, c := range d.Commands {
		cmd := ir.NewCommand(c.Key, c.Aliases...)
		cmd.Help = c.Help
		spec.Commands = append(spec.Commands, *cmd)
	}
	return spec
}
