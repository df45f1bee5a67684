package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cmdres/internal/cmdset"
	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/parser"
)

// AssertionContext carries what assertions are evaluated against.
type AssertionContext struct {
	Merged   *cmdset.CmdSet
	Parser   parser.Parser
	MaxWords int
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Merged   []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Merged != nil {
		fmt.Fprintf(&buf, "\nMerged set: [%s]\n", strings.Join(e.Merged, ", "))
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertMergedKeys:
			err = assertMergedKeys(actx.Merged, a)
		case AssertMergeType:
			err = assertMergeType(actx.Merged, a)
		case AssertCandidateNames:
			err = assertCandidateNames(actx, a)
		case AssertSystemPresent:
			err = assertSystemPresent(actx.Merged, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertMergedKeys checks the merged set's keys exactly, in order.
func assertMergedKeys(merged *cmdset.CmdSet, a Assertion) error {
	want := make([]string, len(a.Keys))
	for i, k := range a.Keys {
		want[i] = ir.NormalizeKey(k)
	}
	got := merged.Keys()
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMergedKeys,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Merged:   got,
	}
}

// assertMergeType checks the policy applied by the last merge.
func assertMergeType(merged *cmdset.CmdSet, a Assertion) error {
	want, _ := ir.ParseMergeType(a.MergeType)
	if got := merged.ActualMergeType(); got != want {
		return &AssertionError{
			Type:     AssertMergeType,
			Expected: want.String(),
			Actual:   got.String(),
		}
	}
	return nil
}

// assertCandidateNames checks the candidate names the parser yields for
// an input, in parse order.
func assertCandidateNames(actx *AssertionContext, a Assertion) error {
	var got []string
	for _, c := range actx.Parser.Parse(a.Input, actx.MaxWords) {
		got = append(got, c.Name)
	}
	if slices.Equal(a.Names, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCandidateNames,
		Expected: fmt.Sprintf("%q", a.Names),
		Actual:   fmt.Sprintf("%q", got),
	}
}

// assertSystemPresent checks that each key is a system command of the
// merged set.
func assertSystemPresent(merged *cmdset.CmdSet, a Assertion) error {
	var missing []string
	for _, k := range a.Keys {
		c := merged.GetKey(k)
		if c == nil || !c.IsSystem() {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertSystemPresent,
		Expected: fmt.Sprintf("system commands %v", a.Keys),
		Actual:   fmt.Sprintf("missing %v", missing),
		Merged:   merged.Keys(),
	}
}
