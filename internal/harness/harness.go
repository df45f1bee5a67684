package harness

import (
	"context"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.uber.org/zap"

	"github.com/roach88/cmdres/internal/cmdset"
	"github.com/roach88/cmdres/internal/compiler"
	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/parser"
	"github.com/roach88/cmdres/internal/resolver"
	"github.com/roach88/cmdres/internal/store"
)

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *zap.Logger
}

// WithLogger passes a logger to the resolver. Runs are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store for isolation:
//  1. Compile CUE definitions, then apply inline definitions
//  2. Save each source's definition under its owner, then load it back
//  3. Resolve every step with fixed request ids
//  4. Evaluate expectations and assertions
//
// A non-nil error means the scenario could not run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &runConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	result := NewResult()

	defs, err := loadDefinitions(scenario, result)
	if err != nil {
		return nil, err
	}

	sources, err := buildSources(ctx, st, scenario.Sources, defs)
	if err != nil {
		return nil, err
	}

	p, err := parser.Lookup(scenario.Parser)
	if err != nil {
		return nil, err
	}
	maxWords := scenario.MaxWords
	if maxWords <= 0 {
		maxWords = parser.DefaultMaxWords
	}

	prefix := scenario.RequestID
	if prefix == "" {
		prefix = "req"
	}
	ids := make([]string, len(scenario.Steps))
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}

	r := resolver.New(
		resolver.WithParser(p),
		resolver.WithMaxWords(maxWords),
		resolver.WithIDGenerator(resolver.NewFixedGenerator(ids...)),
		resolver.WithLogger(cfg.logger),
	)

	merged := resolver.Fold(resolver.Gather(sources))
	result.MergedKey = merged.Key
	result.MergeType = merged.ActualMergeType().String()
	result.MergedKeys = append(result.MergedKeys, merged.Keys()...)

	for i, step := range scenario.Steps {
		res, resolveErr := r.Resolve(step.Input, sources)
		trace, err := traceOf(res, resolveErr)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.AddStep(trace)

		for _, msg := range checkExpect(i, step.Expect, trace) {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{Merged: merged, Parser: p, MaxWords: maxWords}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// definitions keeps compiled specs by key in first-seen order.
type definitions struct {
	order []string
	specs map[string]ir.CmdSetSpec
}

func (d *definitions) put(spec ir.CmdSetSpec) {
	if _, ok := d.specs[spec.Key]; !ok {
		d.order = append(d.order, spec.Key)
	}
	d.specs[spec.Key] = spec
}

func (d *definitions) all() []ir.CmdSetSpec {
	out := make([]ir.CmdSetSpec, len(d.order))
	for i, k := range d.order {
		out[i] = d.specs[k]
	}
	return out
}

func loadDefinitions(scenario *Scenario, result *Result) (*definitions, error) {
	defs := &definitions{specs: make(map[string]ir.CmdSetSpec)}
	cctx := cuecontext.New()

	for _, path := range scenario.Specs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file: %w", err)
		}
		v := cctx.CompileBytes(data, cue.Filename(path))
		specs, warns, err := compiler.CompileAll(v)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", path, err)
		}
		for _, w := range warns {
			result.Warnings = append(result.Warnings, w.String())
		}
		for _, spec := range specs {
			defs.put(spec)
		}
	}

	for _, def := range scenario.CmdSets {
		defs.put(def.Spec())
	}

	for _, verr := range compiler.ValidateSpecs(defs.all()) {
		result.Warnings = append(result.Warnings, verr.Error())
	}
	return defs, nil
}

func buildSources(ctx context.Context, st *store.Store, srcDefs []SourceDef, defs *definitions) ([]resolver.Source, error) {
	sources := make([]resolver.Source, 0, len(srcDefs))
	for i, src := range srcDefs {
		spec, ok := defs.specs[src.Set]
		if !ok {
			return nil, fmt.Errorf("sources[%d]: no command set definition %q", i, src.Set)
		}
		owner := src.Owner
		if owner == "" {
			owner = src.Set
		}
		kind, err := resolver.ParseSourceKind(src.Kind)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}

		if err := st.SaveCmdSet(ctx, owner, spec); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		rec, err := st.LoadCmdSet(ctx, owner, spec.Key)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}

		include := true
		if src.Include != nil {
			include = *src.Include
		}
		sources = append(sources, resolver.Source{
			Set:     cmdset.FromSpec(rec.Spec).New(owner),
			Kind:    kind,
			Include: include,
		})
	}
	return sources, nil
}

// traceOf classifies a resolution. Errors other than *ResolveError are
// returned as-is.
func traceOf(res *resolver.Resolution, resolveErr error) (StepTrace, error) {
	trace := StepTrace{
		Input:      res.Input,
		RequestID:  res.RequestID,
		Candidates: []string{},
	}

	switch {
	case resolveErr == nil:
		trace.Outcome = OutcomeMatched
	case resolver.IsAmbiguous(resolveErr):
		trace.Outcome = OutcomeAmbiguous
	case resolver.IsNoMatch(resolveErr):
		trace.Outcome = OutcomeNoMatch
	case resolver.IsEmptyInput(resolveErr):
		trace.Outcome = OutcomeEmptyInput
	default:
		return StepTrace{}, resolveErr
	}

	for _, c := range res.Candidates {
		trace.Candidates = append(trace.Candidates, c.String())
	}
	if res.Best != nil {
		trace.Match = res.Best.Keys()
		trace.Args = res.Best.Candidate.Args
		trace.Qualifier = res.Best.Candidate.ObjectQualifier
		for _, c := range res.Best.Commands {
			trace.Owners = append(trace.Owners, c.Owner)
		}
	}
	if res.Fallback != nil {
		trace.Fallback = res.Fallback.Key
	}
	return trace, nil
}

// checkExpect compares a step trace against its expectation.
func checkExpect(idx int, expect *Expect, trace StepTrace) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	fail := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("steps[%d] %q: %s: expected %v, got %v", idx, trace.Input, field, want, got))
	}

	if expect.Outcome != trace.Outcome {
		fail("outcome", expect.Outcome, trace.Outcome)
	}
	if expect.Match != "" {
		if len(trace.Match) == 0 {
			fail("match", expect.Match, "nothing")
		}
		for _, k := range trace.Match {
			if k != ir.NormalizeKey(expect.Match) {
				fail("match", expect.Match, trace.Match)
				break
			}
		}
	}
	if expect.Args != "" && expect.Args != trace.Args {
		fail("args", fmt.Sprintf("%q", expect.Args), fmt.Sprintf("%q", trace.Args))
	}
	if expect.Owners != nil && !slices.Equal(expect.Owners, trace.Owners) {
		fail("owners", expect.Owners, trace.Owners)
	}
	if expect.Fallback != "" && expect.Fallback != trace.Fallback {
		fail("fallback", expect.Fallback, trace.Fallback)
	}
	return errs
}
