package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/resolver"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Sets     []string // KEY[:KIND[:OWNER]] definitions from the specs dir
	Stored   []string // OWNER[:KIND] definitions from the store
	Database string
	MaxWords int
	Parser   string
}

// ResolveResult is the printed form of a resolution.
type ResolveResult struct {
	RequestID  string         `json:"request_id"`
	Input      string         `json:"input"`
	Outcome    string         `json:"outcome"`
	MergedKey  string         `json:"merged_key"`
	Candidates []ir.Candidate `json:"candidates"`
	Match      *ir.Candidate  `json:"match,omitempty"`
	Commands   []commandView  `json:"commands,omitempty"`
	Fallback   string         `json:"fallback,omitempty"`
}

// Outcomes of a resolution.
const (
	OutcomeMatched    = "matched"
	OutcomeAmbiguous  = "ambiguous"
	OutcomeNoMatch    = "no_match"
	OutcomeEmptyInput = "empty_input"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <specs-dir> <input>",
		Short: "Resolve an input line against command sets",
		Long: `Resolve one input line: parse it, merge the given command sets and
look the candidates up, most specific first.

--set takes KEY[:KIND[:OWNER]] naming a definition in the specs dir;
--stored takes OWNER[:KIND] and loads every set stored for that owner.
An input of the form "<owner>'s <command>" only matches commands of that
owner.

Exit codes:
  0 - Exactly one command matched
  1 - Empty input, no match, or an ambiguous match
  2 - Command error

Examples:
  cmdres resolve ./specs "look at the sky" --set Character:actor:alice --set Room:location:hall
  cmdres resolve ./specs "sword's wield" --set Sword:object:sword --set Axe:object:axe
  cmdres resolve ./specs get --stored alice:actor --db cmdres.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "command set KEY[:KIND[:OWNER]] (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Stored, "stored", nil, "stored sets of OWNER[:KIND] (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite store (default from config)")
	cmd.Flags().IntVar(&opts.MaxWords, "max-words", 0, "word budget for command names (default from config)")
	cmd.Flags().StringVar(&opts.Parser, "parser", "", "registered parser name (default from config)")

	return cmd
}

func runResolve(opts *ResolveOptions, specsDir, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if len(opts.Sets) == 0 && len(opts.Stored) == 0 {
		return formatter.fail(ExitCommandError, ErrCodeBadArgument, "at least one --set or --stored is required", nil)
	}

	p, maxWords, err := parserFor(opts.RootOptions, opts.Parser, opts.MaxWords)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}

	var sources []resolver.Source

	if len(opts.Sets) > 0 {
		refs := make([]SetRef, 0, len(opts.Sets))
		for _, s := range opts.Sets {
			ref, err := ParseSetRef(s)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
			}
			refs = append(refs, ref)
		}

		loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
		if loadResult == nil || len(loadErrors) > 0 {
			code, message := firstLoadError(loadErrors)
			return formatter.fail(ExitCommandError, code, message, nil)
		}
		fromSpecs, err := sourcesFromRefs(loadResult, refs)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeUnknownSet, err.Error(), nil)
		}
		sources = append(sources, fromSpecs...)
	}

	if len(opts.Stored) > 0 {
		st, err := openStore(cmd.Context(), opts.RootOptions, opts.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		defer st.Close()

		for _, s := range opts.Stored {
			owner, kind, err := parseStoredRef(s)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
			}
			stored, err := storedSources(cmd.Context(), st, owner, kind)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			sources = append(sources, stored...)
		}
	}

	r := resolver.New(
		resolver.WithParser(p),
		resolver.WithMaxWords(maxWords),
		resolver.WithLogger(opts.logger()),
	)
	res, resolveErr := r.Resolve(input, sources)

	result := newResolveResult(res, resolveErr)
	return outputResolve(formatter, result, resolveErr)
}

// parseStoredRef parses OWNER[:KIND]; kind defaults to global.
func parseStoredRef(s string) (string, resolver.SourceKind, error) {
	owner, kindName, found := strings.Cut(s, ":")
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", "", fmt.Errorf("stored %q: empty owner", s)
	}
	if !found || strings.TrimSpace(kindName) == "" {
		return owner, resolver.KindGlobal, nil
	}
	kind, err := resolver.ParseSourceKind(kindName)
	if err != nil {
		return "", "", fmt.Errorf("stored %q: %w", s, err)
	}
	return owner, kind, nil
}

func newResolveResult(res *resolver.Resolution, resolveErr error) ResolveResult {
	result := ResolveResult{
		RequestID:  res.RequestID,
		Input:      res.Input,
		MergedKey:  res.Merged.Key,
		Candidates: res.Candidates,
	}
	if result.Candidates == nil {
		result.Candidates = []ir.Candidate{}
	}

	switch {
	case resolveErr == nil:
		result.Outcome = OutcomeMatched
	case resolver.IsAmbiguous(resolveErr):
		result.Outcome = OutcomeAmbiguous
	case resolver.IsEmptyInput(resolveErr):
		result.Outcome = OutcomeEmptyInput
	default:
		result.Outcome = OutcomeNoMatch
	}

	if res.Best != nil {
		cand := res.Best.Candidate
		result.Match = &cand
		result.Commands = viewCommands(res.Best.Commands)
	}
	if res.Fallback != nil {
		result.Fallback = res.Fallback.Key
	}
	return result
}

func outputResolve(formatter *OutputFormatter, result ResolveResult, resolveErr error) error {
	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result, RequestID: result.RequestID}
		if resolveErr != nil {
			resp.Status = "error"
			resp.Error = resolveCLIError(resolveErr)
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
		if resolveErr != nil {
			return WrapExitError(ExitFailure, "resolution failed", resolveErr)
		}
		return nil
	}

	w := formatter.Writer
	formatter.VerboseLog("request %s", result.RequestID)
	for _, c := range result.Candidates {
		formatter.VerboseLog("  candidate %s", c)
	}

	switch result.Outcome {
	case OutcomeMatched:
		c := result.Commands[0]
		fmt.Fprintf(w, "✓ %s", c.Key)
		if c.Owner != "" {
			fmt.Fprintf(w, " (%s)", c.Owner)
		}
		if result.Match.Args != "" {
			fmt.Fprintf(w, " args=%q", result.Match.Args)
		}
		fmt.Fprintln(w)
		return nil
	case OutcomeAmbiguous:
		fmt.Fprintf(w, "✗ %q is ambiguous:\n", result.Match.Name)
		for _, c := range result.Commands {
			fmt.Fprintf(w, "  %s (%s)\n", c.Key, c.Owner)
		}
	default:
		fmt.Fprintf(w, "✗ %s\n", resolveErr.Error())
	}
	if result.Fallback != "" {
		fmt.Fprintf(w, "  fallback: %s\n", result.Fallback)
	}
	return WrapExitError(ExitFailure, "resolution failed", resolveErr)
}

func resolveCLIError(err error) *CLIError {
	var rerr *resolver.ResolveError
	if errors.As(err, &rerr) {
		cliErr := &CLIError{Code: string(rerr.Code), Message: rerr.Message}
		if len(rerr.Matches) > 0 {
			cliErr.Details = rerr.Matches
		}
		return cliErr
	}
	return &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}
