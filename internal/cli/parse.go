package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdres/internal/ir"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	MaxWords int
	Parser   string
}

// ParseResult is the candidate list for one input.
type ParseResult struct {
	Input      string         `json:"input"`
	MaxWords   int            `json:"max_words"`
	Candidates []ir.Candidate `json:"candidates"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <input>...",
		Short: "Show the command-name candidates of an input line",
		Long: `Split an input line into (command name, arguments) candidates.

Arguments are joined with single spaces; quote the line to keep its
spacing. Candidates are printed in parse order, from the shortest
command name to the longest.

Examples:
  cmdres parse "look at the sky"
  cmdres parse "sword's wield" --format json
  cmdres parse --max-words 1 "get all"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxWords, "max-words", 0, "word budget for command names (default from config)")
	cmd.Flags().StringVar(&opts.Parser, "parser", "", "registered parser name (default from config)")

	return cmd
}

func runParse(opts *ParseOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, maxWords, err := parserFor(opts.RootOptions, opts.Parser, opts.MaxWords)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}

	result := ParseResult{
		Input:      input,
		MaxWords:   maxWords,
		Candidates: p.Parse(input, maxWords),
	}
	if result.Candidates == nil {
		result.Candidates = []ir.Candidate{}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Candidates) == 0 {
		fmt.Fprintln(w, "No candidates.")
		return nil
	}
	for _, c := range result.Candidates {
		fmt.Fprintf(w, "%d %s\n", c.Specificity, c)
	}
	return nil
}
