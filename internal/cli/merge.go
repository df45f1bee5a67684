package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/cmdres/internal/cmdset"
	"github.com/roach88/cmdres/internal/resolver"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
}

// MergeResult describes a merged set.
type MergeResult struct {
	Key             string        `json:"key"`
	Priority        int           `json:"priority"`
	MergeType       string        `json:"merge_type"`
	ActualMergeType string        `json:"actual_merge_type"`
	Fingerprint     string        `json:"fingerprint"`
	Sources         []string      `json:"sources"`
	Commands        []commandView `json:"commands"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <specs-dir> <set>...",
		Short: "Fold command sets into one",
		Long: `Merge the named command sets the way a resolution does.

Each set is KEY[:KIND[:OWNER]]; kind defaults to global and owner to the
key. Sets are gathered (exclusion flags applied) and folded from the
lowest priority up; on equal priority the earlier argument wins.

Examples:
  cmdres merge ./specs Character:actor Room:location Exit:exit:door
  cmdres merge ./specs Base Combat --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runMerge(opts *MergeOptions, specsDir string, setArgs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	refs := make([]SetRef, 0, len(setArgs))
	for _, arg := range setArgs {
		ref, err := ParseSetRef(arg)
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

	sources, err := sourcesFromRefs(loadResult, refs)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeUnknownSet, err.Error(), nil)
	}

	gathered := resolver.Gather(sources)
	var included []string
	for _, src := range gathered {
		if src.Include {
			included = append(included, src.Set.Key)
		} else {
			formatter.VerboseLog("Excluded %s (%s)", src.Set.Key, src.Kind)
		}
	}

	merged := resolver.Fold(gathered)
	opts.logger().Debug("merged command sets",
		zap.Strings("sources", included),
		zap.String("key", merged.Key),
		zap.Int("commands", merged.Len()),
	)

	result := newMergeResult(merged, included)
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s (priority %d, %s, applied %s)\n",
		result.Key, result.Priority, result.MergeType, result.ActualMergeType)
	fmt.Fprintf(w, "fingerprint %s\n\n", result.Fingerprint)
	for _, c := range result.Commands {
		fmt.Fprintf(w, "  %-20s %s\n", c.Key, c.Owner)
	}
	return nil
}

func newMergeResult(merged *cmdset.CmdSet, included []string) MergeResult {
	if included == nil {
		included = []string{}
	}
	return MergeResult{
		Key:             merged.Key,
		Priority:        merged.Priority,
		MergeType:       merged.MergeType.String(),
		ActualMergeType: merged.ActualMergeType().String(),
		Fingerprint:     merged.Fingerprint(),
		Sources:         included,
		Commands:        viewCommands(merged.Commands()),
	}
}
