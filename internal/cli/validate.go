package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdres/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat warnings as errors
}

// Finding is one validation problem.
type Finding struct {
	Code    string `json:"code"`
	Set     string `json:"set,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	CmdSets  int       `json:"cmdsets"`
	Errors   []Finding `json:"errors,omitempty"`
	Warnings []Finding `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Check definitions for errors and conflicts",
		Long: `Compile every cmdset definition and check them against each other.

Reports compile errors, duplicate set keys, duplicate command keys within
a set, aliases that shadow another command's key, and key_merge_types
entries naming sets that do not exist. Warnings only fail with --strict.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		code, message := firstLoadError(loadErrors)
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := ValidateLoaded(loadResult, loadErrors)
	if opts.Strict && len(result.Warnings) > 0 {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Valid = false
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateLoaded turns load errors, compiler warnings and cross-definition
// findings into a ValidationResult.
func ValidateLoaded(loadResult *LoadResult, loadErrors []error) ValidationResult {
	result := ValidationResult{CmdSets: len(loadResult.CmdSets)}

	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			f := Finding{Code: loadErr.Code, Message: loadErr.Message}
			if loadErr.Pos.IsValid() {
				f.Line = loadErr.Pos.Line()
			}
			result.Errors = append(result.Errors, f)
			continue
		}
		result.Errors = append(result.Errors, Finding{Code: ErrCodeGeneric, Message: err.Error()})
	}

	for _, verr := range compiler.ValidateSpecs(loadResult.CmdSets) {
		result.Errors = append(result.Errors, Finding{
			Code:    verr.Code,
			Set:     verr.Set,
			Field:   verr.Field,
			Message: verr.Message,
		})
	}

	for _, w := range loadResult.Warnings {
		f := Finding{Code: w.Code, Set: w.Set, Field: w.Field, Message: w.Message}
		if w.Pos.IsValid() {
			f.Line = w.Pos.Line()
		}
		result.Warnings = append(result.Warnings, f)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d command set(s) valid\n", result.CmdSets)
	if len(result.Warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		for _, w := range result.Warnings {
			printFinding(formatter, w)
		}
	}
	return nil
}

// outputValidationErrors outputs every finding. Validation failures exit 1.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))

	if formatter.JSON() {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, f := range result.Errors {
		printFinding(formatter, f)
	}
	return NewExitError(ExitFailure, msg)
}

func printFinding(formatter *OutputFormatter, f Finding) {
	if f.Line > 0 {
		fmt.Fprintf(formatter.Writer, "line %d\n", f.Line)
	}
	where := f.Set
	if f.Field != "" {
		where += "." + f.Field
	}
	if where != "" {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", f.Code, where, f.Message)
		return
	}
	fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", f.Code, f.Message)
}
