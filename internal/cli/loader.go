package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cmdres/internal/compiler"
	"github.com/roach88/cmdres/internal/ir"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the definitions loaded from a directory.
type LoadResult struct {
	CmdSets   []ir.CmdSetSpec
	Warnings  []compiler.Warning
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// Find returns the definition with key, or false.
func (r *LoadResult) Find(key string) (ir.CmdSetSpec, bool) {
	for _, spec := range r.CmdSets {
		if spec.Key == key {
			return spec, true
		}
	}
	return ir.CmdSetSpec{}, false
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the cmdset definitions of a directory.
//
// A nil result means nothing could be loaded at all. Otherwise the result
// holds every definition that compiled; with LoadModeFailFast loading stops
// at the first compile error.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	root := value.LookupPath(cue.ParsePath(compiler.RootField))
	if !root.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoDefinitions, Message: "no cmdset definitions found in specs"}}
	}
	iter, err := root.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating cmdset definitions: %v", err)}}
	}

	var errs []error
	for iter.Next() {
		spec, warns, compileErr := compiler.CompileCmdSet(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, compiler.RootField+"."+iter.Selector().String()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.CmdSets = append(result.CmdSets, *spec)
		result.Warnings = append(result.Warnings, warns...)
	}

	if len(result.CmdSets) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoDefinitions, Message: "no cmdset definitions found in specs"})
	}
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// firstLoadError returns the code and message of the first error.
func firstLoadError(errs []error) (string, string) {
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, errs[0].Error()
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeNoDefinitions = "E008" // No cmdset field or no definitions
	ErrCodeUnknownSet    = "E009" // A named set is not defined
	ErrCodeStore         = "E010" // Store open, read or write failed
	ErrCodeBadArgument   = "E011" // Malformed flag or argument

	// Definition compile errors
	ErrCodeInvalidCmdSet    = "E110" // Definition is not a struct
	ErrCodeInvalidKey       = "E111" // Missing or non-string key
	ErrCodeInvalidPriority  = "E112" // Priority is not an integer
	ErrCodeInvalidMergeType = "E113" // merge_type or key_merge_types has the wrong kind
	ErrCodeInvalidFlag      = "E114" // duplicates or an exclusion flag is not a bool
	ErrCodeInvalidCommand   = "E115" // Command entry without key or with wrong kinds
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cmdset":
		return ErrCodeInvalidCmdSet
	case field == "key":
		return ErrCodeInvalidKey
	case field == "priority":
		return ErrCodeInvalidPriority
	case field == "merge_type", strings.HasPrefix(field, "key_merge_types"):
		return ErrCodeInvalidMergeType
	case field == "duplicates", strings.HasPrefix(field, "no_"):
		return ErrCodeInvalidFlag
	case strings.HasPrefix(field, "commands"):
		return ErrCodeInvalidCommand
	default:
		return ErrCodeGeneric
	}
}
