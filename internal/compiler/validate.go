package compiler

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/cmdres/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrDuplicateSetKey     = "E101" // two definitions share a key
	ErrDuplicateCommandKey = "E102" // a definition lists a command key twice
	ErrUnknownOverride     = "E103" // key_merge_types names no known set
	ErrAliasCollision      = "E104" // an alias equals another command's key
)

// ValidationError represents a cross-definition validation finding.
type ValidationError struct {
	Set     string `json:"set"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Set, e.Field, e.Message)
}

// ValidateSpecs checks a set of compiled definitions against each other.
// Returns all findings (does not fail-fast). None of them stop a resolver
// from running: duplicate command keys collapse to the last one added, and
// overrides naming unknown sets never apply.
func ValidateSpecs(specs []ir.CmdSetSpec) []ValidationError {
	var errs []ValidationError

	known := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if known[spec.Key] {
			errs = append(errs, ValidationError{
				Set:     spec.Key,
				Field:   "key",
				Message: "duplicate command set key",
				Code:    ErrDuplicateSetKey,
			})
		}
		known[spec.Key] = true
	}

	for _, spec := range specs {
		errs = append(errs, validateCommands(spec)...)

		for _, other := range slices.Sorted(maps.Keys(spec.KeyMergeTypes)) {
			if !known[other] {
				errs = append(errs, ValidationError{
					Set:     spec.Key,
					Field:   "key_merge_types." + other,
					Message: fmt.Sprintf("no command set has key %q", other),
					Code:    ErrUnknownOverride,
				})
			}
		}
	}
	return errs
}

func validateCommands(spec ir.CmdSetSpec) []ValidationError {
	var errs []ValidationError

	keys := make(map[string]bool, len(spec.Commands))
	for i, cmd := range spec.Commands {
		if keys[cmd.Key] {
			errs = append(errs, ValidationError{
				Set:     spec.Key,
				Field:   fmt.Sprintf("commands[%d].key", i),
				Message: fmt.Sprintf("duplicate command key %q, the last one wins", cmd.Key),
				Code:    ErrDuplicateCommandKey,
			})
		}
		keys[cmd.Key] = true
	}

	for i, cmd := range spec.Commands {
		for _, alias := range cmd.Aliases {
			if keys[alias] {
				errs = append(errs, ValidationError{
					Set:     spec.Key,
					Field:   fmt.Sprintf("commands[%d].aliases", i),
					Message: fmt.Sprintf("alias %q is also a command key", alias),
					Code:    ErrAliasCollision,
				})
			}
		}
	}
	return errs
}
