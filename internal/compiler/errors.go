package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a structural error in a definition, with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalisation warning codes (W001-W099)
const (
	WarnNegativePriority = "W001" // priority below 0, clamped
	WarnMergeType        = "W002" // empty or unknown merge type, Union used
	WarnKeyMergeType     = "W003" // unknown override merge type, entry dropped
	WarnEmptyAlias       = "W004" // empty alias or alias equal to the key, dropped
)

// Warning reports a value that was replaced by a safe default.
type Warning struct {
	Set     string    `json:"set"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    string    `json:"code"`
	Pos     token.Pos `json:"-"`
}

func (w Warning) String() string {
	if w.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s.%s: %s",
			w.Pos.Filename(), w.Pos.Line(), w.Pos.Column(),
			w.Code, w.Set, w.Field, w.Message)
	}
	return fmt.Sprintf("[%s] %s.%s: %s", w.Code, w.Set, w.Field, w.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
