package resolver

import (
	"errors"
	"fmt"
)

// ResolveError reports why a resolution produced no single command.
//
// The Resolution returned alongside is always complete; ResolveError only
// classifies the outcome.
type ResolveError struct {
	// Code identifies the outcome category.
	Code ResolveErrorCode

	// Message is a human-readable description.
	Message string

	// RequestID identifies the affected resolution.
	RequestID string

	// Input is the raw input line.
	Input string

	// Matches lists the command keys found, for ambiguous outcomes.
	Matches []string
}

// ResolveErrorCode categorizes resolve errors.
type ResolveErrorCode string

const (
	// ErrCodeEmptyInput indicates the input was empty after trimming.
	ErrCodeEmptyInput ResolveErrorCode = "EMPTY_INPUT"

	// ErrCodeNoMatch indicates no candidate named a command in the merged set.
	ErrCodeNoMatch ResolveErrorCode = "NO_MATCH"

	// ErrCodeAmbiguous indicates the winning candidate named several commands.
	ErrCodeAmbiguous ResolveErrorCode = "AMBIGUOUS"
)

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (request=%s)", e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsEmptyInput returns true if err is an empty input error.
// Uses errors.As to handle wrapped errors.
func IsEmptyInput(err error) bool {
	return hasCode(err, ErrCodeEmptyInput)
}

// IsNoMatch returns true if err is a no match error.
func IsNoMatch(err error) bool {
	return hasCode(err, ErrCodeNoMatch)
}

// IsAmbiguous returns true if err is an ambiguous match error.
func IsAmbiguous(err error) bool {
	return hasCode(err, ErrCodeAmbiguous)
}

func hasCode(err error, code ResolveErrorCode) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewEmptyInputError creates a ResolveError for empty input.
func NewEmptyInputError(requestID string) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeEmptyInput,
		Message:   "input is empty",
		RequestID: requestID,
	}
}

// NewNoMatchError creates a ResolveError for input matching no command.
func NewNoMatchError(requestID, input string) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeNoMatch,
		Message:   fmt.Sprintf("no command matches %q", input),
		RequestID: requestID,
		Input:     input,
	}
}

// NewAmbiguousError creates a ResolveError for several matching commands.
func NewAmbiguousError(requestID, input string, matches []string) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeAmbiguous,
		Message:   fmt.Sprintf("%d commands match %q", len(matches), input),
		RequestID: requestID,
		Input:     input,
		Matches:   matches,
	}
}
