package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveError_Error(t *testing.T) {
	err := NewNoMatchError("req-1", "xyzzy")
	assert.Equal(t, `NO_MATCH: no command matches "xyzzy" (request=req-1)`, err.Error())

	err = NewEmptyInputError("")
	assert.Equal(t, "EMPTY_INPUT: input is empty", err.Error())
}

func TestResolveError_Helpers(t *testing.T) {
	wrapped := fmt.Errorf("resolving: %w", NewAmbiguousError("req-1", "look", []string{"look", "look"}))

	assert.True(t, IsAmbiguous(wrapped))
	assert.False(t, IsNoMatch(wrapped))
	assert.False(t, IsEmptyInput(wrapped))

	assert.True(t, IsNoMatch(NewNoMatchError("", "x")))
	assert.True(t, IsEmptyInput(NewEmptyInputError("")))
	assert.False(t, IsNoMatch(errors.New("plain")))
	assert.False(t, IsNoMatch(nil))
}

func TestNewAmbiguousError(t *testing.T) {
	err := NewAmbiguousError("req-1", "look", []string{"look", "look"})

	assert.Equal(t, ErrCodeAmbiguous, err.Code)
	assert.Equal(t, []string{"look", "look"}, err.Matches)
	assert.Equal(t, "look", err.Input)
	assert.Contains(t, err.Message, "2 commands")
}
