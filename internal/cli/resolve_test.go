package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdres/internal/resolver"
)

type resolveResponse struct {
	Status    string        `json:"status"`
	Data      ResolveResult `json:"data"`
	Error     *CLIError     `json:"error"`
	RequestID string        `json:"request_id"`
}

func resolveJSON(t *testing.T, args ...string) (resolveResponse, error) {
	t.Helper()
	out, err := runCLI(t, append([]string{"resolve", "--format", "json"}, args...)...)
	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}

func TestResolve_MostSpecificCandidateWins(t *testing.T) {
	out, err := runCLI(t, "resolve", "testdata/specs", "look at the sky",
		"--set", "Character:actor:alice", "--set", "Room:location:hall")
	require.NoError(t, err)
	assert.Equal(t, "✓ look at (hall) args=\"the sky\"\n", out)
}

func TestResolve_Alias(t *testing.T) {
	out, err := runCLI(t, "resolve", "testdata/specs", "l",
		"--set", "Character:actor:alice", "--set", "Exit:exit:door")
	require.NoError(t, err)
	assert.Equal(t, "✓ look (alice)\n", out)
}

func TestResolve_JSONMatch(t *testing.T) {
	resp, err := resolveJSON(t, "testdata/specs", "get sword",
		"--set", "Character:actor:alice")
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, resp.Data.RequestID)
	assert.Equal(t, OutcomeMatched, resp.Data.Outcome)
	assert.Equal(t, "Character", resp.Data.MergedKey)
	require.NotNil(t, resp.Data.Match)
	assert.Equal(t, "get", resp.Data.Match.Name)
	assert.Equal(t, "sword", resp.Data.Match.Args)
	assert.Equal(t, []string{"get"}, commandKeys(resp.Data.Commands))
	assert.Len(t, resp.Data.Candidates, 2)
}

func TestResolve_Ambiguous(t *testing.T) {
	args := []string{"testdata/specs", "wield", "--set", "Sword:object:sword", "--set", "Axe:object:axe"}

	out, err := runCLI(t, append([]string{"resolve"}, args...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, resolver.IsAmbiguous(err))
	assert.Equal(t, "✗ \"wield\" is ambiguous:\n  wield (sword)\n  wield (axe)\n", out)

	resp, err := resolveJSON(t, args...)
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(resolver.ErrCodeAmbiguous), resp.Error.Code)
	assert.Equal(t, []any{"wield", "wield"}, resp.Error.Details)
	assert.Equal(t, OutcomeAmbiguous, resp.Data.Outcome)
	assert.Len(t, resp.Data.Commands, 2)
}

func TestResolve_Qualifier(t *testing.T) {
	out, err := runCLI(t, "resolve", "testdata/specs", "axe's wield",
		"--set", "Sword:object:sword", "--set", "Axe:object:axe")
	require.NoError(t, err)
	assert.Equal(t, "✓ wield (axe)\n", out)
}

func TestResolve_NoMatchFallback(t *testing.T) {
	args := []string{"testdata/specs", "north",
		"--set", "Character:actor:alice", "--set", "Dark", "--set", "Exit:exit:door"}

	out, err := runCLI(t, append([]string{"resolve"}, args...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, resolver.IsNoMatch(err))
	assert.Contains(t, out, "✗ NO_MATCH: no command matches \"north\"")
	assert.Contains(t, out, "  fallback: __nomatch_command\n")

	resp, _ := resolveJSON(t, args...)
	assert.Equal(t, OutcomeNoMatch, resp.Data.Outcome)
	assert.Equal(t, "Dark", resp.Data.MergedKey)
	assert.Equal(t, "__nomatch_command", resp.Data.Fallback)
	assert.Nil(t, resp.Data.Match)
}

func TestResolve_EmptyInput(t *testing.T) {
	resp, err := resolveJSON(t, "testdata/specs", "  ", "--set", "Character")
	require.Error(t, err)
	assert.True(t, resolver.IsEmptyInput(err))
	assert.Equal(t, OutcomeEmptyInput, resp.Data.Outcome)
	assert.Equal(t, string(resolver.ErrCodeEmptyInput), resp.Error.Code)
	assert.Empty(t, resp.Data.Candidates)
}

func TestResolve_MaxWordsFlag(t *testing.T) {
	_, err := runCLI(t, "resolve", "testdata/specs", "look at the sky",
		"--set", "Room", "--max-words", "1")
	require.Error(t, err)
	assert.True(t, resolver.IsNoMatch(err))
}

func TestResolve_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no sets", []string{"testdata/specs", "look"}, ErrCodeBadArgument},
		{"bad set", []string{"testdata/specs", "look", "--set", "Room:attic"}, ErrCodeBadArgument},
		{"unknown set", []string{"testdata/specs", "look", "--set", "Nope"}, ErrCodeUnknownSet},
		{"bad stored", []string{"testdata/specs", "look", "--stored", ":actor", "--db", filepath.Join(t.TempDir(), "x.db")}, ErrCodeBadArgument},
		{"no database", []string{"testdata/specs", "look", "--stored", "alice"}, ErrCodeStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"resolve"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestResolve_StoredSets(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cmdres.db")

	_, err := runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, "store", "save", "testdata/specs", "door", "Exit", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "resolve", "unused", "get apple", "--stored", "alice:actor", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ get (alice) args=\"apple\"\n", out)

	// Stored and file definitions combine.
	out, err = runCLI(t, "resolve", "testdata/specs", "n",
		"--stored", "door:exit", "--set", "Room:location:hall", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ north (door)\n", out)

	_, err = runCLI(t, "resolve", "unused", "get", "--stored", "bob", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
