package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cmdres.db")
}

func TestStore_SaveListShowDelete(t *testing.T) {
	db := tempDB(t)

	out, err := runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "Sword", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ Stored 2 command set(s) for alice\n", out)

	_, err = runCLI(t, "store", "save", "testdata/specs", "hall", "Room", "--db", db)
	require.NoError(t, err)

	out, err = runCLI(t, "store", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\nhall\n", out)

	out, err = runCLI(t, "store", "list", "alice", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%3d  %-20s priority %-3d ", 1, "Character", 0))
	assert.Contains(t, out, fmt.Sprintf("%3d  %-20s priority %-3d ", 2, "Sword", 0))

	out, err = runCLI(t, "store", "show", "alice", "Character", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "alice/Character (seq 1, priority 0, Union)\n")
	assert.Contains(t, out, "  look [l]\n")
	assert.Contains(t, out, "  __nomatch_command\n")

	out, err = runCLI(t, "store", "delete", "alice", "Sword", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ Deleted 1 command set(s) for alice\n", out)

	out, err = runCLI(t, "store", "delete", "hall", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ Deleted 1 command set(s) for hall\n", out)

	out, err = runCLI(t, "store", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)
}

func TestStore_SaveAllDefinitions(t *testing.T) {
	db := tempDB(t)

	out, err := runCLI(t, "store", "save", "testdata/specs", "world", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ Stored 6 command set(s) for world\n", out)
}

func TestStore_SaveReplacesInPlace(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "Room", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "store", "list", "alice", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Owner   string      `json:"owner"`
			CmdSets []StoredSet `json:"cmdsets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.CmdSets, 2)
	assert.Equal(t, "Character", resp.Data.CmdSets[0].Key)
	assert.Equal(t, int64(1), resp.Data.CmdSets[0].Seq)
	assert.Equal(t, "Room", resp.Data.CmdSets[1].Key)
	assert.Nil(t, resp.Data.CmdSets[0].Spec)
}

func TestStore_ShowJSON(t *testing.T) {
	db := tempDB(t)
	_, err := runCLI(t, "store", "save", "testdata/specs", "door", "Exit", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "store", "show", "door", "Exit", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data StoredSet `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "door", resp.Data.Owner)
	assert.Equal(t, 9, resp.Data.Priority)
	assert.Len(t, resp.Data.SpecHash, 64)
	assert.NotEmpty(t, resp.Data.IRVersion)
	require.NotNil(t, resp.Data.Spec)
	assert.Equal(t, "north", resp.Data.Spec.Commands[0].Key)
}

func TestStore_Find(t *testing.T) {
	db := tempDB(t)
	_, err := runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, "store", "save", "testdata/specs", "bob", "Character", "Room", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "store", "show", "alice", "Character", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data StoredSet `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	out, err = runCLI(t, "store", "find", resp.Data.SpecHash, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice/Character\nbob/Character\n", out)

	out, err = runCLI(t, "store", "find", "0000", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No matching command sets.\n", out)
}

func TestStore_Empty(t *testing.T) {
	db := tempDB(t)

	out, err := runCLI(t, "store", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No owners.\n", out)

	out, err = runCLI(t, "store", "list", "nobody", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No command sets for nobody.\n", out)
}

func TestStore_Errors(t *testing.T) {
	db := tempDB(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"show missing", []string{"store", "show", "alice", "Nope", "--db", db}, ExitFailure, ErrCodeUnknownSet},
		{"delete missing", []string{"store", "delete", "alice", "Nope", "--db", db}, ExitFailure, ErrCodeUnknownSet},
		{"save unknown set", []string{"store", "save", "testdata/specs", "alice", "Nope", "--db", db}, ExitCommandError, ErrCodeUnknownSet},
		{"save bad specs", []string{"store", "save", "testdata/bad", "alice", "--db", db}, ExitCommandError, ErrCodeInvalidPriority},
		{"no database", []string{"store", "list"}, ExitCommandError, ErrCodeStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestStore_DatabaseFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cmdres.yaml")
	db := filepath.Join(dir, "from-config.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db: "+db+"\n"), 0644))

	_, err := runCLI(t, "store", "save", "testdata/specs", "alice", "Character", "--config", cfgPath)
	require.NoError(t, err)

	out, err := runCLI(t, "store", "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)
}
