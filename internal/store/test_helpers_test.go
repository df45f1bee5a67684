package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/cmdres/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSpec creates a definition with one command per key.
func createTestSpec(key string, priority int, keys ...string) ir.CmdSetSpec {
	spec := ir.CmdSetSpec{Key: key, Priority: priority, MergeType: ir.Union}
	for _, k := range keys {
		spec.Commands = append(spec.Commands, *ir.NewCommand(k))
	}
	return spec
}
