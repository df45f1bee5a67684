package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/cmdres/internal/ir"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	spec := createTestSpec("Exit", 9, "north", "south")
	spec.MergeType = ir.Replace
	spec.KeyMergeTypes = map[string]ir.MergeType{"Character": ir.Intersect}
	spec.NoChannels = true
	spec.Commands[0] = *ir.NewCommand("north", "n")
	spec.Commands[0].Help = "go north"

	if err := s.SaveCmdSet(ctx, "door", spec); err != nil {
		t.Fatalf("SaveCmdSet() failed: %v", err)
	}

	got, err := s.LoadCmdSets(ctx, "door")
	if err != nil {
		t.Fatalf("LoadCmdSets() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d specs, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0], spec) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got[0], spec)
	}
}

func TestSave_ReplacesAndKeepsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, spec := range []ir.CmdSetSpec{
		createTestSpec("Character", 0, "look"),
		createTestSpec("Banned", 5, "get"),
	} {
		if err := s.SaveCmdSet(ctx, "alice", spec); err != nil {
			t.Fatalf("SaveCmdSet(%s) failed: %v", spec.Key, err)
		}
	}

	before, err := s.LoadCmdSet(ctx, "alice", "Character")
	if err != nil {
		t.Fatalf("LoadCmdSet() failed: %v", err)
	}

	if err := s.SaveCmdSet(ctx, "alice", createTestSpec("Character", 1, "look", "get")); err != nil {
		t.Fatalf("SaveCmdSet(replace) failed: %v", err)
	}

	after, err := s.LoadCmdSet(ctx, "alice", "Character")
	if err != nil {
		t.Fatalf("LoadCmdSet() failed: %v", err)
	}
	if after.Seq != before.Seq {
		t.Errorf("seq changed on replace: %d -> %d", before.Seq, after.Seq)
	}
	if after.SpecHash == before.SpecHash {
		t.Error("spec hash should change with the definition")
	}
	if after.Spec.Priority != 1 || len(after.Spec.Commands) != 2 {
		t.Errorf("definition not replaced: %+v", after.Spec)
	}

	specs, err := s.LoadCmdSets(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadCmdSets() failed: %v", err)
	}
	var keys []string
	for _, spec := range specs {
		keys = append(keys, spec.Key)
	}
	if !reflect.DeepEqual(keys, []string{"Character", "Banned"}) {
		t.Errorf("load order = %v, want [Character Banned]", keys)
	}
}

func TestSave_Validation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SaveCmdSet(ctx, "", createTestSpec("Character", 0)); err == nil {
		t.Error("empty owner should fail")
	}
	if err := s.SaveCmdSet(ctx, "alice", createTestSpec("", 0)); err == nil {
		t.Error("empty key should fail")
	}
}

func TestLoad_Empty(t *testing.T) {
	s := createTestStore(t)

	specs, err := s.LoadCmdSets(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadCmdSets() failed: %v", err)
	}
	if specs == nil || len(specs) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", specs)
	}
}

func TestLoadCmdSet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadCmdSet(context.Background(), "alice", "Character")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SaveCmdSet(ctx, "alice", createTestSpec("Character", 0, "look")); err != nil {
		t.Fatalf("SaveCmdSet() failed: %v", err)
	}
	if err := s.DeleteCmdSet(ctx, "alice", "Character"); err != nil {
		t.Fatalf("DeleteCmdSet() failed: %v", err)
	}
	if err := s.DeleteCmdSet(ctx, "alice", "Character"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteOwner(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"Character", "Banned"} {
		if err := s.SaveCmdSet(ctx, "alice", createTestSpec(key, 0, "look")); err != nil {
			t.Fatalf("SaveCmdSet() failed: %v", err)
		}
	}
	if err := s.SaveCmdSet(ctx, "bob", createTestSpec("Character", 0, "look")); err != nil {
		t.Fatalf("SaveCmdSet() failed: %v", err)
	}

	n, err := s.DeleteOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("DeleteOwner() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	owners, err := s.ListOwners(ctx)
	if err != nil {
		t.Fatalf("ListOwners() failed: %v", err)
	}
	if !reflect.DeepEqual(owners, []string{"bob"}) {
		t.Errorf("owners = %v, want [bob]", owners)
	}
}

func TestListOwners_Sorted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, owner := range []string{"zed", "alice", "mallory", "alice"} {
		if err := s.SaveCmdSet(ctx, owner, createTestSpec("Character", 0, "look")); err != nil {
			t.Fatalf("SaveCmdSet(%s) failed: %v", owner, err)
		}
	}

	owners, err := s.ListOwners(ctx)
	if err != nil {
		t.Fatalf("ListOwners() failed: %v", err)
	}
	if !reflect.DeepEqual(owners, []string{"alice", "mallory", "zed"}) {
		t.Errorf("owners = %v", owners)
	}
}

func TestFindBySpecHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	spec := createTestSpec("Character", 0, "look")

	for _, owner := range []string{"bob", "alice"} {
		if err := s.SaveCmdSet(ctx, owner, spec); err != nil {
			t.Fatalf("SaveCmdSet(%s) failed: %v", owner, err)
		}
	}

	records, err := s.FindBySpecHash(ctx, ir.MustSpecHash(spec))
	if err != nil {
		t.Fatalf("FindBySpecHash() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Owner != "bob" || records[1].Owner != "alice" {
		t.Errorf("want seq order [bob alice], got [%s %s]", records[0].Owner, records[1].Owner)
	}
	if records[0].IRVersion != ir.SpecVersion {
		t.Errorf("ir_version = %q", records[0].IRVersion)
	}
}
