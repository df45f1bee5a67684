package cmdset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/testutil"
)

// setA and setB are the two operands used throughout: they share "look".
func setA(priority int, mt ir.MergeType, opts ...Option) *CmdSet {
	opts = append([]Option{WithPriority(priority), WithMergeType(mt)}, opts...)
	s := New("A", opts...)
	s.AddAll(testutil.OwnedCommands("a", "look", "get")...)
	return s
}

func setB(priority int, mt ir.MergeType, opts ...Option) *CmdSet {
	opts = append([]Option{WithPriority(priority), WithMergeType(mt)}, opts...)
	s := New("B", opts...)
	s.AddAll(testutil.OwnedCommands("b", "look", "drop", "say", "who")...)
	return s
}

func owners(cmds []*ir.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Owner
	}
	return out
}

func TestMerge_Identity(t *testing.T) {
	a := setA(1, ir.Union)

	assert.Same(t, a, a.Merge(nil))
	assert.Same(t, a, a.Merge(New("Empty")))

	var none *CmdSet
	assert.Same(t, a, none.Merge(a))
}

func TestMerge_EmptyReceiver(t *testing.T) {
	empty := New("Empty")
	b := setB(0, ir.Union)

	merged := empty.Merge(b)
	assert.Equal(t, []string{"look", "drop", "say", "who"}, merged.Keys())
	assert.Equal(t, "Empty", merged.Key, "tie keeps the receiver as the high side")
}

func TestMerge_Policies(t *testing.T) {
	tests := []struct {
		name   string
		policy ir.MergeType
		keys   []string
	}{
		{"union", ir.Union, []string{"look", "get", "drop", "say", "who"}},
		{"intersect", ir.Intersect, []string{"look"}},
		{"replace", ir.Replace, []string{"look", "get"}},
		{"remove", ir.Remove, []string{"drop", "say", "who"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setA(2, tt.policy)
			b := setB(1, ir.Union)

			merged := a.Merge(b)

			assert.Equal(t, tt.keys, merged.Keys())
			assert.Equal(t, tt.policy, merged.ActualMergeType())
			if merged.ContainsKey("look") && tt.policy != ir.Remove {
				assert.Equal(t, "a", merged.GetKey("look").Owner, "higher side's descriptor wins")
			}
		})
	}
}

func TestMerge_HigherPriorityIsHighRegardlessOfOrder(t *testing.T) {
	for _, policy := range []ir.MergeType{ir.Union, ir.Intersect, ir.Replace, ir.Remove} {
		t.Run(policy.String(), func(t *testing.T) {
			a := setA(2, policy)
			b := setB(1, ir.Union)

			forward := a.Merge(b)
			backward := b.Merge(a)

			assert.ElementsMatch(t, forward.Keys(), backward.Keys())
			assert.Equal(t, "A", backward.Key)
			assert.Equal(t, policy, backward.ActualMergeType())
		})
	}
}

func TestMerge_UnionContainsBothSides(t *testing.T) {
	a := setA(3, ir.Union)
	b := setB(5, ir.Union)

	merged := a.Merge(b)

	for _, k := range append(a.Keys(), b.Keys()...) {
		assert.True(t, merged.ContainsKey(k), k)
	}
	assert.Equal(t, "b", merged.GetKey("look").Owner)
}

func TestMerge_IntersectNoLargerThanSmaller(t *testing.T) {
	a := setA(1, ir.Intersect)
	b := setB(0, ir.Union)

	merged := a.Merge(b)
	assert.LessOrEqual(t, merged.Len(), min(a.Len(), b.Len()))
}

func TestMerge_TieReceiverIsHigh(t *testing.T) {
	a := setA(1, ir.Replace, WithOwner("room"))
	b := setB(1, ir.Union)

	merged := a.Merge(b)

	assert.Equal(t, "A", merged.Key)
	assert.Equal(t, "room", merged.Owner)
	assert.Equal(t, []string{"look", "get"}, merged.Keys())

	merged = b.Merge(a)
	assert.Equal(t, "B", merged.Key)
	assert.Equal(t, ir.Union, merged.ActualMergeType())
}

func TestMerge_Duplicates(t *testing.T) {
	t.Run("union keeps both descriptors on equal priority", func(t *testing.T) {
		a := setA(1, ir.Union)
		b := setB(1, ir.Union, WithDuplicates(true))

		merged := a.Merge(b)

		assert.Equal(t, []string{"look", "get", "look", "drop", "say", "who"}, merged.Keys())
		assert.Equal(t, []string{"a", "b"}, owners(merged.Find("look")))
	})

	t.Run("intersect keeps both descriptors on equal priority", func(t *testing.T) {
		a := setA(1, ir.Intersect)
		b := setB(1, ir.Union, WithDuplicates(true))

		merged := a.Merge(b)

		assert.Equal(t, []string{"look", "look"}, merged.Keys())
		assert.Equal(t, []string{"a", "b"}, owners(merged.Commands()))
	})

	t.Run("only the lower side's flag counts", func(t *testing.T) {
		a := setA(1, ir.Union, WithDuplicates(true))
		b := setB(1, ir.Union)

		merged := a.Merge(b)
		assert.Len(t, merged.Find("look"), 1)
	})

	t.Run("ignored on unequal priority", func(t *testing.T) {
		a := setA(2, ir.Union)
		b := setB(1, ir.Union, WithDuplicates(true))

		merged := a.Merge(b)
		assert.Len(t, merged.Find("look"), 1)
	})

	t.Run("ignored by replace and remove", func(t *testing.T) {
		b := setB(1, ir.Union, WithDuplicates(true))

		assert.Equal(t, []string{"look", "get"}, setA(1, ir.Replace).Merge(b).Keys())
		assert.Equal(t, []string{"drop", "say", "who"}, setA(1, ir.Remove).Merge(b).Keys())
	})
}

func TestMerge_KeyOverride(t *testing.T) {
	a := setA(2, ir.Union, WithKeyMergeType("B", ir.Replace))
	b := setB(1, ir.Union)

	merged := a.Merge(b)

	assert.Equal(t, []string{"look", "get"}, merged.Keys())
	assert.Equal(t, ir.Replace, merged.ActualMergeType())
	assert.Equal(t, ir.Union, merged.MergeType, "settings come from the high side unchanged")
}

func TestMerge_KeyOverrideOnLowSideIgnored(t *testing.T) {
	a := setA(2, ir.Union)
	b := setB(1, ir.Union, WithKeyMergeType("A", ir.Replace))

	merged := a.Merge(b)

	assert.Equal(t, ir.Union, merged.ActualMergeType())
	assert.Equal(t, 5, merged.Len())
}

func TestMerge_SettingsFromHigh(t *testing.T) {
	a := setA(1, ir.Union)
	b := setB(7, ir.Intersect,
		WithNoObjs(true),
		WithNoExits(true),
		WithNoChannels(true),
		WithDuplicates(true),
		WithKeyMergeType("X", ir.Remove),
		WithOwner("hall"),
	)

	merged := a.Merge(b)

	assert.Equal(t, "B", merged.Key)
	assert.Equal(t, 7, merged.Priority)
	assert.Equal(t, ir.Intersect, merged.MergeType)
	assert.True(t, merged.NoObjs)
	assert.True(t, merged.NoExits)
	assert.True(t, merged.NoChannels)
	assert.True(t, merged.Duplicates)
	assert.Equal(t, "hall", merged.Owner)

	merged.KeyMergeTypes["X"] = ir.Union
	assert.Equal(t, ir.Remove, b.KeyMergeTypes["X"], "override map is copied into the result")
}

func TestMerge_SystemCommandsSurviveEveryPolicy(t *testing.T) {
	for _, policy := range []ir.MergeType{ir.Union, ir.Intersect, ir.Replace, ir.Remove} {
		t.Run(policy.String(), func(t *testing.T) {
			a := setA(2, policy)
			a.Add(ir.NewCommand("__noinput"))
			b := setB(1, ir.Union)
			b.Add(ir.NewCommand("__nomatch"))

			merged := a.Merge(b)

			assert.True(t, merged.ContainsKey("__noinput"))
			assert.True(t, merged.ContainsKey("__nomatch"))
		})
	}
}

func TestMerge_SystemCommandLastWins(t *testing.T) {
	a := setA(2, ir.Union)
	a.AddAll(testutil.OwnedCommands("a", "__nomatch")...)
	b := setB(1, ir.Union)
	b.AddAll(testutil.OwnedCommands("b", "__nomatch")...)

	merged := a.Merge(b)

	found := merged.Find("__nomatch")
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].Owner, "the other operand's system command is added last")
}

func TestMerge_SystemCommandsKeepTheirOwner(t *testing.T) {
	high := New("Room", WithPriority(2), WithOwner("room"))
	high.Add(ir.NewCommand("look"))
	low := New("Default", WithPriority(1))
	low.AddAll(ir.NewCommand("__nomatch"), ir.NewCommand("get"))

	merged := high.Merge(low)

	require.NotNil(t, merged.GetKey("__nomatch"))
	assert.Empty(t, merged.GetKey("__nomatch").Owner, "an ownerless system command stays ownerless")
	assert.Equal(t, "room", merged.GetKey("look").Owner)
	assert.Empty(t, merged.GetKey("get").Owner)

	for _, policy := range []ir.MergeType{ir.Union, ir.Intersect, ir.Replace, ir.Remove} {
		t.Run(policy.String(), func(t *testing.T) {
			h := New("Room", WithPriority(2), WithOwner("room"), WithMergeType(policy))
			h.Add(ir.NewCommand("look"))

			got := h.Merge(low).GetKey("__nomatch")
			require.NotNil(t, got)
			assert.Empty(t, got.Owner)
		})
	}
}

func TestMerge_DoesNotMutateOperands(t *testing.T) {
	a := setA(1, ir.Remove, WithKeyMergeType("B", ir.Intersect))
	a.Add(ir.NewCommand("__noinput"))
	b := setB(1, ir.Union, WithDuplicates(true))

	aKeys, bKeys := a.Keys(), b.Keys()
	aFP, bFP := a.Fingerprint(), b.Fingerprint()

	_ = a.Merge(b)
	_ = b.Merge(a)

	assert.Equal(t, aKeys, a.Keys())
	assert.Equal(t, bKeys, b.Keys())
	assert.Equal(t, aFP, a.Fingerprint())
	assert.Equal(t, bFP, b.Fingerprint())
	assert.Equal(t, ir.Intersect, a.KeyMergeTypes["B"])
}

func TestMerge_Deterministic(t *testing.T) {
	first := setA(1, ir.Union).Merge(setB(1, ir.Union, WithDuplicates(true)))
	second := setA(1, ir.Union).Merge(setB(1, ir.Union, WithDuplicates(true)))

	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}

func TestMerge_Chain(t *testing.T) {
	// Fold order: highest priority first, each step merging the next lower.
	exit := New("Exit", WithPriority(9))
	exit.AddAll(testutil.Commands("north")...)
	char := New("Character", WithPriority(1))
	char.AddAll(testutil.Commands("look", "get")...)
	banned := New("Banned", WithPriority(0), WithMergeType(ir.Remove))
	banned.AddAll(testutil.Commands("get")...)

	merged := exit.Merge(char).Merge(banned)

	// banned is lower priority, so Remove does not apply: the running set is
	// H and its Union policy is used.
	assert.Equal(t, []string{"north", "look", "get"}, merged.Keys())

	filter := New("Filter", WithPriority(10), WithMergeType(ir.Remove))
	filter.AddAll(testutil.Commands("get")...)
	assert.Equal(t, []string{"north", "look"}, filter.Merge(merged).Keys())
}
