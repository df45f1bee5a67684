package cmdset

import "github.com/roach88/cmdres/internal/ir"

// Merge combines s (A) with other (B) into a new set C = A + B.
//
// The operand with the strictly higher priority is H, the other L; on a tie
// s is H. The policy is H.KeyMergeTypes[L.Key] if present, else H.MergeType.
// C takes every setting from H and records the applied policy in
// ActualMergeType.
//
// A nil or empty other returns s itself, not a copy; a nil s returns other.
// Callers must not mutate a result that may alias an operand.
func (s *CmdSet) Merge(other *CmdSet) *CmdSet {
	if other.Len() == 0 {
		return s
	}
	if s == nil {
		return other
	}

	sysCmds := append(s.SystemCommands(), other.SystemCommands()...)

	high, low := s, other
	if other.Priority > s.Priority {
		high, low = other, s
	}

	policy, ok := high.KeyMergeTypes[low.Key]
	if !ok || !policy.Valid() {
		policy = high.MergeType
	}
	// Only the lower side's flag counts, and only for Union and Intersect.
	duplicates := low.Duplicates && high.Priority == low.Priority

	h := high.regular()
	l := low.regular()

	var cmds []*ir.Command
	switch policy {
	case ir.Intersect:
		cmds = intersect(h, l, duplicates)
	case ir.Replace:
		cmds = replace(h)
	case ir.Remove:
		cmds = remove(h, l)
	default:
		cmds = union(h, l, duplicates)
	}

	merged := high.Copy()
	merged.commands = cmds
	merged.actual = policy

	// System commands keep the owner they came with.
	for _, c := range sysCmds {
		merged.put(c)
	}
	return merged
}

// regular returns the non-system commands.
func (s *CmdSet) regular() []*ir.Command {
	out := make([]*ir.Command, 0, len(s.commands))
	for _, c := range s.commands {
		if !c.IsSystem() {
			out = append(out, c)
		}
	}
	return out
}

// union: all of h, then those of l whose key h lacks. With duplicates, all
// of l.
func union(h, l []*ir.Command, duplicates bool) []*ir.Command {
	out := make([]*ir.Command, 0, len(h)+len(l))
	out = append(out, h...)
	if duplicates {
		return append(out, l...)
	}
	inH := keySet(h)
	for _, c := range l {
		if !inH[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

// intersect: the commands of h whose key l also has. With duplicates, each
// shared key contributes h's descriptor followed by every descriptor l has
// under that key.
func intersect(h, l []*ir.Command, duplicates bool) []*ir.Command {
	inL := keySet(l)
	out := make([]*ir.Command, 0, min(len(h), len(l)))
	emitted := make(map[string]bool)
	for _, c := range h {
		if !inL[c.Key] {
			continue
		}
		out = append(out, c)
		if !duplicates || emitted[c.Key] {
			continue
		}
		emitted[c.Key] = true
		for _, lc := range l {
			if lc.Key == c.Key {
				out = append(out, lc)
			}
		}
	}
	return out
}

// replace: exactly h.
func replace(h []*ir.Command) []*ir.Command {
	out := make([]*ir.Command, len(h))
	copy(out, h)
	return out
}

// remove: l without any key h has.
func remove(h, l []*ir.Command) []*ir.Command {
	inH := keySet(h)
	out := make([]*ir.Command, 0, len(l))
	for _, c := range l {
		if !inH[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

func keySet(cmds []*ir.Command) map[string]bool {
	set := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		set[c.Key] = true
	}
	return set
}
