package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cmdres/internal/cmdset"
)

// SourceKind says where a command set comes from.
type SourceKind string

const (
	KindActor    SourceKind = "actor"
	KindLocation SourceKind = "location"
	KindObject   SourceKind = "object"
	KindExit     SourceKind = "exit"
	KindChannel  SourceKind = "channel"
	KindGlobal   SourceKind = "global"
)

var kinds = []SourceKind{KindActor, KindLocation, KindObject, KindExit, KindChannel, KindGlobal}

// ParseSourceKind parses a kind name, case-insensitively.
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(kinds, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// Source is one command set contributing to a resolution.
type Source struct {
	Set     *cmdset.CmdSet
	Kind    SourceKind
	Include bool
}

// Gather applies the exclusion flags. If any included actor, location or
// global set has NoObjs, NoExits or NoChannels set, object, exit or channel
// sources respectively are excluded. The input slice is not modified.
func Gather(sources []Source) []Source {
	out := make([]Source, len(sources))
	copy(out, sources)

	var noObjs, noExits, noChannels bool
	for _, src := range out {
		if !src.Include || src.Set == nil {
			continue
		}
		switch src.Kind {
		case KindActor, KindLocation, KindGlobal:
			noObjs = noObjs || src.Set.NoObjs
			noExits = noExits || src.Set.NoExits
			noChannels = noChannels || src.Set.NoChannels
		}
	}

	for i := range out {
		switch {
		case out[i].Kind == KindObject && noObjs,
			out[i].Kind == KindExit && noExits,
			out[i].Kind == KindChannel && noChannels:
			out[i].Include = false
		}
	}
	return out
}

// EmptyKey is the key of the set Fold returns when nothing is included.
const EmptyKey = "Empty"

// Fold merges the included sets from the lowest priority up. Each set is
// the receiver of the merge with everything below it, so its policy applies
// to the combined lower sets. Among sets of equal priority the earlier
// source is merged later and wins the tie.
//
// The result may be one of the input sets when nothing else contributes;
// treat it as read-only.
func Fold(sources []Source) *cmdset.CmdSet {
	var sets []*cmdset.CmdSet
	for _, src := range sources {
		if src.Include && src.Set != nil {
			sets = append(sets, src.Set)
		}
	}
	if len(sets) == 0 {
		return cmdset.New(EmptyKey)
	}

	slices.Reverse(sets)
	slices.SortStableFunc(sets, func(a, b *cmdset.CmdSet) int {
		return a.Priority - b.Priority
	})

	merged := sets[0]
	for _, s := range sets[1:] {
		merged = s.Merge(merged)
	}
	return merged
}
