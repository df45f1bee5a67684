package resolver

import (
	"slices"
	"strings"

	"github.com/roach88/cmdres/internal/cmdset"
	"github.com/roach88/cmdres/internal/ir"
)

// Hit is the winning candidate and every command it names.
type Hit struct {
	Candidate ir.Candidate  `json:"candidate"`
	Commands  []*ir.Command `json:"commands"`
}

// Keys returns the keys of the matched commands.
func (h *Hit) Keys() []string {
	keys := make([]string, len(h.Commands))
	for i, c := range h.Commands {
		keys[i] = c.Key
	}
	return keys
}

// Resolution is the outcome of resolving one input line.
type Resolution struct {
	RequestID  string         `json:"request_id"`
	Input      string         `json:"input"`
	Candidates []ir.Candidate `json:"candidates"`
	Best       *Hit           `json:"best,omitempty"`
	Ambiguous  bool           `json:"ambiguous"`

	// Fallback is the merged set's system command for the outcome, when
	// the set provides one.
	Fallback *ir.Command `json:"fallback,omitempty"`

	// Merged is the set the candidates were matched against.
	Merged *cmdset.CmdSet `json:"-"`
}

// Matched reports whether exactly one command was found.
func (r *Resolution) Matched() bool {
	return r.Best != nil && !r.Ambiguous
}

// Match looks the candidates up in set. Candidates are tried in decreasing
// specificity, qualified candidates first among equals, otherwise in parse
// order. A qualified candidate only matches commands whose owner equals the
// qualifier, ignoring case. The first candidate with any match wins.
func Match(cands []ir.Candidate, set *cmdset.CmdSet) *Resolution {
	res := &Resolution{
		Candidates: cands,
		Merged:     set,
	}
	if set.Len() == 0 {
		return res
	}

	ordered := make([]ir.Candidate, len(cands))
	copy(ordered, cands)
	slices.SortStableFunc(ordered, func(a, b ir.Candidate) int {
		if a.Specificity != b.Specificity {
			return b.Specificity - a.Specificity
		}
		switch {
		case a.HasQualifier() && !b.HasQualifier():
			return -1
		case !a.HasQualifier() && b.HasQualifier():
			return 1
		}
		return 0
	})

	for _, cand := range ordered {
		found := lookup(set, cand)
		if len(found) == 0 {
			continue
		}
		res.Best = &Hit{Candidate: cand, Commands: found}
		res.Ambiguous = len(found) > 1
		return res
	}
	return res
}

func lookup(set *cmdset.CmdSet, cand ir.Candidate) []*ir.Command {
	found := set.Find(cand.Name)
	if !cand.HasQualifier() {
		return found
	}
	kept := found[:0]
	for _, c := range found {
		if strings.EqualFold(c.Owner, cand.ObjectQualifier) {
			kept = append(kept, c)
		}
	}
	return kept
}
