package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/cmdres/internal/cmdset"
	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/parser"
	"github.com/roach88/cmdres/internal/resolver"
	"github.com/roach88/cmdres/internal/store"
)

// SetRef is a parsed --set value: KEY[:KIND[:OWNER]].
type SetRef struct {
	Key   string
	Kind  resolver.SourceKind
	Owner string
}

// ParseSetRef parses KEY[:KIND[:OWNER]]. Kind defaults to global and owner
// to the key. The owner may itself contain colons.
func ParseSetRef(s string) (SetRef, error) {
	parts := strings.SplitN(s, ":", 3)
	ref := SetRef{Key: strings.TrimSpace(parts[0]), Kind: resolver.KindGlobal}
	if ref.Key == "" {
		return SetRef{}, fmt.Errorf("set %q: empty key", s)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		kind, err := resolver.ParseSourceKind(parts[1])
		if err != nil {
			return SetRef{}, fmt.Errorf("set %q: %w", s, err)
		}
		ref.Kind = kind
	}
	if len(parts) > 2 {
		ref.Owner = strings.TrimSpace(parts[2])
	}
	if ref.Owner == "" {
		ref.Owner = ref.Key
	}
	return ref, nil
}

// sourcesFromRefs instantiates each referenced definition for its owner.
func sourcesFromRefs(loadResult *LoadResult, refs []SetRef) ([]resolver.Source, error) {
	sources := make([]resolver.Source, 0, len(refs))
	for _, ref := range refs {
		spec, ok := loadResult.Find(ref.Key)
		if !ok {
			return nil, fmt.Errorf("no command set definition %q", ref.Key)
		}
		sources = append(sources, newSource(spec, ref.Kind, ref.Owner))
	}
	return sources, nil
}

// storedSources instantiates every definition stored for owner.
func storedSources(ctx context.Context, st *store.Store, owner string, kind resolver.SourceKind) ([]resolver.Source, error) {
	specs, err := st.LoadCmdSets(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no command sets stored for %q", owner)
	}
	sources := make([]resolver.Source, 0, len(specs))
	for _, spec := range specs {
		sources = append(sources, newSource(spec, kind, owner))
	}
	return sources, nil
}

func newSource(spec ir.CmdSetSpec, kind resolver.SourceKind, owner string) resolver.Source {
	return resolver.Source{
		Set:     cmdset.FromSpec(spec).New(owner),
		Kind:    kind,
		Include: true,
	}
}

// parserFor returns the parser and word budget, flags over config.
func parserFor(opts *RootOptions, name string, maxWords int) (parser.Parser, int, error) {
	cfg := opts.settings()
	if maxWords <= 0 {
		maxWords = cfg.MaxWords
	}
	if name != "" {
		p, err := parser.Lookup(name)
		return p, maxWords, err
	}
	p, err := cfg.NewParser()
	return p, maxWords, err
}

// openStore opens the store at path, falling back to the configured one.
func openStore(ctx context.Context, opts *RootOptions, path string) (*store.Store, error) {
	if path == "" {
		path = opts.settings().DB
	}
	if path == "" {
		return nil, fmt.Errorf("no database: pass --db or set db in the config file")
	}
	return store.OpenContext(ctx, path)
}

// commandView is a command as printed by merge and resolve.
type commandView struct {
	Key     string   `json:"key"`
	Aliases []string `json:"aliases,omitempty"`
	Owner   string   `json:"owner,omitempty"`
	System  bool     `json:"system,omitempty"`
}

func viewCommands(cmds []*ir.Command) []commandView {
	out := make([]commandView, len(cmds))
	for i, c := range cmds {
		out[i] = commandView{Key: c.Key, Aliases: c.Aliases, Owner: c.Owner, System: c.IsSystem()}
	}
	return out
}
