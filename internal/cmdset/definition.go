package cmdset

import "github.com/roach88/cmdres/internal/ir"

// Definition describes a class of command sets: a registered name that
// becomes the default key, construction options and a population hook.
// Each call to New builds a fresh, independent set.
type Definition struct {
	name     string
	key      string
	opts     []Option
	populate func(*CmdSet)
}

// DefineOption configures a Definition.
type DefineOption func(*Definition)

// WithKey overrides the key derived from the registered name.
func WithKey(key string) DefineOption {
	return func(d *Definition) { d.key = key }
}

// WithSetOptions appends options applied to every set the definition builds.
func WithSetOptions(opts ...Option) DefineOption {
	return func(d *Definition) { d.opts = append(d.opts, opts...) }
}

// Define registers a set class under name. populate runs on every freshly
// built set and normally calls Add; it may be nil.
func Define(name string, populate func(*CmdSet), opts ...DefineOption) *Definition {
	d := &Definition{name: name, key: name, populate: populate}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the registered name.
func (d *Definition) Name() string { return d.name }

// Key returns the key sets built from d carry.
func (d *Definition) Key() string { return d.key }

// New builds the set for owner and runs the population hook. Options are
// applied to a fresh set, so the override map is never shared between sets
// of the same definition.
func (d *Definition) New(owner string) *CmdSet {
	opts := make([]Option, 0, len(d.opts)+1)
	opts = append(opts, d.opts...)
	opts = append(opts, WithOwner(owner))

	s := New(d.key, opts...)
	if d.populate != nil {
		d.populate(s)
	}
	return s
}

// FromSpec defines a set class from a serialised definition.
func FromSpec(spec ir.CmdSetSpec) *Definition {
	commands := make([]ir.Command, len(spec.Commands))
	for i, c := range spec.Commands {
		commands[i] = *c.Clone()
	}
	overrides := make(map[string]ir.MergeType, len(spec.KeyMergeTypes))
	for k, mt := range spec.KeyMergeTypes {
		overrides[k] = mt
	}

	return Define(spec.Key, func(s *CmdSet) {
		for i := range commands {
			s.Add(commands[i].Clone())
		}
	}, WithSetOptions(
		WithPriority(spec.Priority),
		WithMergeType(spec.MergeType),
		WithKeyMergeTypes(overrides),
		WithDuplicates(spec.Duplicates),
		WithNoObjs(spec.NoObjs),
		WithNoExits(spec.NoExits),
		WithNoChannels(spec.NoChannels),
	))
}

// Spec serialises s. Commands are copied; merged sets can be serialised for
// display but are not meant to be persisted.
func (s *CmdSet) Spec() ir.CmdSetSpec {
	spec := ir.CmdSetSpec{
		Key:        s.Key,
		Priority:   s.Priority,
		MergeType:  s.MergeType,
		Duplicates: s.Duplicates,
		NoObjs:     s.NoObjs,
		NoExits:    s.NoExits,
		NoChannels: s.NoChannels,
		Commands:   make([]ir.Command, len(s.commands)),
	}
	if len(s.KeyMergeTypes) > 0 {
		spec.KeyMergeTypes = make(map[string]ir.MergeType, len(s.KeyMergeTypes))
		for k, mt := range s.KeyMergeTypes {
			spec.KeyMergeTypes[k] = mt
		}
	}
	for i, c := range s.commands {
		spec.Commands[i] = *c.Clone()
	}
	return spec
}
