package cmdset

import (
	"strings"

	"github.com/roach88/cmdres/internal/ir"
)

// Addable is what Add, Remove, Get and Contains accept. There are exactly
// two variants: a ready descriptor (*ir.Command) or a Factory producing one.
type Addable interface {
	Command() *ir.Command
}

// Factory is a zero-argument producer of a descriptor.
type Factory func() *ir.Command

// Command calls f.
func (f Factory) Command() *ir.Command {
	if f == nil {
		return nil
	}
	return f()
}

// instantiate resolves an Addable to its descriptor. Nil descriptors, nil
// factories and empty keys resolve to nil.
func instantiate(item Addable) *ir.Command {
	var cmd *ir.Command
	switch v := item.(type) {
	case *ir.Command:
		cmd = v
	case Factory:
		cmd = v.Command()
	}
	cmd = cmd.Normalized()
	if cmd == nil || cmd.Key == "" {
		return nil
	}
	return cmd
}

// CmdSet is a named, prioritised collection of unique command descriptors.
type CmdSet struct {
	Key           string
	Priority      int
	MergeType     ir.MergeType
	KeyMergeTypes map[string]ir.MergeType
	Duplicates    bool
	NoObjs        bool
	NoExits       bool
	NoChannels    bool

	// Owner names the object the set belongs to. Commands added without an
	// owner inherit it.
	Owner string

	commands []*ir.Command
	actual   ir.MergeType
}

// Option configures a CmdSet at construction.
type Option func(*CmdSet)

// WithPriority sets the priority. Negative values are clamped to 0.
func WithPriority(p int) Option {
	return func(s *CmdSet) { s.Priority = max(p, 0) }
}

// WithMergeType sets the default merge type. Invalid values become Union.
func WithMergeType(mt ir.MergeType) Option {
	return func(s *CmdSet) {
		if !mt.Valid() {
			mt = ir.Union
		}
		s.MergeType = mt
	}
}

// WithKeyMergeType overrides the merge type used against the set keyed
// otherKey.
func WithKeyMergeType(otherKey string, mt ir.MergeType) Option {
	return func(s *CmdSet) {
		if !mt.Valid() {
			mt = ir.Union
		}
		s.KeyMergeTypes[otherKey] = mt
	}
}

// WithKeyMergeTypes copies every entry of overrides.
func WithKeyMergeTypes(overrides map[string]ir.MergeType) Option {
	return func(s *CmdSet) {
		for k, mt := range overrides {
			WithKeyMergeType(k, mt)(s)
		}
	}
}

// WithDuplicates allows same-key commands to coexist on equal-priority merges.
func WithDuplicates(allow bool) Option {
	return func(s *CmdSet) { s.Duplicates = allow }
}

// WithNoObjs excludes nearby objects' sets from the merge pass.
func WithNoObjs(v bool) Option {
	return func(s *CmdSet) { s.NoObjs = v }
}

// WithNoExits excludes exit sets from the merge pass.
func WithNoExits(v bool) Option {
	return func(s *CmdSet) { s.NoExits = v }
}

// WithNoChannels excludes channel sets from the merge pass.
func WithNoChannels(v bool) Option {
	return func(s *CmdSet) { s.NoChannels = v }
}

// WithOwner sets the owning object.
func WithOwner(owner string) Option {
	return func(s *CmdSet) { s.Owner = owner }
}

// New creates an empty set. The override map is always freshly allocated,
// so sets never share it.
func New(key string, opts ...Option) *CmdSet {
	s := &CmdSet{
		Key:           key,
		KeyMergeTypes: make(map[string]ir.MergeType),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.actual = s.MergeType
	return s
}

// ActualMergeType is the policy applied by the merge that produced this set.
// For sets not produced by a merge it equals MergeType. Diagnostic only.
func (s *CmdSet) ActualMergeType() ir.MergeType {
	return s.actual
}

// Add inserts a command. Factories are called first. If a command with the
// same key is already present it is replaced in place, so the last added
// wins. The key and aliases are stored normalised, and the stored descriptor
// is a copy carrying the set's owner when it had none.
func (s *CmdSet) Add(item Addable) {
	cmd := instantiate(item)
	if cmd == nil {
		return
	}
	if cmd.Owner == "" && s.Owner != "" {
		cmd = cmd.Clone()
		cmd.Owner = s.Owner
	}
	s.put(cmd)
}

// put stores cmd as is, replacing a command with the same key in place.
func (s *CmdSet) put(cmd *ir.Command) {
	if i := s.indexOf(cmd.Key); i >= 0 {
		s.commands[i] = cmd
		return
	}
	s.commands = append(s.commands, cmd)
}

// AddAll adds every command in order.
func (s *CmdSet) AddAll(cmds ...*ir.Command) {
	for _, c := range cmds {
		s.Add(c)
	}
}

// Remove deletes every command equal to item.
func (s *CmdSet) Remove(item Addable) {
	cmd := instantiate(item)
	if cmd == nil {
		return
	}
	s.RemoveKey(cmd.Key)
}

// RemoveKey deletes every command with the given key.
func (s *CmdSet) RemoveKey(key string) {
	key = ir.NormalizeKey(key)
	kept := s.commands[:0]
	for _, c := range s.commands {
		if c.Key != key {
			kept = append(kept, c)
		}
	}
	// clear the tail so dropped descriptors can be collected
	for i := len(kept); i < len(s.commands); i++ {
		s.commands[i] = nil
	}
	s.commands = kept
}

// Get returns the stored command equal to item, or nil.
func (s *CmdSet) Get(item Addable) *ir.Command {
	cmd := instantiate(item)
	if cmd == nil {
		return nil
	}
	return s.GetKey(cmd.Key)
}

// GetKey returns the stored command with the given key, or nil.
func (s *CmdSet) GetKey(key string) *ir.Command {
	if i := s.indexOf(ir.NormalizeKey(key)); i >= 0 {
		return s.commands[i]
	}
	return nil
}

// Contains reports whether a command equal to item is present.
func (s *CmdSet) Contains(item Addable) bool {
	return s.Get(item) != nil
}

// ContainsKey reports whether a command with the given key is present.
func (s *CmdSet) ContainsKey(key string) bool {
	return s.GetKey(key) != nil
}

// Find returns every command whose key or alias equals name, in set order.
// More than one result means the merge kept duplicates.
func (s *CmdSet) Find(name string) []*ir.Command {
	name = ir.NormalizeKey(name)
	var found []*ir.Command
	for _, c := range s.commands {
		if c.HasName(name) {
			found = append(found, c)
		}
	}
	return found
}

// SystemCommands returns the system commands, in set order.
func (s *CmdSet) SystemCommands() []*ir.Command {
	var sys []*ir.Command
	for _, c := range s.commands {
		if c.IsSystem() {
			sys = append(sys, c)
		}
	}
	return sys
}

// Commands returns the commands in order. The slice is a copy; the
// descriptors are shared and must be treated as read-only.
func (s *CmdSet) Commands() []*ir.Command {
	out := make([]*ir.Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// Keys returns the command keys in order.
func (s *CmdSet) Keys() []string {
	keys := make([]string, len(s.commands))
	for i, c := range s.commands {
		keys[i] = c.Key
	}
	return keys
}

// Len returns the number of commands, duplicates included.
func (s *CmdSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.commands)
}

// String lists the command keys.
func (s *CmdSet) String() string {
	return strings.Join(s.Keys(), ", ")
}

// Copy returns a set with the same settings and no commands. The override
// map is deep-copied.
func (s *CmdSet) Copy() *CmdSet {
	c := New(s.Key,
		WithPriority(s.Priority),
		WithMergeType(s.MergeType),
		WithKeyMergeTypes(s.KeyMergeTypes),
		WithDuplicates(s.Duplicates),
		WithNoObjs(s.NoObjs),
		WithNoExits(s.NoExits),
		WithNoChannels(s.NoChannels),
		WithOwner(s.Owner),
	)
	return c
}

// Fingerprint hashes the key, priority, applied merge type and command keys.
func (s *CmdSet) Fingerprint() string {
	fp, err := ir.SetFingerprint(s.Key, s.Priority, s.actual, s.Keys())
	if err != nil {
		// Keys are plain strings; marshalling cannot fail.
		panic(err)
	}
	return fp
}

func (s *CmdSet) indexOf(key string) int {
	for i, c := range s.commands {
		if c.Key == key {
			return i
		}
	}
	return -1
}
