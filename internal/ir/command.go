package ir

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// System command keys the resolver falls back to. A set provides the
// behaviour for each case by containing a command with that key.
const (
	SystemNoInput    = "__noinput_command"
	SystemNoMatch    = "__nomatch_command"
	SystemMultiMatch = "__multimatch_command"
)

// Command is a command descriptor as seen by the resolver.
//
// The resolver never interprets behaviour; it only cares about identity
// (Key), lookup names (Key and Aliases) and the object the command belongs
// to (Owner), which the object qualifier in "<object>'s <command>" input
// restricts on.
type Command struct {
	Key     string   `json:"key"`
	Aliases []string `json:"aliases,omitempty"`
	Owner   string   `json:"owner,omitempty"`
	Help    string   `json:"help,omitempty"`
}

// NewCommand creates a descriptor with a normalised key and aliases.
// Empty aliases and aliases equal to the key are dropped.
func NewCommand(key string, aliases ...string) *Command {
	cmd := &Command{Key: NormalizeKey(key)}
	for _, alias := range aliases {
		alias = NormalizeKey(alias)
		if alias == "" || alias == cmd.Key {
			continue
		}
		cmd.Aliases = append(cmd.Aliases, alias)
	}
	return cmd
}

// NormalizeKey trims, lowercases and NFC-composes a command key or alias.
// Parsers fold input words with the same function, so a descriptor and
// the input naming it always compare equal.
func NormalizeKey(key string) string {
	// A Caser carries state; a fresh one per call is safe for concurrent use.
	return norm.NFC.String(cases.Lower(language.Und).String(strings.TrimSpace(key)))
}

// Normalized returns c when its key and aliases are already normalised,
// otherwise a normalised copy built the way NewCommand builds one. Owner
// and Help carry over unchanged.
func (c *Command) Normalized() *Command {
	if c == nil || c.isNormalized() {
		return c
	}
	out := NewCommand(c.Key, c.Aliases...)
	out.Owner = c.Owner
	out.Help = c.Help
	return out
}

func (c *Command) isNormalized() bool {
	if NormalizeKey(c.Key) != c.Key {
		return false
	}
	for _, alias := range c.Aliases {
		if alias == "" || alias == c.Key || NormalizeKey(alias) != alias {
			return false
		}
	}
	return true
}

// SameKey reports whether two descriptors are equal for set purposes.
// Equality is by key only.
func (c *Command) SameKey(other *Command) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Key == other.Key
}

// HasName reports whether name matches the key or one of the aliases.
func (c *Command) HasName(name string) bool {
	if c == nil {
		return false
	}
	if c.Key == name {
		return true
	}
	for _, alias := range c.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// IsSystem reports whether this is a system command: a key longer than two
// characters starting with "__". System commands survive every merge.
func (c *Command) IsSystem() bool {
	return c != nil && IsSystemKey(c.Key)
}

// IsSystemKey is the key-only form of IsSystem.
func IsSystemKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "__")
}

// Clone returns a copy that shares nothing with c.
func (c *Command) Clone() *Command {
	if c == nil {
		return nil
	}
	out := *c
	if c.Aliases != nil {
		out.Aliases = append([]string(nil), c.Aliases...)
	}
	return &out
}

// String returns the key, which is how sets print their contents.
func (c *Command) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Key
}

// Command returns c itself, so a ready descriptor can be passed wherever a
// descriptor producer is accepted.
func (c *Command) Command() *Command {
	return c
}
