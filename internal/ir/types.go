package ir

import (
	"fmt"
	"strings"
)

// MergeType is the policy a command set applies when it is the
// higher-priority side of a merge.
type MergeType int

const (
	// Union keeps as many commands as possible; the higher set wins on overlap.
	Union MergeType = iota
	// Intersect keeps only commands present in both sets.
	Intersect
	// Replace keeps only the higher set's commands.
	Replace
	// Remove uses the higher set as a key filter over the lower set.
	Remove
)

var mergeTypeNames = [...]string{
	Union:     "Union",
	Intersect: "Intersect",
	Replace:   "Replace",
	Remove:    "Remove",
}

// String returns the canonical policy name.
func (m MergeType) String() string {
	if m < Union || m > Remove {
		return fmt.Sprintf("MergeType(%d)", int(m))
	}
	return mergeTypeNames[m]
}

// Valid reports whether m is one of the four policies.
func (m MergeType) Valid() bool {
	return m >= Union && m <= Remove
}

// ParseMergeType parses a policy name case-insensitively.
// Unknown or empty names yield Union and false; callers decide whether that
// deserves a warning.
func ParseMergeType(s string) (MergeType, bool) {
	for i, name := range mergeTypeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return MergeType(i), true
		}
	}
	return Union, false
}

// MarshalText implements encoding.TextMarshaler.
func (m MergeType) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid merge type %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names fall
// back to Union rather than failing.
func (m *MergeType) UnmarshalText(text []byte) error {
	*m, _ = ParseMergeType(string(text))
	return nil
}

// CmdSetSpec is the serialisable definition of one command set, as written
// in CUE definition files and persisted per owner in the store.
type CmdSetSpec struct {
	Key           string               `json:"key"`
	Priority      int                  `json:"priority"`
	MergeType     MergeType            `json:"merge_type"`
	KeyMergeTypes map[string]MergeType `json:"key_merge_types,omitempty"`
	Duplicates    bool                 `json:"duplicates"`
	NoObjs        bool                 `json:"no_objs"`
	NoExits       bool                 `json:"no_exits"`
	NoChannels    bool                 `json:"no_channels"`
	Commands      []Command            `json:"commands"`
}

// CommandKeys returns the command keys in definition order.
func (s CmdSetSpec) CommandKeys() []string {
	keys := make([]string, len(s.Commands))
	for i, cmd := range s.Commands {
		keys[i] = cmd.Key
	}
	return keys
}
