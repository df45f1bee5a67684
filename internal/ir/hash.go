package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCmdSet = "cmdres/cmdset/v1"
	DomainSpec   = "cmdres/spec/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SetFingerprint identifies a command set's observable merge outcome: its
// key, priority, applied merge type and command keys in order. Two merges of
// unchanged inputs must produce the same fingerprint.
func SetFingerprint(key string, priority int, applied MergeType, commandKeys []string) (string, error) {
	obj := map[string]any{
		"key":        key,
		"priority":   priority,
		"merge_type": applied.String(),
		"commands":   commandKeys,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SetFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCmdSet, canonical), nil
}

// SpecHash computes the content hash of a definition. The store keeps it
// next to each saved spec so callers can tell whether a rebuild changed
// anything.
func SpecHash(spec CmdSetSpec) (string, error) {
	canonical, err := MarshalCanonical(spec.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// MarshalSpec returns the canonical JSON of a definition. Field names match
// the json tags of CmdSetSpec, so encoding/json decodes it back.
func MarshalSpec(spec CmdSetSpec) ([]byte, error) {
	return MarshalCanonical(spec.canonicalMap())
}

// MustSpecHash is like SpecHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSpecHash(spec CmdSetSpec) string {
	h, err := SpecHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}

func (s CmdSetSpec) canonicalMap() map[string]any {
	overrides := make(map[string]any, len(s.KeyMergeTypes))
	for k, mt := range s.KeyMergeTypes {
		overrides[k] = mt.String()
	}
	cmds := make([]any, len(s.Commands))
	for i, cmd := range s.Commands {
		aliases := cmd.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		cmds[i] = map[string]any{
			"key":     cmd.Key,
			"aliases": aliases,
			"owner":   cmd.Owner,
			"help":    cmd.Help,
		}
	}
	return map[string]any{
		"key":             s.Key,
		"priority":        s.Priority,
		"merge_type":      s.MergeType.String(),
		"key_merge_types": overrides,
		"duplicates":      s.Duplicates,
		"no_objs":         s.NoObjs,
		"no_exits":        s.NoExits,
		"no_channels":     s.NoChannels,
		"commands":        cmds,
	}
}
