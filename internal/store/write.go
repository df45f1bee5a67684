package store

import (
	"context"
	"fmt"

	"github.com/roach88/cmdres/internal/ir"
)

// SaveCmdSet stores spec for owner, replacing any definition with the same
// key. A new definition takes the next seq; a replaced one keeps its seq so
// load order stays stable across edits.
func (s *Store) SaveCmdSet(ctx context.Context, owner string, spec ir.CmdSetSpec) error {
	if owner == "" {
		return fmt.Errorf("save cmdset %q: empty owner", spec.Key)
	}
	if spec.Key == "" {
		return fmt.Errorf("save cmdset for %q: empty key", owner)
	}

	specJSON, err := marshalSpec(spec)
	if err != nil {
		return fmt.Errorf("save cmdset %q: %w", spec.Key, err)
	}
	hash, err := ir.SpecHash(spec)
	if err != nil {
		return fmt.Errorf("save cmdset %q: %w", spec.Key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cmdsets (owner, key, seq, priority, spec, spec_hash, ir_version)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cmdsets), ?, ?, ?, ?)
		ON CONFLICT(owner, key) DO UPDATE SET
			priority   = excluded.priority,
			spec       = excluded.spec,
			spec_hash  = excluded.spec_hash,
			ir_version = excluded.ir_version
	`,
		owner,
		spec.Key,
		spec.Priority,
		specJSON,
		hash,
		ir.SpecVersion,
	)
	if err != nil {
		return fmt.Errorf("save cmdset %q: %w", spec.Key, err)
	}
	return nil
}

// DeleteCmdSet removes owner's definition keyed key.
// Returns ErrNotFound if there was none.
func (s *Store) DeleteCmdSet(ctx context.Context, owner, key string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cmdsets WHERE owner = ? AND key = ?
	`, owner, key)
	if err != nil {
		return fmt.Errorf("delete cmdset %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cmdset %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("delete cmdset %q for %q: %w", key, owner, ErrNotFound)
	}
	return nil
}

// DeleteOwner removes every definition of owner and returns how many there
// were.
func (s *Store) DeleteOwner(ctx context.Context, owner string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cmdsets WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete owner %q: %w", owner, err)
	}
	return res.RowsAffected()
}
