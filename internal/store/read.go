package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cmdres/internal/ir"
)

// Record is a stored definition with its bookkeeping columns.
type Record struct {
	Owner     string
	Seq       int64
	SpecHash  string
	IRVersion string
	Spec      ir.CmdSetSpec
}

// LoadCmdSets returns owner's definitions ordered by seq ASC, key ASC.
// Returns an empty slice (not nil) when the owner has none.
func (s *Store) LoadCmdSets(ctx context.Context, owner string) ([]ir.CmdSetSpec, error) {
	records, err := s.LoadRecords(ctx, owner)
	if err != nil {
		return nil, err
	}
	specs := make([]ir.CmdSetSpec, len(records))
	for i, r := range records {
		specs[i] = r.Spec
	}
	return specs, nil
}

// LoadRecords is LoadCmdSets with the bookkeeping columns.
func (s *Store) LoadRecords(ctx context.Context, owner string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, seq, spec_hash, ir_version, spec
		FROM cmdsets
		WHERE owner = ?
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("query cmdsets: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cmdsets: %w", err)
	}
	return records, nil
}

// LoadCmdSet returns owner's definition keyed key, or ErrNotFound.
func (s *Store) LoadCmdSet(ctx context.Context, owner, key string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT owner, seq, spec_hash, ir_version, spec
		FROM cmdsets
		WHERE owner = ? AND key = ?
	`, owner, key)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("load cmdset %q for %q: %w", key, owner, ErrNotFound)
	}
	return r, err
}

// FindBySpecHash returns every stored record whose definition hashes to
// hash, ordered by seq.
func (s *Store) FindBySpecHash(ctx context.Context, hash string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, seq, spec_hash, ir_version, spec
		FROM cmdsets
		WHERE spec_hash = ?
		ORDER BY seq ASC, owner COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query cmdsets by hash: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cmdsets: %w", err)
	}
	return records, nil
}

// ListOwners returns every owner with at least one definition, sorted.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT owner FROM cmdsets ORDER BY owner COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r        Record
		specJSON string
	)
	if err := row.Scan(&r.Owner, &r.Seq, &r.SpecHash, &r.IRVersion, &specJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan cmdset: %w", err)
	}
	spec, err := unmarshalSpec(specJSON)
	if err != nil {
		return Record{}, err
	}
	r.Spec = spec
	return r, nil
}
