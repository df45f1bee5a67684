// Package store provides SQLite-backed storage for long-lived command-set
// definitions, keyed by the object that owns them.
//
// Each row holds one definition (ir.CmdSetSpec) for one owner:
//   - owner + key is the identity; saving again replaces the definition
//   - seq is a logical insertion counter; a replaced definition keeps its seq
//   - spec is the canonical JSON of the definition, spec_hash its content hash
//
// Merged sets are never stored. They are rebuilt from the stored definitions
// on every resolution.
//
// # Deterministic Query Results
//
// All listing queries order by seq ASC, key ASC COLLATE BINARY so repeated
// loads yield the same sequence of sets.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
