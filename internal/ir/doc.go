// Package ir provides the shared types for command resolution.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the descriptor, candidate and command-set definition types usable by
// the parser, the merge algebra, the compiler and the store without cycles.
//
// Key design constraints:
//   - Command identity is the lowercased key; aliases only widen lookup
//   - Candidates are immutable values, created per input line
//   - CmdSetSpec is the serialisable form of a command set; merged sets are
//     never turned into specs for persistence
//   - All JSON tags use snake_case
package ir
