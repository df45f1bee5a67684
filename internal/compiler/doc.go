// Package compiler turns CUE command-set definitions into ir.CmdSetSpec.
//
// Definitions live under the top-level "cmdset" struct, one field per set:
//
//	cmdset: Exit: {
//		priority:   9
//		merge_type: "Replace"
//		key_merge_types: { Character: "Union" }
//		commands: [{ key: "north", aliases: ["n"] }]
//	}
//
// Values a running session must tolerate (negative priority, unknown merge
// type) are normalised and reported as warnings. Only structural problems
// (a command without a key, a field of the wrong kind) are errors.
package compiler
