// Package harness runs resolution scenarios written in YAML.
//
// A scenario declares command-set definitions (inline or from CUE files),
// the sources that contribute them to a resolution (which definition, which
// owner, which kind of source) and a list of input lines with the expected
// outcome of each:
//
//	name: exit_replaces_character
//	description: an exit set with Replace hides the character's commands
//	cmdsets:
//	  - key: Character
//	    commands: [{key: look}, {key: get}]
//	  - key: Exit
//	    priority: 9
//	    merge_type: Replace
//	    commands: [{key: north, aliases: [n]}]
//	sources:
//	  - {set: Character, owner: alice, kind: actor}
//	  - {set: Exit, owner: north door, kind: exit}
//	steps:
//	  - input: n
//	    expect: {outcome: matched, match: north}
//	  - input: look
//	    expect: {outcome: no_match}
//	assertions:
//	  - {type: merged_keys, keys: [north]}
//
// Each run is isolated: definitions are saved per owner into a fresh
// in-memory store and loaded back before resolving, request ids are fixed,
// and the outcome serialises to canonical JSON for golden comparison.
package harness
