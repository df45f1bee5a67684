// Package resolver turns a raw input line into a command lookup.
//
// A resolution runs in four steps:
//
//  1. Parse: the configured parser splits the input into candidates, most
//     specific (longest command name) last in parse order.
//  2. Gather: the sources contributing command sets (actor, location,
//     nearby objects, exits, channels, global) are collected and the
//     exclusion flags of the actor, location and global sets are applied.
//  3. Fold: included sets are merged from the lowest priority up, each
//     higher set applying its merge type to everything below it.
//  4. Match: candidates are tried from most to least specific; the first
//     candidate naming at least one command in the merged set wins.
//
// The resolver never picks between several matching commands. When the
// winning candidate names more than one command (duplicates kept by a merge
// on equal priority) the resolution is marked Ambiguous and the caller
// decides.
//
// Failure is never destructive. Empty input, no match and ambiguity are
// returned as *ResolveError alongside a complete Resolution, and the merged
// set's system commands (__noinput_command, __nomatch_command,
// __multimatch_command) are offered as the fallback for each case.
package resolver
