// Package cmdset implements command sets and the algebra that merges them.
//
// A CmdSet holds the commands one source (an actor, a room, an object, a
// global system) makes available. Sets are merged pairwise into a new set;
// the higher-priority operand's merge type decides how:
//
//	Union     A1,A3 + B1,B2,B4,B5 = A1,A3,B2,B4,B5
//	Intersect A1,A3 + B1,B2,B4,B5 = A1
//	Replace   A1,A3 + B1,B2,B4,B5 = A1,A3
//	Remove    A1,A3 + B1,B2,B4,B5 = B2,B4,B5
//
// (A has the higher priority; equal numbers mean equal keys.)
//
// On a priority tie the receiver of Merge counts as the higher side. If the
// lower side allows duplicates, Union and Intersect keep both descriptors
// of a shared key so the caller can report the ambiguity; Replace and Remove
// ignore the duplicates flag.
//
// Commands whose key starts with "__" and is longer than two characters are
// system commands. They are set aside before the policy runs and added back
// afterwards, so every merge result contains them.
//
// Merge never mutates its operands. A set may be read concurrently once
// built; building one (Add, Remove) needs external synchronisation.
package cmdset
