// Package parser turns one raw input line into ranked command-name
// hypotheses.
//
// The default Tokenizer understands
//
//	[<char>]cmdname[ cmdname2 cmdname3 ...][<char>] [the rest]
//
// where <char> is a boundary character. A command name may contain spaces
// but never a boundary character, except when the boundary character is the
// very first character of the input: it is then the command name itself
// (":" as a shortcut for emote, for instance).
//
// Because names may span several words, every split up to the word budget is
// a candidate. "hit orc with sword" with a budget of three yields "hit",
// "hit orc" and "hit orc with"; a longer name is more specific and wins when
// several of them name known commands.
//
// The optional form
//
//	<objname>'s [<char>]cmdname[ ...] [the rest]
//
// additionally yields candidates scoped to the named object. The plain
// reading is always produced as well, since the apostrophe may not have been
// a qualifier at all.
//
// Parsers are pluggable: Register installs an alternative under a name and
// configuration selects it with Lookup.
package parser
