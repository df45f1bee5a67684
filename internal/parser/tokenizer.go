package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/cmdres/internal/ir"
)

// DefaultBoundary lists the characters that end a command name.
const DefaultBoundary = "/\\'\":;-#=!"

// DefaultMaxWords is the word budget used when none (or a non-positive one)
// is configured.
const DefaultMaxWords = 3

// Tokenizer is the default Parser.
//
// The zero value uses DefaultBoundary. Tokenizer holds no state and is safe
// for concurrent use.
type Tokenizer struct {
	// Boundary overrides the boundary character set when non-empty.
	Boundary string
}

// Parse splits raw into candidates, at most maxWords words long.
// An input that is empty after trimming yields no candidates.
func (t Tokenizer) Parse(raw string, maxWords int) []ir.Candidate {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	raw = foldSpace(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}

	boundary := t.boundary()
	end := strings.IndexAny(raw, boundary)

	// A leading boundary character is the command name itself.
	if end == 0 {
		_, size := utf8.DecodeRuneInString(raw)
		return []ir.Candidate{{Name: raw[:size], Args: raw[size:]}}
	}

	var candidates []ir.Candidate

	if end > 0 {
		if raw[end] == '\'' && strings.HasPrefix(raw[end+1:], "s ") {
			// "<object>'s <rest>": <rest> is strictly shorter than raw, so
			// the recursion terminates.
			qualifier := strings.TrimSpace(raw[:end])
			for _, c := range t.Parse(raw[end+2:], maxWords) {
				c.ObjectQualifier = qualifier
				candidates = append(candidates, c)
			}
		}

		head := raw[:end]
		if n := len(strings.Fields(head)); n <= maxWords {
			tokens := append(strings.Split(head, " "), strings.Split(raw[end:], " ")...)
			return append(candidates, t.produce(n, tokens)...)
		}
	}

	n := min(maxWords, len(strings.Fields(raw)))
	return append(candidates, t.produce(n, strings.Split(raw, " "))...)
}

// produce builds n candidates, the i-th taking the first i+1 words of tokens
// as its name. Empty tokens (runs of spaces) never form a name word but are
// kept in the argument text so its spacing survives.
func (t Tokenizer) produce(n int, tokens []string) []ir.Candidate {
	candidates := make([]ir.Candidate, 0, n)
	words := make([]string, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		for pos < len(tokens) && tokens[pos] == "" {
			pos++
		}
		if pos >= len(tokens) {
			break
		}
		words = append(words, ir.NormalizeKey(tokens[pos]))
		pos++

		candidates = append(candidates, ir.Candidate{
			Name:        strings.Join(words, " "),
			Args:        t.joinArgs(tokens[pos:]),
			Specificity: i,
		})
	}
	return candidates
}

// joinArgs rebuilds argument text. A token starting with a boundary
// character is glued to its predecessor so "/drop ball" keeps its switch.
func (t Tokenizer) joinArgs(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		if b.Len() == 0 || t.startsWithBoundary(tok) {
			b.WriteString(tok)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(tok)
	}
	return b.String()
}

func (t Tokenizer) startsWithBoundary(tok string) bool {
	if tok == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return strings.ContainsRune(t.boundary(), r)
}

func (t Tokenizer) boundary() string {
	if t.Boundary == "" {
		return DefaultBoundary
	}
	return t.Boundary
}

// foldSpace maps every whitespace rune other than ' ' to ' ', so splitting
// on spaces and counting fields agree.
func foldSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r != ' ' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
