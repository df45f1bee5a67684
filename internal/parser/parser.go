package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/cmdres/internal/ir"
)

// Parser converts a raw input line into an ordered sequence of candidates.
//
// Implementations must be deterministic and side-effect free, and must
// return no candidates (or a single degenerate one) rather than fail on
// malformed input.
type Parser interface {
	Parse(raw string, maxWords int) []ir.Candidate
}

// Func adapts a plain function to Parser.
type Func func(raw string, maxWords int) []ir.Candidate

// Parse calls f.
func (f Func) Parse(raw string, maxWords int) []ir.Candidate {
	return f(raw, maxWords)
}

// Names of the built-in parsers.
const (
	NameDefault   = "default"
	NameFirstWord = "firstword"
)

// ErrUnknownParser is returned by Lookup for unregistered names.
var ErrUnknownParser = errors.New("unknown parser")

var (
	registryMu sync.RWMutex
	registry   = map[string]Parser{
		NameDefault:   Tokenizer{},
		NameFirstWord: Func(FirstWord),
	}
)

// Register installs p under name, replacing any parser already registered
// under it. Names are case-insensitive.
func Register(name string, p Parser) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("register parser: empty name")
	}
	if p == nil {
		return fmt.Errorf("register parser %q: nil parser", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = p
	return nil
}

// Lookup returns the parser registered under name. An empty name selects
// the default tokenizer.
func Lookup(name string) (Parser, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = NameDefault
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	return p, nil
}

// Names lists registered parser names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FirstWord is a minimal alternative parser: the first word is the command
// name and the trimmed remainder is the argument text. It ignores the word
// budget and never yields more than one candidate.
func FirstWord(raw string, _ int) []ir.Candidate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.SplitN(foldSpace(raw), " ", 2)
	c := ir.Candidate{Name: ir.NormalizeKey(parts[0])}
	if len(parts) > 1 {
		c.Args = strings.TrimSpace(parts[1])
	}
	return []ir.Candidate{c}
}
