package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/cmdres/internal/ir"
	"github.com/roach88/cmdres/internal/parser"
)

// Resolver runs parse, gather, fold and match for one input line at a time.
//
// Thread-safety: a Resolver holds no per-call state and is safe for
// concurrent use as long as its parser and generator are.
type Resolver struct {
	parser   parser.Parser
	maxWords int
	idGen    IDGenerator
	logger   *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithParser replaces the default tokenizer.
func WithParser(p parser.Parser) Option {
	return func(r *Resolver) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithMaxWords sets the word budget. Non-positive values keep the default.
func WithMaxWords(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxWords = n
		}
	}
}

// WithIDGenerator sets the request id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Resolver) {
		if g != nil {
			r.idGen = g
		}
	}
}

// WithLogger sets the logger. Resolutions are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver using the default tokenizer, a word budget of
// parser.DefaultMaxWords and UUIDv7 request ids.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		parser:   parser.Tokenizer{},
		maxWords: parser.DefaultMaxWords,
		idGen:    UUIDv7Generator{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves input against the command sets of sources.
//
// The Resolution is always returned. The error is nil when exactly one
// command matched and a *ResolveError otherwise.
func (r *Resolver) Resolve(input string, sources []Source) (*Resolution, error) {
	requestID := r.idGen.Generate()
	log := r.logger.With(zap.String("request_id", requestID))

	merged := Fold(Gather(sources))
	log.Debug("merged command sets",
		zap.String("key", merged.Key),
		zap.Stringer("merge_type", merged.ActualMergeType()),
		zap.Int("commands", merged.Len()),
	)

	if strings.TrimSpace(input) == "" {
		res := &Resolution{RequestID: requestID, Input: input, Merged: merged}
		res.Fallback = merged.GetKey(ir.SystemNoInput)
		log.Debug("empty input")
		return res, NewEmptyInputError(requestID)
	}

	cands := r.parser.Parse(input, r.maxWords)
	res := Match(cands, merged)
	res.RequestID = requestID
	res.Input = input

	switch {
	case res.Best == nil:
		res.Fallback = merged.GetKey(ir.SystemNoMatch)
		log.Debug("no match", zap.String("input", input), zap.Int("candidates", len(cands)))
		return res, NewNoMatchError(requestID, input)
	case res.Ambiguous:
		res.Fallback = merged.GetKey(ir.SystemMultiMatch)
		log.Debug("ambiguous match",
			zap.String("input", input),
			zap.String("name", res.Best.Candidate.Name),
			zap.Strings("owners", owners(res.Best)),
		)
		return res, NewAmbiguousError(requestID, input, res.Best.Keys())
	}

	log.Debug("matched",
		zap.String("input", input),
		zap.String("key", res.Best.Commands[0].Key),
		zap.String("args", res.Best.Candidate.Args),
	)
	return res, nil
}

func owners(h *Hit) []string {
	out := make([]string, len(h.Commands))
	for i, c := range h.Commands {
		out[i] = c.Owner
	}
	return out
}
