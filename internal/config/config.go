// Package config loads the resolver's runtime settings from YAML.
//
// Invalid values never fail a load: Normalize replaces them with defaults
// and reports what it changed, so a bad file cannot keep a session from
// accepting input.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cmdres/internal/parser"
)

// Config holds the settings read from a cmdres.yaml file.
type Config struct {
	// MaxWords is the tokenizer's word budget.
	MaxWords int `yaml:"max_words"`

	// Parser names a registered parser.
	Parser string `yaml:"parser"`

	// Boundary overrides the boundary characters of the default tokenizer.
	Boundary string `yaml:"boundary"`

	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level"`

	// DB is the command-set store used when --db is not given.
	DB string `yaml:"db,omitempty"`
}

const DefaultLogLevel = "info"

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxWords: parser.DefaultMaxWords,
		Parser:   parser.NameDefault,
		Boundary: parser.DefaultBoundary,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown fields are rejected; everything else is left to Normalize.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Normalize replaces invalid values with defaults and returns one warning
// per replacement.
func (c *Config) Normalize() []string {
	var warnings []string
	def := Default()

	if c.MaxWords <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_words %d is not positive, using %d", c.MaxWords, def.MaxWords))
		c.MaxWords = def.MaxWords
	}

	c.Parser = strings.ToLower(strings.TrimSpace(c.Parser))
	if c.Parser == "" {
		c.Parser = def.Parser
	}
	if _, err := parser.Lookup(c.Parser); err != nil {
		warnings = append(warnings, fmt.Sprintf("parser %q is not registered, using %q", c.Parser, def.Parser))
		c.Parser = def.Parser
	}

	if c.Boundary == "" {
		c.Boundary = def.Boundary
	}

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		warnings = append(warnings, fmt.Sprintf("log_level %q is unknown, using %q", c.LogLevel, def.LogLevel))
		c.LogLevel = def.LogLevel
	}

	return warnings
}

// Level returns the configured log level, or info if it does not parse.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewParser returns the configured parser. The default parser honours a
// custom boundary; other registered parsers are returned as registered.
func (c *Config) NewParser() (parser.Parser, error) {
	name := strings.ToLower(strings.TrimSpace(c.Parser))
	if (name == "" || name == parser.NameDefault) && c.Boundary != "" && c.Boundary != parser.DefaultBoundary {
		return parser.Tokenizer{Boundary: c.Boundary}, nil
	}
	return parser.Lookup(name)
}
