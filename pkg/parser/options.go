package parser

import (
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/lexer"
	"github.com/quark-lang/quark/pkg/types"
)

// DefaultWordSize is the pointer size of the x86-64 target
const DefaultWordSize = 8

type config struct {
	reporter diag.Reporter
	wordSize int
	builtins []types.Builtin
	keywords *lexer.Keywords
}

// Option configures a Parser
type Option func(*config)

// WithReporter sends diagnostics to r. Without it they are only counted.
func WithReporter(r diag.Reporter) Option {
	return func(c *config) { c.reporter = r }
}

// WithWordSize sets the size of pointers and of the "uint" builtin
func WithWordSize(n int) Option {
	return func(c *config) { c.wordSize = n }
}

// WithBuiltins replaces the default builtin types
func WithBuiltins(b []types.Builtin) Option {
	return func(c *config) { c.builtins = b }
}

// WithKeywords replaces the default keyword table
func WithKeywords(kw *lexer.Keywords) Option {
	return func(c *config) { c.keywords = kw }
}

func newConfig(opts []Option) config {
	c := config{wordSize: DefaultWordSize}
	for _, opt := range opts {
		opt(&c)
	}
	if c.reporter == nil {
		c.reporter = diag.NewHandler(nil, false)
	}
	if c.builtins == nil {
		c.builtins = types.DefaultBuiltins(c.wordSize)
	}
	if c.keywords == nil {
		c.keywords = lexer.NewKeywords()
	}
	return c
}
