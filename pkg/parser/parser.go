// Package parser implements a single-pass recursive descent parser for Quark.
// Names are resolved and storage is laid out while the tree is built.
package parser

import (
	"errors"
	"fmt"

	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/lexer"
	"github.com/quark-lang/quark/pkg/types"
	log "github.com/sirupsen/logrus"
)

// ErrParse is returned by Parse when at least one error was reported
var ErrParse = errors.New("parse failed")

// Program is the result of parsing a compilation unit
type Program struct {
	Tree       *ast.Tree
	Types      *types.Table
	Procedures ast.NodeID // procedures in declaration order
	Strings    ast.NodeID // string literals in ID order
}

// countingReporter forwards diagnostics and counts errors
type countingReporter struct {
	diag.Reporter
	errors int
}

func (r *countingReporter) Errorf(pos diag.Position, format string, args ...any) *diag.Diagnostic {
	r.errors++
	return r.Reporter.Errorf(pos, format, args...)
}

// Parser parses Quark source code into a tree
type Parser struct {
	lex *lexer.Lexer
	tok lexer.Token

	tree       *ast.Tree
	types      *types.Table
	procedures ast.NodeID
	strings    ast.NodeID
	nextString int
	global     *ast.Scope

	reporter *countingReporter
}

// New creates a Parser for src
func New(src []byte, opts ...Option) *Parser {
	cfg := newConfig(opts)
	log.Debug("parser: creating parser")

	rep := &countingReporter{Reporter: cfg.reporter}
	tree := ast.NewTree()

	p := &Parser{
		lex:      lexer.New(src, cfg.keywords, rep),
		tree:     tree,
		types:    types.New(tree, cfg.wordSize, cfg.builtins),
		reporter: rep,
	}
	p.procedures = tree.New(&ast.Root{}, diag.Position{})
	p.strings = tree.New(&ast.Root{}, diag.Position{})
	p.global = ast.NewScope(p.procedures, nil)

	p.next()
	return p
}

// Parse parses declarations until the end of input. A declaration that fails
// is rolled back and parsing resumes at the next "pub", "proc" or "type".
// The program is returned even when errors were reported.
func (p *Parser) Parse() (*Program, error) {
	log.Debug("parser: parsing")

	for !p.tok.Is(lexer.TokenEOF) {
		start := p.tok.Pos.Offset
		mark := p.nextString
		if err := p.parseDeclaration(); err != nil {
			p.discardStrings(mark)
			p.synchronize(start)
		}
	}

	prog := &Program{
		Tree:       p.tree,
		Types:      p.types,
		Procedures: p.procedures,
		Strings:    p.strings,
	}
	if p.reporter.errors > 0 {
		return prog, fmt.Errorf("%w: %d error(s)", ErrParse, p.reporter.errors)
	}
	return prog, nil
}

// ErrorCount returns the number of errors reported so far
func (p *Parser) ErrorCount() int {
	return p.reporter.errors
}

func (p *Parser) parseDeclaration() error {
	public := false
	if p.tok.Is(lexer.TokenPub) {
		public = true
		p.next()
	}

	switch p.tok.Type {
	case lexer.TokenProc:
		_, err := p.parseProcedure(public)
		return err
	case lexer.TokenType_:
		_, err := p.parseTypeDeclaration(public)
		return err
	default:
		return p.errorf("expected \"proc\" or \"type\", got %s", p.describe(p.tok))
	}
}

// synchronize skips to the start of the next declaration, always moving past
// the token at offset start.
func (p *Parser) synchronize(start int) {
	if p.tok.Pos.Offset == start && !p.tok.Is(lexer.TokenEOF) {
		p.next()
	}
	for {
		switch p.tok.Type {
		case lexer.TokenPub, lexer.TokenProc, lexer.TokenType_, lexer.TokenEOF:
			return
		}
		p.next()
	}
}

// discardStrings removes the literals numbered mark and above, which belong
// to a declaration that was rolled back, and reuses their IDs.
func (p *Parser) discardStrings(mark int) {
	for last := p.tree.Node(p.strings).Tail; last != ast.None; last = p.tree.Node(p.strings).Tail {
		s, ok := ast.As[*ast.String](p.tree, last)
		if !ok || s.ID < mark {
			break
		}
		p.tree.Delete(last)
	}
	p.nextString = mark
}

// next advances to the next token. Unknown bytes were already reported by
// the lexer and are skipped.
func (p *Parser) next() {
	p.tok = p.lex.NextToken()
	for p.tok.Is(lexer.TokenUnknown) {
		p.tok = p.lex.NextToken()
	}
}

func (p *Parser) name() ast.Name {
	return ast.Name{Text: p.lex.Text(p.tok), Hash: p.tok.Hash}
}

// describe renders a token for use in a diagnostic
func (p *Parser) describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenIdent, lexer.TokenNumber, lexer.TokenString, lexer.TokenCharacter, lexer.TokenUnknown:
		return fmt.Sprintf("\"%s\"", p.lex.Text(tok))
	}
	if tok.IsAssignment() {
		return fmt.Sprintf("\"%s=\"", tok.Type)
	}
	return tok.Type.Quoted()
}

// errorf reports an error at the current token and returns it
func (p *Parser) errorf(format string, args ...any) error {
	return p.reporter.Errorf(p.tok.Pos, format, args...)
}

func (p *Parser) errorAt(pos diag.Position, format string, args ...any) error {
	return p.reporter.Errorf(pos, format, args...)
}

func (p *Parser) warnf(format string, args ...any) {
	p.reporter.Warningf(p.tok.Pos, format, args...)
}

// expect consumes a token of type t or reports what was found instead
func (p *Parser) expect(t lexer.TokenType, context string) error {
	if !p.tok.Is(t) || p.tok.IsAssignment() {
		return p.errorf("expected %s %s, got %s", t.Quoted(), context, p.describe(p.tok))
	}
	p.next()
	return nil
}

// checkUnique reports an error when name is already a type or is visible
// from scope. Shadowing is not allowed, and that includes the name of the
// procedure being declared, which is only linked once its parameters are done.
func (p *Parser) checkUnique(name ast.Name, scope *ast.Scope) error {
	if p.types.Find(name) != ast.None {
		return p.errorf("\"%s\" is already declared as a type", name)
	}
	if scope.Lookup(p.tree, name) != ast.None {
		return p.errorf("redeclaration of \"%s\"", name)
	}
	for s := scope; s != nil; s = s.Outer {
		if n := p.tree.Node(s.Node); n.Kind == ast.KindProcedure && n.Name.Matches(name) {
			return p.errorf("redeclaration of \"%s\"", name)
		}
	}
	return nil
}

// parseTypeRef parses a type name followed by any number of "*"
func (p *Parser) parseTypeRef() (ast.NodeID, int, error) {
	if !p.tok.Is(lexer.TokenIdent) {
		return ast.None, 0, p.errorf("expected type name, got %s", p.describe(p.tok))
	}

	name := p.name()
	typ := p.types.Find(name)
	if typ == ast.None {
		if p.global.Lookup(p.tree, name) != ast.None {
			return ast.None, 0, p.errorf("\"%s\" is not a type", name)
		}
		return ast.None, 0, p.errorf("undeclared type \"%s\"", name)
	}
	p.next()

	depth := 0
	for p.tok.Is(lexer.TokenStar) && !p.tok.IsAssignment() {
		depth++
		p.next()
	}
	return typ, depth, nil
}
