package parser

import (
	"fmt"

	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/lexer"
	log "github.com/sirupsen/logrus"
)

// parseTypeDeclaration parses
//
//	type Name: Other*;
//	type Name: struct { member: Type*; ... };
func (p *Parser) parseTypeDeclaration(public bool) (ast.NodeID, error) {
	log.Debug("parser: parsing type declaration")
	p.next() // consume 'type'

	if !p.tok.Is(lexer.TokenIdent) {
		return ast.None, p.errorf("expected type name after \"type\", got %s", p.describe(p.tok))
	}
	name := p.name()
	pos := p.tok.Pos
	if err := p.checkUnique(name, p.global); err != nil {
		return ast.None, err
	}
	p.next()

	if err := p.expect(lexer.TokenColon, "after type name"); err != nil {
		return ast.None, err
	}

	var (
		typ ast.NodeID
		err error
	)
	if p.tok.Is(lexer.TokenStruct) {
		typ, err = p.parseStruct(name, pos)
	} else {
		typ, err = p.parseAlias(name, pos)
	}
	if err != nil {
		return ast.None, err
	}

	if err := p.expect(lexer.TokenSemicolon, "after type declaration"); err != nil {
		p.types.Remove(typ)
		return ast.None, err
	}
	if public {
		p.tree.Node(typ).Flags |= ast.FlagPublic
	}
	log.Debug(fmt.Sprintf("parser: declared type %s", name))
	return typ, nil
}

func (p *Parser) parseAlias(name ast.Name, pos diag.Position) (ast.NodeID, error) {
	target, depth, err := p.parseTypeRef()
	if err != nil {
		return ast.None, err
	}
	typ, err := p.types.DeclareAlias(name, pos, target, depth)
	if err != nil {
		return ast.None, p.errorAt(pos, "%v", err)
	}
	return typ, nil
}

// parseStruct parses "struct { member: Type*; ... }". The struct is visible
// while its members are parsed so that they can point at it.
func (p *Parser) parseStruct(name ast.Name, pos diag.Position) (ast.NodeID, error) {
	log.Debug("parser: parsing struct")
	p.next() // consume 'struct'

	st, err := p.types.BeginStruct(name, pos)
	if err != nil {
		return ast.None, p.errorAt(pos, "%v", err)
	}
	defer p.types.EndStruct(st)

	if err := p.expect(lexer.TokenLBrace, "after \"struct\""); err != nil {
		p.types.Remove(st)
		return ast.None, err
	}

	for !p.tok.Is(lexer.TokenRBrace) {
		if err := p.parseMember(st); err != nil {
			p.types.Remove(st)
			return ast.None, err
		}
	}
	p.next() // consume '}'
	return st, nil
}

func (p *Parser) parseMember(st ast.NodeID) error {
	if !p.tok.Is(lexer.TokenIdent) {
		return p.errorf("expected member name, got %s", p.describe(p.tok))
	}
	name := p.name()
	pos := p.tok.Pos
	p.next()

	if err := p.expect(lexer.TokenColon, "after member name"); err != nil {
		return err
	}
	typ, depth, err := p.parseTypeRef()
	if err != nil {
		return err
	}
	if _, err := p.types.AddMember(st, name, pos, typ, depth); err != nil {
		return p.errorAt(pos, "%v", err)
	}
	return p.expect(lexer.TokenSemicolon, "after struct member")
}
