package parser

import (
	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/lexer"
	log "github.com/sirupsen/logrus"
)

// parseValue parses a number, character, string, variable reference or call
// and returns it detached.
func (p *Parser) parseValue(scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing value")

	switch p.tok.Type {
	case lexer.TokenNumber:
		id := p.tree.New(&ast.Number{Value: p.tok.Value}, p.tok.Pos)
		p.next()
		return id, nil

	case lexer.TokenCharacter:
		return p.parseCharacter()

	case lexer.TokenString:
		return p.parseString()

	case lexer.TokenIdent:
		name := p.name()
		sym := scope.Lookup(p.tree, name)
		switch p.tree.Kind(sym) {
		case ast.KindProcedure:
			return p.parseCall(sym, scope)
		case ast.KindParameter, ast.KindLocalVariable:
			id := p.tree.New(&ast.VariableReference{Variable: sym}, p.tok.Pos)
			p.next()
			return id, nil
		case ast.KindInvalid:
			if p.types.Find(name) != ast.None {
				return ast.None, p.errorf("type \"%s\" cannot be used as a value", name)
			}
			return ast.None, p.errorf("undeclared identifier \"%s\"", name)
		default:
			return ast.None, p.errorf("\"%s\" cannot be used as a value", name)
		}
	}

	return ast.None, p.errorf("expected value, got %s", p.describe(p.tok))
}

// parseCharacter turns 'c' into a Number flagged as a character. A
// backslash yields the byte that follows it unchanged.
func (p *Parser) parseCharacter() (ast.NodeID, error) {
	lit := p.lex.Literal(p.tok)

	var value byte
	switch {
	case len(lit) == 1 && lit[0] != '\\':
		value = lit[0]
	case len(lit) == 2 && lit[0] == '\\':
		value = lit[1]
	default:
		return ast.None, p.errorf("invalid character literal %s", p.describe(p.tok))
	}

	id := p.tree.New(&ast.Number{Value: uint64(value)}, p.tok.Pos)
	p.tree.Node(id).Flags |= ast.FlagCharacter
	p.next()
	return id, nil
}

// parseString adds the literal to the string table with the next ID and
// returns a reference to it.
func (p *Parser) parseString() (ast.NodeID, error) {
	pos := p.tok.Pos
	str := p.tree.New(&ast.String{ID: p.nextString, Data: []byte(p.lex.Literal(p.tok))}, pos)
	p.nextString++
	p.tree.Append(p.strings, str)

	ref := p.tree.New(&ast.StringReference{String: str}, pos)
	p.next()
	return ref, nil
}

// parseCall parses "name(args)" in a value position, where the callee must
// produce a value.
func (p *Parser) parseCall(callee ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	if data, _ := ast.As[*ast.Procedure](p.tree, callee); data.ReturnType == ast.None {
		return ast.None, p.errorf("procedure \"%s\" does not return a value", p.tree.Node(callee).Name)
	}

	pos := p.tok.Pos
	p.next() // consume name
	return p.parseArguments(callee, pos, scope)
}

// parseArguments parses "(args)" after a callee name and checks the argument
// count against the callee's parameters.
func (p *Parser) parseArguments(callee ast.NodeID, pos diag.Position, scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing call")

	name := p.tree.Node(callee).Name
	if err := p.expect(lexer.TokenLParen, "after procedure name"); err != nil {
		return ast.None, err
	}

	call := p.tree.New(&ast.Call{Callee: callee}, pos)
	if !p.tok.Is(lexer.TokenRParen) {
		if err := p.parseValueList(call, scope, "argument"); err != nil {
			p.tree.Delete(call)
			return ast.None, err
		}
	} else {
		p.next()
	}

	data, _ := ast.As[*ast.Procedure](p.tree, callee)
	if got := p.tree.ChildCount(call); got != data.ParamCount {
		p.tree.Delete(call)
		return ast.None, p.errorAt(pos, "procedure \"%s\" expects %d argument(s), got %d", name, data.ParamCount, got)
	}
	return call, nil
}

// parseValueList parses comma separated values into parent up to and
// including the closing ")". A trailing comma is only a warning.
func (p *Parser) parseValueList(parent ast.NodeID, scope *ast.Scope, what string) error {
	for {
		value, err := p.parseValue(scope)
		if err != nil {
			return err
		}
		p.tree.Append(parent, value)

		if p.tok.Is(lexer.TokenComma) {
			p.next()
			if p.tok.Is(lexer.TokenRParen) {
				p.warnf("trailing \",\" in %s list", what)
				p.next()
				return nil
			}
			continue
		}
		if p.tok.Is(lexer.TokenRParen) {
			p.next()
			return nil
		}
		return p.errorf("expected \",\" or \")\" after %s, got %s", what, p.describe(p.tok))
	}
}
