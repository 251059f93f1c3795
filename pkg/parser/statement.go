package parser

import (
	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/lexer"
	log "github.com/sirupsen/logrus"
)

// parseStatementGroup parses "{" statements "}" into parent. Declarations
// made inside are visible through scope only.
func (p *Parser) parseStatementGroup(parent, proc ast.NodeID, scope *ast.Scope) error {
	log.Debug("parser: parsing statement group")

	if err := p.expect(lexer.TokenLBrace, "to open block"); err != nil {
		return err
	}
	for !p.tok.Is(lexer.TokenRBrace) {
		if p.tok.Is(lexer.TokenEOF) {
			return p.errorf("expected \"}\" before end of file")
		}
		if _, err := p.parseStatement(parent, proc, scope); err != nil {
			return err
		}
	}
	p.next() // consume '}'
	return nil
}

func (p *Parser) parseStatement(parent, proc ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing statement")

	switch p.tok.Type {
	case lexer.TokenReturn:
		return p.parseReturn(parent, proc, scope)
	case lexer.TokenIf:
		return p.parseIf(parent, proc, scope)
	case lexer.TokenIdent:
	default:
		return ast.None, p.errorf("expected statement, got %s", p.describe(p.tok))
	}

	name := p.name()
	if p.types.Find(name) != ast.None {
		return p.parseLocal(parent, proc, scope)
	}

	sym := scope.Lookup(p.tree, name)
	switch p.tree.Kind(sym) {
	case ast.KindProcedure:
		return p.parseCallStatement(parent, sym, scope)
	case ast.KindParameter, ast.KindLocalVariable:
		return p.parseAssignment(parent, sym, scope)
	case ast.KindInvalid:
		return ast.None, p.errorf("undeclared identifier \"%s\"", name)
	default:
		return ast.None, p.errorf("\"%s\" cannot start a statement", name)
	}
}

// parseReturn parses "return [value];". A value is required exactly when the
// procedure declares a return type.
func (p *Parser) parseReturn(parent, proc ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing return")

	data, _ := ast.As[*ast.Procedure](p.tree, proc)
	procName := p.tree.Node(proc).Name
	ret := p.tree.New(&ast.Return{}, p.tok.Pos)
	p.next() // consume 'return'

	if p.tok.Is(lexer.TokenSemicolon) {
		if data.ReturnType != ast.None {
			p.tree.Delete(ret)
			return ast.None, p.errorf("procedure \"%s\" must return a value", procName)
		}
		p.next()
		p.tree.Append(parent, ret)
		return ret, nil
	}

	if data.ReturnType == ast.None {
		p.tree.Delete(ret)
		return ast.None, p.errorf("procedure \"%s\" does not have a return type", procName)
	}

	value, err := p.parseValue(scope)
	if err != nil {
		p.tree.Delete(ret)
		return ast.None, err
	}
	p.tree.Append(ret, value)

	if err := p.expect(lexer.TokenSemicolon, "after return value"); err != nil {
		p.tree.Delete(ret)
		return ast.None, err
	}
	p.tree.Append(parent, ret)
	return ret, nil
}

// parseIf parses "if (cond, ...) { statements }". The body runs when every
// condition is nonzero and has its own scope.
func (p *Parser) parseIf(parent, proc ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing if")

	node := p.tree.New(&ast.If{}, p.tok.Pos)
	p.next() // consume 'if'

	if err := p.expect(lexer.TokenLParen, "after \"if\""); err != nil {
		p.tree.Delete(node)
		return ast.None, err
	}
	if p.tok.Is(lexer.TokenRParen) {
		p.tree.Delete(node)
		return ast.None, p.errorf("expected condition")
	}

	conds := p.tree.New(&ast.Conditions{}, p.tok.Pos)
	p.tree.Append(node, conds)
	if err := p.parseValueList(conds, scope, "condition"); err != nil {
		p.tree.Delete(node)
		return ast.None, err
	}

	if err := p.parseStatementGroup(node, proc, ast.NewScope(node, scope)); err != nil {
		p.tree.Delete(node)
		return ast.None, err
	}
	p.tree.Append(parent, node)
	return node, nil
}

// parseCallStatement parses "name(args);"
func (p *Parser) parseCallStatement(parent, callee ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	pos := p.tok.Pos
	p.next() // consume name

	if p.tok.Is(lexer.TokenEquals) || p.tok.IsAssignment() {
		return ast.None, p.errorAt(pos, "cannot assign to global \"%s\"", p.tree.Node(callee).Name)
	}

	call, err := p.parseArguments(callee, pos, scope)
	if err != nil {
		return ast.None, err
	}
	if err := p.expect(lexer.TokenSemicolon, "after call"); err != nil {
		p.tree.Delete(call)
		return ast.None, err
	}
	p.tree.Append(parent, call)
	return call, nil
}

// parseAssignment parses "name = value;"
func (p *Parser) parseAssignment(parent, variable ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	log.Debug("parser: parsing assignment")

	name := p.tree.Node(variable).Name
	if typed, ok := p.tree.Node(variable).Data.(ast.Typed); ok {
		if typ, depth := typed.TypeRef(); p.types.IsStruct(typ, depth) {
			return ast.None, p.errorf("cannot assign to \"%s\" of struct type", name)
		}
	}

	assign := p.tree.New(&ast.Assignment{Variable: variable}, p.tok.Pos)
	p.next() // consume name

	if p.tok.IsAssignment() {
		p.tree.Delete(assign)
		return ast.None, p.errorf("compound assignment %s is not supported", p.describe(p.tok))
	}
	if err := p.expect(lexer.TokenEquals, "after variable name"); err != nil {
		p.tree.Delete(assign)
		return ast.None, err
	}

	value, err := p.parseValue(scope)
	if err != nil {
		p.tree.Delete(assign)
		return ast.None, err
	}
	p.tree.Append(assign, value)

	if err := p.expect(lexer.TokenSemicolon, "after assignment"); err != nil {
		p.tree.Delete(assign)
		return ast.None, err
	}
	p.tree.Append(parent, assign)
	return assign, nil
}
