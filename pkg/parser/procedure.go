package parser

import (
	"fmt"

	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/lexer"
	log "github.com/sirupsen/logrus"
)

// parseProcedure parses
//
//	proc name(Type* param, ...) [-> Type*] (";" | "{" statements "}")
//
// The procedure is linked before its body is parsed so that it can call
// itself; on failure it is removed again.
func (p *Parser) parseProcedure(public bool) (ast.NodeID, error) {
	log.Debug("parser: parsing procedure declaration")
	p.next() // consume 'proc'

	if !p.tok.Is(lexer.TokenIdent) {
		return ast.None, p.errorf("expected procedure name after \"proc\", got %s", p.describe(p.tok))
	}
	name := p.name()
	if err := p.checkUnique(name, p.global); err != nil {
		return ast.None, err
	}

	proc := p.tree.NewNamed(&ast.Procedure{}, name, p.tok.Pos)
	if public {
		p.tree.Node(proc).Flags |= ast.FlagPublic
	}
	p.next()

	scope := ast.NewScope(proc, p.global)
	if err := p.parseParameters(proc, scope); err != nil {
		p.tree.Delete(proc)
		return ast.None, err
	}

	if p.tok.Is(lexer.TokenArrow) {
		p.next()
		typ, depth, err := p.parseTypeRef()
		if err != nil {
			p.tree.Delete(proc)
			return ast.None, err
		}
		data, _ := ast.As[*ast.Procedure](p.tree, proc)
		data.ReturnType = typ
		data.ReturnPointerDepth = depth
	}

	switch {
	case p.tok.Is(lexer.TokenSemicolon):
		p.next()
		// a declaration has no frame of its own
		data, _ := ast.As[*ast.Procedure](p.tree, proc)
		data.LocalSize = 0
		p.tree.Append(p.procedures, proc)
		log.Debug(fmt.Sprintf("parser: declared procedure %s", name))
		return proc, nil

	case p.tok.Is(lexer.TokenLBrace):
		p.tree.Node(proc).Flags |= ast.FlagDefinition
		p.tree.Append(p.procedures, proc)
		if err := p.parseStatementGroup(proc, proc, scope); err != nil {
			p.tree.Delete(proc)
			return ast.None, err
		}
		log.Debug(fmt.Sprintf("parser: defined procedure %s", name))
		return proc, nil

	default:
		p.tree.Delete(proc)
		return ast.None, p.errorf("expected \";\" or \"{\" after procedure signature, got %s", p.describe(p.tok))
	}
}

// parseParameters parses a parenthesized parameter list into proc. Each
// parameter takes the next slot of the procedure frame.
func (p *Parser) parseParameters(proc ast.NodeID, scope *ast.Scope) error {
	log.Debug("parser: parsing parameters")

	if err := p.expect(lexer.TokenLParen, "after procedure name"); err != nil {
		return err
	}

	data, _ := ast.As[*ast.Procedure](p.tree, proc)
	for !p.tok.Is(lexer.TokenRParen) {
		param, err := p.parseVariable(scope, func(typ ast.NodeID, depth, size int) ast.Data {
			return &ast.Parameter{
				Type:         typ,
				PointerDepth: depth,
				Size:         size,
				Offset:       data.LocalSize,
				Index:        data.ParamCount,
			}
		})
		if err != nil {
			return err
		}

		p.tree.Append(proc, param)
		pd, _ := ast.As[*ast.Parameter](p.tree, param)
		data.LocalSize += pd.Size
		data.ParamCount++

		if p.tok.Is(lexer.TokenComma) {
			p.next()
			if p.tok.Is(lexer.TokenRParen) {
				p.warnf("trailing \",\" in parameter list")
			}
			continue
		}
		if !p.tok.Is(lexer.TokenRParen) {
			return p.errorf("expected \",\" or \")\" after parameter, got %s", p.describe(p.tok))
		}
	}

	p.next() // consume ')'
	return nil
}
