package parser

import (
	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/lexer"
	log "github.com/sirupsen/logrus"
)

// parseVariable parses "Type* name" and returns a detached node built by
// build. The name must not be visible from scope.
func (p *Parser) parseVariable(scope *ast.Scope, build func(typ ast.NodeID, depth, size int) ast.Data) (ast.NodeID, error) {
	log.Debug("parser: parsing variable declaration")

	typ, depth, err := p.parseTypeRef()
	if err != nil {
		return ast.None, err
	}

	if !p.tok.Is(lexer.TokenIdent) {
		return ast.None, p.errorf("expected name after type, got %s", p.describe(p.tok))
	}
	name := p.name()
	if err := p.checkUnique(name, scope); err != nil {
		return ast.None, err
	}

	id := p.tree.NewNamed(build(typ, depth, p.types.SizeOf(typ, depth)), name, p.tok.Pos)
	p.next()
	return id, nil
}

// parseLocal parses "Type* name [= value];". The slot is allocated from the
// enclosing procedure, not from the block, so slots are never shared.
func (p *Parser) parseLocal(parent, proc ast.NodeID, scope *ast.Scope) (ast.NodeID, error) {
	data, _ := ast.As[*ast.Procedure](p.tree, proc)

	local, err := p.parseVariable(scope, func(typ ast.NodeID, depth, size int) ast.Data {
		return &ast.LocalVariable{
			Type:         typ,
			PointerDepth: depth,
			Size:         size,
			Offset:       data.LocalSize,
		}
	})
	if err != nil {
		return ast.None, err
	}

	if p.tok.Is(lexer.TokenEquals) {
		lv, _ := ast.As[*ast.LocalVariable](p.tree, local)
		if p.types.IsStruct(lv.Type, lv.PointerDepth) {
			name := p.tree.Node(local).Name
			p.tree.Delete(local)
			return ast.None, p.errorf("cannot initialize \"%s\" of struct type", name)
		}
		p.next()

		value, err := p.parseValue(scope)
		if err != nil {
			p.tree.Delete(local)
			return ast.None, err
		}
		p.tree.Append(local, value)
	}

	if err := p.expect(lexer.TokenSemicolon, "after variable declaration"); err != nil {
		p.tree.Delete(local)
		return ast.None, err
	}

	lv, _ := ast.As[*ast.LocalVariable](p.tree, local)
	data.LocalSize += lv.Size
	p.tree.Append(parent, local)
	return local, nil
}
