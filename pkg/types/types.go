// Package types keeps the table of built-in and declared Quark types and
// computes their sizes.
package types

import (
	"errors"
	"fmt"

	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/diag"
	log "github.com/sirupsen/logrus"
)

var (
	ErrDuplicate    = errors.New("already declared")
	ErrSelfContains = errors.New("contains itself")
	ErrNotType      = errors.New("not a type")
)

// Builtin describes a primitive type registered when a table is created
type Builtin struct {
	Name string
	Size int
}

// DefaultBuiltins returns the primitive types for a machine word of wordSize
// bytes: "uint" is one word and "char" is one byte.
func DefaultBuiltins(wordSize int) []Builtin {
	return []Builtin{
		{Name: "uint", Size: wordSize},
		{Name: "char", Size: 1},
	}
}

// Table holds every type of a compilation unit as the children of a root
// node in the shared tree.
type Table struct {
	tree     *ast.Tree
	root     ast.NodeID
	wordSize int
}

// New creates a table in tree and registers the given built-in types
func New(tree *ast.Tree, wordSize int, builtins []Builtin) *Table {
	log.Debug("types: initializing type table")

	t := &Table{tree: tree, wordSize: wordSize}
	t.root = tree.New(&ast.Root{}, diag.Position{})
	for _, b := range builtins {
		id := tree.NewNamed(&ast.BuiltinType{Size: b.Size}, ast.NewName(b.Name), diag.Position{})
		tree.Append(t.root, id)
	}
	return t
}

// Root returns the node holding all types
func (t *Table) Root() ast.NodeID {
	return t.root
}

// WordSize returns the size of a pointer in bytes
func (t *Table) WordSize() int {
	return t.wordSize
}

// Find returns the type declared as name, or ast.None
func (t *Table) Find(name ast.Name) ast.NodeID {
	return t.tree.Find(t.root, name)
}

// Declare adds a type node built from data. The name must not be taken.
func (t *Table) Declare(name ast.Name, data ast.Data, pos diag.Position) (ast.NodeID, error) {
	switch data.(type) {
	case *ast.BuiltinType, *ast.TypeAlias, *ast.Struct:
	default:
		return ast.None, fmt.Errorf("%w: %s", ErrNotType, data.Kind())
	}
	if t.Find(name) != ast.None {
		return ast.None, fmt.Errorf("type \"%s\" %w", name, ErrDuplicate)
	}

	id := t.tree.NewNamed(data, name, pos)
	t.tree.Append(t.root, id)
	log.Debug(fmt.Sprintf("types: declared %s %s", data.Kind(), name))
	return id, nil
}

// DeclareAlias declares name as target with pointerDepth extra levels of
// indirection. Aliases of pointer aliases accumulate depth.
func (t *Table) DeclareAlias(name ast.Name, pos diag.Position, target ast.NodeID, pointerDepth int) (ast.NodeID, error) {
	if prev, ok := ast.As[*ast.TypeAlias](t.tree, target); ok {
		pointerDepth += prev.PointerDepth
	}
	alias := &ast.TypeAlias{
		Type:         target,
		PointerDepth: pointerDepth,
		Size:         t.SizeOf(target, pointerDepth),
	}
	return t.Declare(name, alias, pos)
}

// BeginStruct declares an empty struct that members can then be added to.
// Members may point at the struct but not contain it; EndStruct closes it.
func (t *Table) BeginStruct(name ast.Name, pos diag.Position) (ast.NodeID, error) {
	id, err := t.Declare(name, &ast.Struct{}, pos)
	if err != nil {
		return ast.None, err
	}
	t.tree.Node(id).Flags |= ast.FlagVisited
	return id, nil
}

// AddMember appends a member to an open struct, placing it right after the
// previous member with no padding.
func (t *Table) AddMember(st ast.NodeID, name ast.Name, pos diag.Position, typ ast.NodeID, pointerDepth int) (ast.NodeID, error) {
	s, ok := ast.As[*ast.Struct](t.tree, st)
	if !ok {
		return ast.None, fmt.Errorf("%w: node %d is not a struct", ErrNotType, st)
	}
	if t.tree.Find(st, name) != ast.None {
		return ast.None, fmt.Errorf("member \"%s\" %w", name, ErrDuplicate)
	}
	if pointerDepth == 0 {
		if under := t.Underlying(typ); under != ast.None && t.tree.Node(under).Has(ast.FlagVisited) {
			return ast.None, fmt.Errorf("struct \"%s\" %w", t.tree.Node(under).Name, ErrSelfContains)
		}
	}

	size := t.SizeOf(typ, pointerDepth)
	member := &ast.StructMember{
		Type:         typ,
		PointerDepth: pointerDepth,
		Offset:       s.Size,
		Size:         size,
	}
	id := t.tree.NewNamed(member, name, pos)
	t.tree.Append(st, id)
	s.Size += size
	return id, nil
}

// EndStruct closes a struct opened by BeginStruct
func (t *Table) EndStruct(st ast.NodeID) {
	if t.tree.Valid(st) {
		t.tree.Node(st).Flags &^= ast.FlagVisited
	}
}

// Remove deletes a type, used to roll back a declaration that failed
func (t *Table) Remove(id ast.NodeID) {
	t.tree.Delete(id)
}

// Underlying follows non-pointer aliases and returns the type they name. A
// pointer alias is its own underlying type.
func (t *Table) Underlying(typ ast.NodeID) ast.NodeID {
	for {
		alias, ok := ast.As[*ast.TypeAlias](t.tree, typ)
		if !ok || alias.PointerDepth > 0 {
			return typ
		}
		typ = alias.Type
	}
}

// IsStruct reports whether a value of typ with pointerDepth levels of
// indirection is a struct held by value.
func (t *Table) IsStruct(typ ast.NodeID, pointerDepth int) bool {
	if pointerDepth > 0 {
		return false
	}
	return t.tree.Kind(t.Underlying(typ)) == ast.KindStruct
}

// SizeOf returns the storage size of a value of typ with pointerDepth levels
// of indirection.
func (t *Table) SizeOf(typ ast.NodeID, pointerDepth int) int {
	if pointerDepth > 0 {
		return t.wordSize
	}
	if !t.tree.Valid(typ) {
		return 0
	}

	switch d := t.tree.Node(typ).Data.(type) {
	case *ast.BuiltinType:
		return d.Size
	case *ast.TypeAlias:
		return d.Size
	case *ast.Struct:
		return d.Size
	}
	return 0
}
