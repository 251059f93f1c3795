package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs a tree in a human-readable, indented form
type Printer struct {
	w      io.Writer
	tree   *Tree
	indent int
}

// NewPrinter creates a new tree printer
func NewPrinter(w io.Writer, tree *Tree) *Printer {
	return &Printer{w: w, tree: tree}
}

// PrintSection prints a heading followed by every child of root
func (p *Printer) PrintSection(heading string, root NodeID) {
	fmt.Fprintf(p.w, "%s:\n", heading)
	p.indent++
	for _, c := range p.tree.Children(root) {
		p.PrintNode(c)
	}
	p.indent--
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

// TypeString renders a type reference such as "char**"
func (p *Printer) TypeString(typ NodeID, pointerDepth int) string {
	name := "?"
	if p.tree.Valid(typ) {
		name = p.tree.Node(typ).Name.Text
	}
	return name + strings.Repeat("*", pointerDepth)
}

func (p *Printer) nameOf(id NodeID) string {
	if !p.tree.Valid(id) {
		return "?"
	}
	return p.tree.Node(id).Name.Text
}

// PrintNode prints id and its subtree at the current indentation
func (p *Printer) PrintNode(id NodeID) {
	n := p.tree.Node(id)
	p.writeIndent()

	switch d := n.Data.(type) {
	case *Root:
		fmt.Fprintln(p.w, "root")
	case *BuiltinType:
		fmt.Fprintf(p.w, "builtin %s size=%d\n", n.Name, d.Size)
	case *TypeAlias:
		fmt.Fprintf(p.w, "%stype %s = %s size=%d\n", pubPrefix(n), n.Name, p.TypeString(d.Type, d.PointerDepth), d.Size)
	case *Struct:
		fmt.Fprintf(p.w, "%sstruct %s size=%d\n", pubPrefix(n), n.Name, d.Size)
	case *StructMember:
		fmt.Fprintf(p.w, "member %s: %s offset=%d size=%d\n", n.Name, p.TypeString(d.Type, d.PointerDepth), d.Offset, d.Size)
	case *Procedure:
		p.printProcedure(n, d)
	case *Parameter:
		fmt.Fprintf(p.w, "param %s: %s offset=%d size=%d\n", n.Name, p.TypeString(d.Type, d.PointerDepth), d.Offset, d.Size)
	case *LocalVariable:
		fmt.Fprintf(p.w, "local %s: %s offset=%d size=%d\n", n.Name, p.TypeString(d.Type, d.PointerDepth), d.Offset, d.Size)
	case *VariableReference:
		fmt.Fprintf(p.w, "ref %s\n", p.nameOf(d.Variable))
	case *Assignment:
		fmt.Fprintf(p.w, "assign %s\n", p.nameOf(d.Variable))
	case *Call:
		fmt.Fprintf(p.w, "call %s\n", p.nameOf(d.Callee))
	case *Number:
		if n.Has(FlagCharacter) {
			fmt.Fprintf(p.w, "number %d %q\n", d.Value, rune(d.Value))
		} else {
			fmt.Fprintf(p.w, "number %d\n", d.Value)
		}
	case *String:
		fmt.Fprintf(p.w, "string %d \"%s\"\n", d.ID, d.Data)
	case *StringReference:
		id := -1
		if s, ok := As[*String](p.tree, d.String); ok {
			id = s.ID
		}
		fmt.Fprintf(p.w, "string-ref %d\n", id)
	case *Return:
		fmt.Fprintln(p.w, "return")
	case *If:
		fmt.Fprintln(p.w, "if")
	case *Conditions:
		fmt.Fprintln(p.w, "conditions")
	default:
		fmt.Fprintf(p.w, "/* unknown node %T */\n", n.Data)
	}

	p.indent++
	for _, c := range p.tree.Children(id) {
		p.PrintNode(c)
	}
	p.indent--
}

func (p *Printer) printProcedure(n *Node, d *Procedure) {
	fmt.Fprintf(p.w, "%sproc %s", pubPrefix(n), n.Name)
	if d.ReturnType != None {
		fmt.Fprintf(p.w, " -> %s", p.TypeString(d.ReturnType, d.ReturnPointerDepth))
	}
	if n.Has(FlagDefinition) {
		fmt.Fprintf(p.w, " locals=%d\n", d.LocalSize)
	} else {
		fmt.Fprintln(p.w, " extern")
	}
}

func pubPrefix(n *Node) string {
	if n.Has(FlagPublic) {
		return "pub "
	}
	return ""
}
