package parser

import (
	"io"

	"github.com/quark-lang/quark/pkg/ast"
)

// Print writes the type table, the string table and the procedures
func (prog *Program) Print(w io.Writer) {
	p := ast.NewPrinter(w, prog.Tree)
	p.PrintSection("types", prog.Types.Root())
	p.PrintSection("strings", prog.Strings)
	p.PrintSection("procedures", prog.Procedures)
}

// ProcedureList returns the procedures in declaration order
func (prog *Program) ProcedureList() []ast.NodeID {
	return prog.Tree.Children(prog.Procedures)
}

// StringList returns the string literals in ID order
func (prog *Program) StringList() []ast.NodeID {
	return prog.Tree.Children(prog.Strings)
}

// FindProcedure returns the procedure called name, or ast.None
func (prog *Program) FindProcedure(name string) ast.NodeID {
	return prog.Tree.Find(prog.Procedures, ast.NewName(name))
}
