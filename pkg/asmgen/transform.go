// Package asmgen transforms a parsed Quark program to x86-64 assembly.
// This is the final compilation phase, producing assembly code that can be
// assembled by nasm or the GNU assembler.
package asmgen

import (
	"errors"
	"fmt"

	"github.com/quark-lang/quark/pkg/asm"
	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/parser"
	log "github.com/sirupsen/logrus"
)

// ErrUnsupported is returned for programs the generator cannot lower
var ErrUnsupported = errors.New("unsupported")

// Config controls code generation
type Config struct {
	WordSize int // must be 8
}

// DefaultConfig returns the configuration for x86-64
func DefaultConfig() Config {
	return Config{WordSize: pointerSize}
}

// TransformProgram transforms a parsed program to assembly
func TransformProgram(prog *parser.Program, cfg Config) (*asm.Program, error) {
	if cfg.WordSize != pointerSize {
		return nil, fmt.Errorf("%w: word size %d (x86-64 needs %d)", ErrUnsupported, cfg.WordSize, pointerSize)
	}

	ctx := &genContext{prog: prog, tree: prog.Tree}
	result := &asm.Program{
		Strings:   make([]asm.StringData, 0),
		Externs:   make([]string, 0),
		Functions: make([]asm.Function, 0),
	}

	// String literals
	for _, id := range prog.StringList() {
		s, ok := ast.As[*ast.String](ctx.tree, id)
		if !ok {
			continue
		}
		result.Strings = append(result.Strings, asm.StringData{
			Label: stringLabel(s.ID),
			Data:  s.Data,
		})
	}

	// Procedures
	for _, id := range prog.ProcedureList() {
		n := ctx.tree.Node(id)
		name := n.Name.Text
		if !n.Has(ast.FlagDefinition) {
			result.Externs = append(result.Externs, name)
			continue
		}
		fn, err := ctx.transformProcedure(id)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", name, err)
		}
		result.Functions = append(result.Functions, fn)
	}

	log.Debug(fmt.Sprintf("asmgen: generated %d function(s), %d extern(s), %d string(s)",
		len(result.Functions), len(result.Externs), len(result.Strings)))
	return result, nil
}

func stringLabel(id int) string {
	return fmt.Sprintf("__string%d", id)
}

// genContext holds state during code generation
type genContext struct {
	prog       *parser.Program
	tree       *ast.Tree
	labelCount int

	// per procedure
	proc     ast.NodeID
	frame    *Frame
	code     []asm.Instruction
	exit     asm.Label
	exitUsed bool
}

// newLabel generates a label unique within the program
func (ctx *genContext) newLabel() asm.Label {
	ctx.labelCount++
	return asm.Label(fmt.Sprintf(".L%d", ctx.labelCount))
}

func (ctx *genContext) emit(insts ...asm.Instruction) {
	ctx.code = append(ctx.code, insts...)
}

// transformProcedure lowers a procedure definition. The body is generated
// first so the prologue knows how many temporaries it needs.
func (ctx *genContext) transformProcedure(id ast.NodeID) (asm.Function, error) {
	n := ctx.tree.Node(id)
	name := n.Name.Text
	proc, ok := n.Data.(*ast.Procedure)
	if !ok {
		return asm.Function{}, fmt.Errorf("node %d is a %s, not a procedure", id, n.Kind)
	}
	log.Debug(fmt.Sprintf("asmgen: generating %s", name))

	ctx.proc = id
	ctx.frame = newFrame(proc.LocalSize)
	ctx.code = nil
	ctx.exit = ctx.newLabel()
	ctx.exitUsed = false

	children := ctx.tree.Children(id)
	params, body := children[:proc.ParamCount], children[proc.ParamCount:]
	for _, p := range params {
		if err := ctx.spillParameter(p); err != nil {
			return asm.Function{}, err
		}
	}
	for _, stmt := range body {
		if err := ctx.genStatement(stmt); err != nil {
			return asm.Function{}, err
		}
	}

	fn := asm.NewFunction(name)
	fn.Global = true
	fn.Append(asm.Push{Src: asm.RBP})
	fn.Append(asm.Mov{Dst: asm.RBP, Src: asm.RSP})
	if size := ctx.frame.Size(); size > 0 {
		fn.Append(asm.SubImm{Dst: asm.RSP, Imm: int64(size)})
	}
	fn.Code = append(fn.Code, ctx.code...)
	if ctx.exitUsed {
		fn.AppendLabel(ctx.exit)
	}
	fn.Append(asm.Leave{})
	fn.Append(asm.Ret{})
	return *fn, nil
}

// spillParameter copies an incoming argument into the parameter's slot
func (ctx *genContext) spillParameter(id ast.NodeID) error {
	param, ok := ast.As[*ast.Parameter](ctx.tree, id)
	if !ok {
		return fmt.Errorf("node %d is not a parameter", id)
	}
	if err := ctx.checkScalar(id, param); err != nil {
		return err
	}
	slot := ctx.frame.Slot(param.Offset, param.Size)
	if param.Index < len(asm.ArgRegs) {
		ctx.emit(asm.Store{Dst: slot, Src: asm.ArgRegs[param.Index], Size: param.Size})
		return nil
	}
	ctx.emit(
		asm.Load{Dst: asm.RAX, Src: incomingArg(param.Index), Size: pointerSize},
		asm.Store{Dst: slot, Src: asm.RAX, Size: param.Size},
	)
	return nil
}

// checkScalar rejects variables that do not fit in a register
func (ctx *genContext) checkScalar(id ast.NodeID, v ast.Typed) error {
	typ, depth := v.TypeRef()
	if ctx.prog.Types.IsStruct(typ, depth) {
		return fmt.Errorf("%w: %q holds a struct by value", ErrUnsupported, ctx.tree.Node(id).Name.Text)
	}
	if _, size := v.(ast.Variable).Slot(); !registerSize(size) {
		return fmt.Errorf("%w: %q has size %d", ErrUnsupported, ctx.tree.Node(id).Name.Text, size)
	}
	return nil
}

func registerSize(size int) bool {
	switch size {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

func (ctx *genContext) genStatement(id ast.NodeID) error {
	n := ctx.tree.Node(id)
	switch d := n.Data.(type) {
	case *ast.LocalVariable:
		value := n.Head
		if value == ast.None {
			return nil
		}
		if err := ctx.checkScalar(id, d); err != nil {
			return err
		}
		if err := ctx.genValue(value, asm.RAX); err != nil {
			return err
		}
		ctx.emit(asm.Store{Dst: ctx.frame.Slot(d.Offset, d.Size), Src: asm.RAX, Size: d.Size})
		return nil

	case *ast.Assignment:
		return ctx.genAssignment(id, d)

	case *ast.Call:
		return ctx.genCall(id, d)

	case *ast.Return:
		return ctx.genReturn(id)

	case *ast.If:
		return ctx.genIf(id)
	}
	return fmt.Errorf("%w: %s statement", ErrUnsupported, n.Kind)
}

func (ctx *genContext) genAssignment(id ast.NodeID, a *ast.Assignment) error {
	target := ctx.tree.Node(a.Variable)
	v, ok := target.Data.(ast.Variable)
	if !ok {
		return fmt.Errorf("cannot assign to %s %q", target.Kind, target.Name.Text)
	}
	if typed, ok := target.Data.(ast.Typed); ok {
		if err := ctx.checkScalar(a.Variable, typed); err != nil {
			return err
		}
	}
	if err := ctx.genValue(ctx.tree.Node(id).Head, asm.RAX); err != nil {
		return err
	}
	offset, size := v.Slot()
	ctx.emit(asm.Store{Dst: ctx.frame.Slot(offset, size), Src: asm.RAX, Size: size})
	return nil
}

// genReturn puts the value in rax and leaves. Only the last statement of the
// body falls through to the epilogue; every other return jumps to it.
func (ctx *genContext) genReturn(id ast.NodeID) error {
	n := ctx.tree.Node(id)
	if value := n.Head; value != ast.None {
		if err := ctx.genValue(value, asm.RAX); err != nil {
			return err
		}
	}
	n = ctx.tree.Node(id)
	if n.Parent == ctx.proc && n.Next == ast.None {
		return nil
	}
	ctx.exitUsed = true
	ctx.emit(asm.Jmp{Target: ctx.exit})
	return nil
}

// genIf tests each condition in order and skips the body when one is zero
func (ctx *genContext) genIf(id ast.NodeID) error {
	children := ctx.tree.Children(id)
	if len(children) == 0 || ctx.tree.Kind(children[0]) != ast.KindConditions {
		return fmt.Errorf("if node %d has no conditions", id)
	}
	end := ctx.newLabel()

	for _, cond := range ctx.tree.Children(children[0]) {
		if err := ctx.genValue(cond, asm.RAX); err != nil {
			return err
		}
		ctx.emit(
			asm.Test{A: asm.RAX, B: asm.RAX},
			asm.Jcc{Cond: asm.CondZ, Target: end},
		)
	}
	for _, stmt := range children[1:] {
		if err := ctx.genStatement(stmt); err != nil {
			return err
		}
	}
	ctx.emit(asm.LabelDef{Name: end})
	return nil
}

// genValue materializes a value into dst
func (ctx *genContext) genValue(id ast.NodeID, dst asm.Reg) error {
	n := ctx.tree.Node(id)
	switch d := n.Data.(type) {
	case *ast.Number:
		if d.Value == 0 {
			ctx.emit(asm.Xor{Dst: dst, Src: dst, Size: 4})
		} else {
			ctx.emit(asm.MovImm{Dst: dst, Imm: d.Value})
		}
		return nil

	case *ast.StringReference:
		s, ok := ast.As[*ast.String](ctx.tree, d.String)
		if !ok {
			return fmt.Errorf("string reference %d points at node %d", id, d.String)
		}
		ctx.emit(asm.Lea{Dst: dst, Label: stringLabel(s.ID)})
		return nil

	case *ast.VariableReference:
		target := ctx.tree.Node(d.Variable)
		v, ok := target.Data.(ast.Variable)
		if !ok {
			return fmt.Errorf("%q is a %s, not a variable", target.Name.Text, target.Kind)
		}
		if typed, ok := target.Data.(ast.Typed); ok {
			if err := ctx.checkScalar(d.Variable, typed); err != nil {
				return err
			}
		}
		offset, size := v.Slot()
		ctx.emit(asm.Load{Dst: dst, Src: ctx.frame.Slot(offset, size), Size: size})
		return nil

	case *ast.Call:
		if err := ctx.genCall(id, d); err != nil {
			return err
		}
		if dst != asm.RAX {
			ctx.emit(asm.Mov{Dst: dst, Src: asm.RAX})
		}
		return nil
	}
	return fmt.Errorf("%w: %s value", ErrUnsupported, n.Kind)
}

// genCall emits a call following the System V convention. Nested calls are
// evaluated first and parked in temporaries so that no argument register is
// clobbered while the arguments are loaded. The result is left in rax.
func (ctx *genContext) genCall(id ast.NodeID, call *ast.Call) error {
	args := ctx.tree.Children(id)
	callee := ctx.tree.Node(call.Callee).Name.Text

	temps := make(map[int]int)
	for i, arg := range args {
		inner, ok := ast.As[*ast.Call](ctx.tree, arg)
		if !ok {
			continue
		}
		if err := ctx.genCall(arg, inner); err != nil {
			return err
		}
		k := ctx.frame.allocTemp()
		temps[i] = k
		ctx.emit(asm.Store{Dst: ctx.frame.TempSlot(k), Src: asm.RAX, Size: tempSize})
	}
	defer ctx.frame.releaseTemps(len(temps))

	loadArg := func(i int, dst asm.Reg) error {
		if k, ok := temps[i]; ok {
			ctx.emit(asm.Load{Dst: dst, Src: ctx.frame.TempSlot(k), Size: tempSize})
			return nil
		}
		return ctx.genValue(args[i], dst)
	}

	// stack arguments, right to left, keeping rsp aligned at the call
	cleanup := 0
	if stackArgs := len(args) - len(asm.ArgRegs); stackArgs > 0 {
		if stackArgs%2 != 0 {
			ctx.emit(asm.SubImm{Dst: asm.RSP, Imm: pointerSize})
			cleanup += pointerSize
		}
		for i := len(args) - 1; i >= len(asm.ArgRegs); i-- {
			if err := loadArg(i, asm.RAX); err != nil {
				return err
			}
			ctx.emit(asm.Push{Src: asm.RAX})
			cleanup += pointerSize
		}
	}

	for i := 0; i < len(args) && i < len(asm.ArgRegs); i++ {
		if err := loadArg(i, asm.ArgRegs[i]); err != nil {
			return err
		}
	}

	ctx.emit(asm.Call{Target: callee})
	if cleanup > 0 {
		ctx.emit(asm.AddImm{Dst: asm.RSP, Imm: int64(cleanup)})
	}
	return nil
}
