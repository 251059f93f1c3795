package asm

import (
	"fmt"
	"io"
	"strings"
)

// Syntax selects the assembler dialect the printer emits
type Syntax int

const (
	// SyntaxNASM is Intel syntax for the Netwide Assembler
	SyntaxNASM Syntax = iota
	// SyntaxGAS is AT&T syntax for the GNU assembler
	SyntaxGAS
)

func (s Syntax) String() string {
	switch s {
	case SyntaxNASM:
		return "nasm"
	case SyntaxGAS:
		return "gas"
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// ParseSyntax returns the syntax called name
func ParseSyntax(name string) (Syntax, error) {
	switch strings.ToLower(name) {
	case "nasm", "intel":
		return SyntaxNASM, nil
	case "gas", "att":
		return SyntaxGAS, nil
	}
	return 0, fmt.Errorf("unknown assembly syntax %q (want nasm or gas)", name)
}

// Extension returns the conventional source file extension for the syntax
func (s Syntax) Extension() string {
	if s == SyntaxGAS {
		return ".s"
	}
	return ".asm"
}

// Printer outputs x86-64 assembly
type Printer struct {
	w      io.Writer
	syntax Syntax
}

// NewPrinter creates a new assembly printer
func NewPrinter(w io.Writer, syntax Syntax) *Printer {
	return &Printer{w: w, syntax: syntax}
}

// PrintProgram outputs an entire program
func (p *Printer) PrintProgram(prog *Program) {
	gas := p.syntax == SyntaxGAS

	if len(prog.Strings) > 0 {
		if gas {
			fmt.Fprintf(p.w, "\t.section\t.data\n")
		} else {
			fmt.Fprintf(p.w, "section .data\n")
		}
		for _, s := range prog.Strings {
			p.printString(s)
		}
		fmt.Fprintf(p.w, "\n")
	}

	if gas {
		fmt.Fprintf(p.w, "\t.text\n")
	} else {
		fmt.Fprintf(p.w, "section .text\n")
	}
	for _, name := range prog.Externs {
		if gas {
			fmt.Fprintf(p.w, "\t.extern\t%s\n", name)
		} else {
			fmt.Fprintf(p.w, "extern %s\n", name)
		}
	}
	for _, f := range prog.Functions {
		p.printFunction(f)
	}
}

func (p *Printer) printString(s StringData) {
	if p.syntax == SyntaxGAS {
		fmt.Fprintf(p.w, "%s:\n\t.byte\t", s.Label)
		for _, b := range s.Data {
			fmt.Fprintf(p.w, "%d, ", b)
		}
		fmt.Fprintf(p.w, "0\n")
		return
	}
	fmt.Fprintf(p.w, "%s: db %s\n", s.Label, nasmBytes(s.Data))
}

// nasmBytes renders data as a db operand list ending in a NUL. Printable
// runs are quoted; other bytes are written as numbers.
func nasmBytes(data []byte) string {
	var sb strings.Builder
	inQuote := false
	for _, b := range data {
		printable := b >= 0x20 && b < 0x7f && b != '"'
		switch {
		case printable && !inQuote:
			if sb.Len() > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('"')
			inQuote = true
		case !printable && inQuote:
			sb.WriteByte('"')
			inQuote = false
		}
		if printable {
			sb.WriteByte(b)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", b)
	}
	if inQuote {
		sb.WriteByte('"')
	}
	if sb.Len() > 0 {
		sb.WriteString(", ")
	}
	sb.WriteString("0")
	return sb.String()
}

func (p *Printer) printFunction(f Function) {
	fmt.Fprintf(p.w, "\n")
	if f.Global {
		if p.syntax == SyntaxGAS {
			fmt.Fprintf(p.w, "\t.globl\t%s\n", f.Name)
		} else {
			fmt.Fprintf(p.w, "global %s\n", f.Name)
		}
	}
	fmt.Fprintf(p.w, "%s:\n", f.Name)

	for _, inst := range f.Code {
		p.printInstruction(inst)
	}
}

func (p *Printer) printInstruction(inst Instruction) {
	if p.syntax == SyntaxGAS {
		p.printGAS(inst)
		return
	}
	p.printNASM(inst)
}

// --- NASM ---

func nasmMem(m Mem) string {
	switch {
	case m.Disp < 0:
		return fmt.Sprintf("[%s-%d]", m.Base, -m.Disp)
	case m.Disp > 0:
		return fmt.Sprintf("[%s+%d]", m.Base, m.Disp)
	}
	return fmt.Sprintf("[%s]", m.Base)
}

func nasmSize(size int) string {
	switch size {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	}
	return "qword"
}

func (p *Printer) printNASM(inst Instruction) {
	switch i := inst.(type) {
	case Push:
		fmt.Fprintf(p.w, "\tpush\t%s\n", i.Src)
	case Pop:
		fmt.Fprintf(p.w, "\tpop\t%s\n", i.Dst)
	case Mov:
		fmt.Fprintf(p.w, "\tmov\t%s, %s\n", i.Dst, i.Src)
	case MovImm:
		fmt.Fprintf(p.w, "\tmov\t%s, %d\n", i.Dst, i.Imm)
	case Xor:
		fmt.Fprintf(p.w, "\txor\t%s, %s\n", i.Dst.Name(i.Size), i.Src.Name(i.Size))
	case Lea:
		fmt.Fprintf(p.w, "\tlea\t%s, [rel %s]\n", i.Dst, i.Label)
	case Load:
		switch i.Size {
		case 1, 2:
			// zero-extend into the 32-bit register, which clears the upper half
			fmt.Fprintf(p.w, "\tmovzx\t%s, %s %s\n", i.Dst.Name(4), nasmSize(i.Size), nasmMem(i.Src))
		case 4:
			fmt.Fprintf(p.w, "\tmov\t%s, dword %s\n", i.Dst.Name(4), nasmMem(i.Src))
		default:
			fmt.Fprintf(p.w, "\tmov\t%s, qword %s\n", i.Dst, nasmMem(i.Src))
		}
	case Store:
		fmt.Fprintf(p.w, "\tmov\t%s %s, %s\n", nasmSize(i.Size), nasmMem(i.Dst), i.Src.Name(i.Size))
	case Test:
		fmt.Fprintf(p.w, "\ttest\t%s, %s\n", i.A, i.B)
	case Jcc:
		fmt.Fprintf(p.w, "\tj%s\t%s\n", i.Cond, i.Target)
	case Jmp:
		fmt.Fprintf(p.w, "\tjmp\t%s\n", i.Target)
	case Call:
		fmt.Fprintf(p.w, "\tcall\t%s\n", i.Target)
	case AddImm:
		fmt.Fprintf(p.w, "\tadd\t%s, %d\n", i.Dst, i.Imm)
	case SubImm:
		fmt.Fprintf(p.w, "\tsub\t%s, %d\n", i.Dst, i.Imm)
	case Leave:
		fmt.Fprintf(p.w, "\tleave\n")
	case Ret:
		fmt.Fprintf(p.w, "\tret\n")
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	default:
		fmt.Fprintf(p.w, "\t; unknown instruction: %T\n", inst)
	}
}

// --- GAS ---

func gasReg(r Reg, size int) string {
	return "%" + r.Name(size)
}

func gasMem(m Mem) string {
	if m.Disp == 0 {
		return fmt.Sprintf("(%%%s)", m.Base)
	}
	return fmt.Sprintf("%d(%%%s)", m.Disp, m.Base)
}

func gasSuffix(size int) string {
	switch size {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "l"
	}
	return "q"
}

func (p *Printer) printGAS(inst Instruction) {
	switch i := inst.(type) {
	case Push:
		fmt.Fprintf(p.w, "\tpushq\t%s\n", gasReg(i.Src, 8))
	case Pop:
		fmt.Fprintf(p.w, "\tpopq\t%s\n", gasReg(i.Dst, 8))
	case Mov:
		fmt.Fprintf(p.w, "\tmovq\t%s, %s\n", gasReg(i.Src, 8), gasReg(i.Dst, 8))
	case MovImm:
		// movq sign-extends a 32-bit immediate
		if i.Imm <= 0x7fffffff {
			fmt.Fprintf(p.w, "\tmovq\t$%d, %s\n", i.Imm, gasReg(i.Dst, 8))
		} else {
			fmt.Fprintf(p.w, "\tmovabsq\t$%d, %s\n", i.Imm, gasReg(i.Dst, 8))
		}
	case Xor:
		fmt.Fprintf(p.w, "\txor%s\t%s, %s\n", gasSuffix(i.Size), gasReg(i.Src, i.Size), gasReg(i.Dst, i.Size))
	case Lea:
		fmt.Fprintf(p.w, "\tleaq\t%s(%%rip), %s\n", i.Label, gasReg(i.Dst, 8))
	case Load:
		switch i.Size {
		case 1:
			fmt.Fprintf(p.w, "\tmovzbl\t%s, %s\n", gasMem(i.Src), gasReg(i.Dst, 4))
		case 2:
			fmt.Fprintf(p.w, "\tmovzwl\t%s, %s\n", gasMem(i.Src), gasReg(i.Dst, 4))
		case 4:
			fmt.Fprintf(p.w, "\tmovl\t%s, %s\n", gasMem(i.Src), gasReg(i.Dst, 4))
		default:
			fmt.Fprintf(p.w, "\tmovq\t%s, %s\n", gasMem(i.Src), gasReg(i.Dst, 8))
		}
	case Store:
		fmt.Fprintf(p.w, "\tmov%s\t%s, %s\n", gasSuffix(i.Size), gasReg(i.Src, i.Size), gasMem(i.Dst))
	case Test:
		fmt.Fprintf(p.w, "\ttestq\t%s, %s\n", gasReg(i.B, 8), gasReg(i.A, 8))
	case Jcc:
		fmt.Fprintf(p.w, "\tj%s\t%s\n", i.Cond, i.Target)
	case Jmp:
		fmt.Fprintf(p.w, "\tjmp\t%s\n", i.Target)
	case Call:
		fmt.Fprintf(p.w, "\tcall\t%s\n", i.Target)
	case AddImm:
		fmt.Fprintf(p.w, "\taddq\t$%d, %s\n", i.Imm, gasReg(i.Dst, 8))
	case SubImm:
		fmt.Fprintf(p.w, "\tsubq\t$%d, %s\n", i.Imm, gasReg(i.Dst, 8))
	case Leave:
		fmt.Fprintf(p.w, "\tleave\n")
	case Ret:
		fmt.Fprintf(p.w, "\tret\n")
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	default:
		fmt.Fprintf(p.w, "\t# unknown instruction: %T\n", inst)
	}
}
