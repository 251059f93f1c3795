// Package asm defines the x86-64 assembly representation.
// This is the final output of the compiler, printed as NASM or GAS source.
package asm

// Reg is a general purpose x86-64 register
type Reg int

const (
	RAX Reg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// register names by access size: 8, 4, 2 and 1 bytes
var regNames = [...][4]string{
	RAX: {"rax", "eax", "ax", "al"},
	RBX: {"rbx", "ebx", "bx", "bl"},
	RCX: {"rcx", "ecx", "cx", "cl"},
	RDX: {"rdx", "edx", "dx", "dl"},
	RSI: {"rsi", "esi", "si", "sil"},
	RDI: {"rdi", "edi", "di", "dil"},
	RBP: {"rbp", "ebp", "bp", "bpl"},
	RSP: {"rsp", "esp", "sp", "spl"},
	R8:  {"r8", "r8d", "r8w", "r8b"},
	R9:  {"r9", "r9d", "r9w", "r9b"},
	R10: {"r10", "r10d", "r10w", "r10b"},
	R11: {"r11", "r11d", "r11w", "r11b"},
	R12: {"r12", "r12d", "r12w", "r12b"},
	R13: {"r13", "r13d", "r13w", "r13b"},
	R14: {"r14", "r14d", "r14w", "r14b"},
	R15: {"r15", "r15d", "r15w", "r15b"},
}

// Name returns the register name for an access of size bytes
func (r Reg) Name(size int) string {
	if r < 0 || int(r) >= len(regNames) {
		return "?"
	}
	switch size {
	case 4:
		return regNames[r][1]
	case 2:
		return regNames[r][2]
	case 1:
		return regNames[r][3]
	}
	return regNames[r][0]
}

func (r Reg) String() string {
	return r.Name(8)
}

// ArgRegs are the System V integer argument registers in order
var ArgRegs = []Reg{RDI, RSI, RDX, RCX, R8, R9}

// Mem is a memory operand [Base+Disp]
type Mem struct {
	Base Reg
	Disp int
}

// Label represents a branch target label
type Label string

// CondCode selects the flag condition of a conditional jump
type CondCode int

const (
	CondZ CondCode = iota
	CondNZ
)

func (c CondCode) String() string {
	switch c {
	case CondZ:
		return "z"
	case CondNZ:
		return "nz"
	}
	return "?"
}

// --- Instruction Interface ---

// Instruction is the interface for x86-64 instructions
type Instruction interface {
	implInstruction()
}

// Push pushes a 64-bit register
type Push struct {
	Src Reg
}

// Pop pops into a 64-bit register
type Pop struct {
	Dst Reg
}

// Mov copies a 64-bit register
type Mov struct {
	Dst, Src Reg
}

// MovImm loads an immediate into a 64-bit register
type MovImm struct {
	Dst Reg
	Imm uint64
}

// Xor exclusive-ors Src into Dst using Size-byte registers
type Xor struct {
	Dst, Src Reg
	Size     int
}

// Lea loads the RIP-relative address of a data label
type Lea struct {
	Dst   Reg
	Label string
}

// Load reads Size bytes from memory, zero-extending below 8 bytes
type Load struct {
	Dst  Reg
	Src  Mem
	Size int
}

// Store writes the low Size bytes of Src to memory
type Store struct {
	Dst  Mem
	Src  Reg
	Size int
}

// Test sets flags from A & B
type Test struct {
	A, B Reg
}

// Jcc jumps to Target when Cond holds
type Jcc struct {
	Cond   CondCode
	Target Label
}

// Jmp jumps unconditionally
type Jmp struct {
	Target Label
}

// Call calls a procedure by symbol name
type Call struct {
	Target string
}

// AddImm adds an immediate to a 64-bit register
type AddImm struct {
	Dst Reg
	Imm int64
}

// SubImm subtracts an immediate from a 64-bit register
type SubImm struct {
	Dst Reg
	Imm int64
}

// Leave tears down the frame set up by the prologue
type Leave struct{}

// Ret returns to the caller
type Ret struct{}

// LabelDef defines a label
type LabelDef struct {
	Name Label
}

// --- Marker methods for Instruction interface ---

func (Push) implInstruction()     {}
func (Pop) implInstruction()      {}
func (Mov) implInstruction()      {}
func (MovImm) implInstruction()   {}
func (Xor) implInstruction()      {}
func (Lea) implInstruction()      {}
func (Load) implInstruction()     {}
func (Store) implInstruction()    {}
func (Test) implInstruction()     {}
func (Jcc) implInstruction()      {}
func (Jmp) implInstruction()      {}
func (Call) implInstruction()     {}
func (AddImm) implInstruction()   {}
func (SubImm) implInstruction()   {}
func (Leave) implInstruction()    {}
func (Ret) implInstruction()      {}
func (LabelDef) implInstruction() {}

// --- Function and Program ---

// Function represents an assembly function
type Function struct {
	Name   string
	Global bool
	Code   []Instruction
}

// StringData is a NUL-terminated string in the data section
type StringData struct {
	Label string
	Data  []byte // without the terminating NUL
}

// Program represents a complete assembly program
type Program struct {
	Strings   []StringData
	Externs   []string
	Functions []Function
}

// NewFunction creates a new assembly function
func NewFunction(name string) *Function {
	return &Function{
		Name: name,
		Code: make([]Instruction, 0),
	}
}

// Append adds an instruction to the function
func (f *Function) Append(inst Instruction) {
	f.Code = append(f.Code, inst)
}

// AppendLabel adds a label definition
func (f *Function) AppendLabel(name Label) {
	f.Code = append(f.Code, LabelDef{Name: name})
}
