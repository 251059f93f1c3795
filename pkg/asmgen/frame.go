package asmgen

import "github.com/quark-lang/quark/pkg/asm"

const (
	stackAlignment = 16 // System V requires rsp % 16 == 0 at every call
	pointerSize    = 8
	tempSize       = pointerSize
)

// x86-64 frame layout (called procedure's view):
//
//	+---------------------------+
//	| stack arguments 7..n      |  +16 from rbp upward
//	| return address            |  +8 from rbp
//	| saved rbp                 |
//	+---------------------------+  <- rbp points here (after prologue)
//	| parameters and locals     |  -(offset+size) from rbp
//	| call temporaries          |
//	+---------------------------+  <- rsp (16-byte aligned)
//
// Parameters are spilled into their slots by the prologue, so the body
// addresses them exactly like locals.

// Frame tracks the stack frame of the procedure being generated
type Frame struct {
	LocalSize int // bytes of parameters and locals
	TempBase  int // offset of the first temporary slot

	tempsInUse int
	maxTemps   int
}

func newFrame(localSize int) *Frame {
	return &Frame{
		LocalSize: localSize,
		TempBase:  alignUp(localSize, tempSize),
	}
}

// Slot returns the address of a variable at offset with size bytes
func (f *Frame) Slot(offset, size int) asm.Mem {
	return asm.Mem{Base: asm.RBP, Disp: -(offset + size)}
}

// allocTemp reserves a temporary slot and returns its index. Temporaries are
// released in reverse order of allocation.
func (f *Frame) allocTemp() int {
	k := f.tempsInUse
	f.tempsInUse++
	if f.tempsInUse > f.maxTemps {
		f.maxTemps = f.tempsInUse
	}
	return k
}

func (f *Frame) releaseTemps(n int) {
	f.tempsInUse -= n
}

// TempSlot returns the address of temporary k
func (f *Frame) TempSlot(k int) asm.Mem {
	return f.Slot(f.TempBase+k*tempSize, tempSize)
}

// Size returns the number of bytes the prologue reserves below rbp
func (f *Frame) Size() int {
	return alignUp(f.TempBase+f.maxTemps*tempSize, stackAlignment)
}

// incomingArg returns the caller-pushed location of parameter index, which
// must be 6 or more.
func incomingArg(index int) asm.Mem {
	return asm.Mem{Base: asm.RBP, Disp: 2*pointerSize + (index-len(asm.ArgRegs))*pointerSize}
}

// alignUp rounds n up to a multiple of align
func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
