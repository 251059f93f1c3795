package asm

import "testing"

func TestCondCodeString(t *testing.T) {
	tests := []struct {
		cond CondCode
		want string
	}{
		{CondZ, "z"},
		{CondNZ, "nz"},
		{CondCode(100), "?"}, // invalid
	}
	for _, tt := range tests {
		if got := tt.cond.String(); got != tt.want {
			t.Errorf("CondCode(%d).String() = %q, want %q", tt.cond, got, tt.want)
		}
	}
}

func TestRegisterNames(t *testing.T) {
	tests := []struct {
		reg  Reg
		size int
		want string
	}{
		{RAX, 8, "rax"},
		{RAX, 4, "eax"},
		{RAX, 2, "ax"},
		{RAX, 1, "al"},
		{RDI, 1, "dil"},
		{RSI, 4, "esi"},
		{R8, 8, "r8"},
		{R8, 4, "r8d"},
		{R9, 2, "r9w"},
		{R15, 1, "r15b"},
		{RBP, 8, "rbp"},
		{Reg(-1), 8, "?"},
		{Reg(99), 8, "?"},
	}
	for _, tt := range tests {
		if got := tt.reg.Name(tt.size); got != tt.want {
			t.Errorf("Reg(%d).Name(%d) = %q, want %q", int(tt.reg), tt.size, got, tt.want)
		}
	}
}

func TestArgRegs(t *testing.T) {
	want := []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
	if len(ArgRegs) != len(want) {
		t.Fatalf("len(ArgRegs) = %d, want %d", len(ArgRegs), len(want))
	}
	for i, r := range ArgRegs {
		if r.String() != want[i] {
			t.Errorf("ArgRegs[%d] = %s, want %s", i, r, want[i])
		}
	}
}

func TestInstructionInterface(t *testing.T) {
	// Verify all instruction types implement the Instruction interface
	var _ Instruction = Push{}
	var _ Instruction = Pop{}
	var _ Instruction = Mov{}
	var _ Instruction = MovImm{}
	var _ Instruction = Xor{}
	var _ Instruction = Lea{}
	var _ Instruction = Load{}
	var _ Instruction = Store{}
	var _ Instruction = Test{}
	var _ Instruction = Jcc{}
	var _ Instruction = Jmp{}
	var _ Instruction = Call{}
	var _ Instruction = AddImm{}
	var _ Instruction = SubImm{}
	var _ Instruction = Leave{}
	var _ Instruction = Ret{}
	var _ Instruction = LabelDef{}
}

func TestNewFunction(t *testing.T) {
	fn := NewFunction("main")
	if fn.Name != "main" {
		t.Errorf("Name = %q, want %q", fn.Name, "main")
	}
	if fn.Global {
		t.Error("new function should not be global")
	}
	if fn.Code == nil || len(fn.Code) != 0 {
		t.Errorf("Code = %v, want empty slice", fn.Code)
	}
}

func TestFunctionAppend(t *testing.T) {
	fn := NewFunction("f")
	fn.Append(Push{Src: RBP})
	fn.Append(Mov{Dst: RBP, Src: RSP})

	if len(fn.Code) != 2 {
		t.Fatalf("len(Code) = %d, want 2", len(fn.Code))
	}
	if _, ok := fn.Code[0].(Push); !ok {
		t.Errorf("Code[0] = %T, want Push", fn.Code[0])
	}
	if mov, ok := fn.Code[1].(Mov); !ok || mov.Dst != RBP || mov.Src != RSP {
		t.Errorf("Code[1] = %#v, want Mov rbp, rsp", fn.Code[1])
	}
}

func TestFunctionAppendLabel(t *testing.T) {
	fn := NewFunction("f")
	fn.AppendLabel(".L1")

	if len(fn.Code) != 1 {
		t.Fatalf("len(Code) = %d, want 1", len(fn.Code))
	}
	lbl, ok := fn.Code[0].(LabelDef)
	if !ok {
		t.Fatalf("Code[0] = %T, want LabelDef", fn.Code[0])
	}
	if lbl.Name != ".L1" {
		t.Errorf("Name = %q, want %q", lbl.Name, ".L1")
	}
}
