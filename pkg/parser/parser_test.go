package parser

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/quark-lang/quark/pkg/ast"
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/types"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name       string `yaml:"name"`
	Input      string `yaml:"input"`
	Procedures string `yaml:"procedures"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func parse(t *testing.T, input string, opts ...Option) (*Program, *diag.Handler, error) {
	t.Helper()
	h := diag.NewHandler(nil, false)
	opts = append([]Option{WithReporter(h)}, opts...)
	prog, err := New([]byte(input), opts...).Parse()
	return prog, h, err
}

func mustParse(t *testing.T, input string) *Program {
	t.Helper()
	prog, h, err := parse(t, input)
	if err != nil {
		t.Fatalf("parse failed: %v\n%v", err, h.Diagnostics)
	}
	return prog
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			prog := mustParse(t, tc.Input)

			var buf bytes.Buffer
			ast.NewPrinter(&buf, prog.Tree).PrintSection("procedures", prog.Procedures)
			if got := buf.String(); got != tc.Procedures {
				t.Errorf("procedures mismatch\nexpected:\n%s\ngot:\n%s", tc.Procedures, got)
			}
		})
	}
}

func TestLocalLayout(t *testing.T) {
	prog := mustParse(t, "proc f() { uint a; char b; uint c; }")
	f := prog.FindProcedure("f")
	if f == ast.None {
		t.Fatal("procedure f not found")
	}

	wantOffsets := []int{0, 8, 9}
	var offsets []int
	for _, id := range prog.Tree.Children(f) {
		if local, ok := ast.As[*ast.LocalVariable](prog.Tree, id); ok {
			offsets = append(offsets, local.Offset)
		}
	}
	if len(offsets) != len(wantOffsets) {
		t.Fatalf("expected %d locals, got %d", len(wantOffsets), len(offsets))
	}
	for i := range wantOffsets {
		if offsets[i] != wantOffsets[i] {
			t.Errorf("local %d: expected offset %d, got %d", i, wantOffsets[i], offsets[i])
		}
	}

	proc, _ := ast.As[*ast.Procedure](prog.Tree, f)
	if proc.LocalSize != 17 {
		t.Errorf("expected LocalSize 17, got %d", proc.LocalSize)
	}
}

func TestBlockLocalsUseProcedureSlots(t *testing.T) {
	prog := mustParse(t, `proc f(uint p) {
		if (p) { uint a; }
		if (p) { uint a; char b; }
		uint c;
	}`)

	proc, _ := ast.As[*ast.Procedure](prog.Tree, prog.FindProcedure("f"))
	// p, a, a, b and c each get their own slot
	if proc.LocalSize != 8+8+8+1+8 {
		t.Errorf("expected LocalSize 33, got %d", proc.LocalSize)
	}
}

func TestScoping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{
			name:  "parameter visible in nested blocks",
			input: "proc f(uint p) { if (p) { if (p) { p = 2; } } }",
		},
		{
			name:  "block local visible in its block",
			input: "proc f(uint p) { if (p) { uint q = p; q = 3; } }",
		},
		{
			name:  "block local hidden from sibling statements",
			input: "proc f(uint p) { if (p) { uint inner = p; } inner = 1; }",
			err:   `undeclared identifier "inner"`,
		},
		{
			name:  "local used before declaration",
			input: "proc f() { x = 1; uint x; }",
			err:   `undeclared identifier "x"`,
		},
		{
			name:  "procedure declared later is not visible",
			input: "proc f() { g(); }\nproc g() {}",
			err:   `undeclared identifier "g"`,
		},
		{
			name:  "same name in sibling blocks",
			input: "proc f(uint p) { if (p) { uint t; } if (p) { uint t; } }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h, err := parse(t, tt.input)
			if tt.err == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v\n%v", err, h.Diagnostics)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.err)
			}
			if !strings.Contains(h.Errors()[0].Message, tt.err) {
				t.Errorf("expected error containing %q, got %q", tt.err, h.Errors()[0].Message)
			}
		})
	}
}

func TestRedeclaration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"duplicate parameter", "proc f(uint a, uint a) {}", `redeclaration of "a"`},
		{"local shadows parameter", "proc f(uint a) { uint a; }", `redeclaration of "a"`},
		{"block local shadows parameter", "proc f(uint a) { if (a) { char a; } }", `redeclaration of "a"`},
		{"duplicate local", "proc f() { uint x; char x; }", `redeclaration of "x"`},
		{"local shadows procedure", "proc g() {}\nproc f() { uint g; }", `redeclaration of "g"`},
		{"parameter shadows its procedure", "proc f(uint f) {}", `redeclaration of "f"`},
		{"local shadows its procedure", "proc f() { uint f; }", `redeclaration of "f"`},
		{"parameter named like a type", "proc f(uint char) {}", `"char" is already declared as a type`},
		{"duplicate procedure", "proc f();\nproc f() {}", `redeclaration of "f"`},
		{"procedure named like a type", "proc uint() {}", `"uint" is already declared as a type`},
		{"duplicate type", "type a: uint;\ntype a: char;", `"a" is already declared as a type`},
		{"type named like a procedure", "proc a();\ntype a: uint;", `redeclaration of "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h, err := parse(t, tt.input)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if h.ErrorCount() != 1 {
				t.Fatalf("expected 1 error, got %d: %v", h.ErrorCount(), h.Diagnostics)
			}
			if msg := h.Errors()[0].Message; !strings.Contains(msg, tt.err) {
				t.Errorf("expected error containing %q, got %q", tt.err, msg)
			}
		})
	}
}

func TestDuplicateParameterRollsBack(t *testing.T) {
	prog, h, err := parse(t, "proc f(uint a, uint a) {}")
	if err == nil {
		t.Fatal("expected error")
	}

	d := h.Errors()[0]
	if !strings.Contains(d.Message, `"a"`) {
		t.Errorf("expected error mentioning a, got %q", d.Message)
	}
	if d.Pos.Line != 1 || d.Pos.Column != 21 {
		t.Errorf("expected error at 1:21, got %s", d.Pos)
	}
	if prog.FindProcedure("f") != ast.None {
		t.Error("procedure f should have been rolled back")
	}
	// type root, two builtins, procedure root and string root
	if prog.Tree.Len() != 5 {
		t.Errorf("expected 5 live nodes after rollback, got %d", prog.Tree.Len())
	}
}

func TestRollbackDiscardsStrings(t *testing.T) {
	prog, h, err := parse(t, `proc print(char* s);
proc f() { print("a", "b"); }
proc g() { print("c"); }`)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if h.ErrorCount() != 1 {
		t.Fatalf("expected 1 error, got %d: %v", h.ErrorCount(), h.Diagnostics)
	}
	if prog.FindProcedure("f") != ast.None {
		t.Error("procedure f should have been rolled back")
	}

	strs := prog.StringList()
	if len(strs) != 1 {
		t.Fatalf("expected 1 string, got %d", len(strs))
	}
	s, _ := ast.As[*ast.String](prog.Tree, strs[0])
	if s.ID != 0 || string(s.Data) != "c" {
		t.Errorf("expected string 0 \"c\", got %d %q", s.ID, s.Data)
	}

	// nothing of f may survive
	clean := mustParse(t, "proc print(char* s);\nproc g() { print(\"c\"); }")
	if prog.Tree.Len() != clean.Tree.Len() {
		t.Errorf("expected %d live nodes after rollback, got %d", clean.Tree.Len(), prog.Tree.Len())
	}
}

func TestExternHasNoFrame(t *testing.T) {
	prog := mustParse(t, "proc e(uint a, char b);")

	data, _ := ast.As[*ast.Procedure](prog.Tree, prog.FindProcedure("e"))
	if data.ParamCount != 2 {
		t.Errorf("expected 2 parameters, got %d", data.ParamCount)
	}
	if data.LocalSize != 0 {
		t.Errorf("expected no local size for a declaration, got %d", data.LocalSize)
	}
}

func TestUnknownCharacterReportedOnce(t *testing.T) {
	prog, h, err := parse(t, "proc a() {}\n@\nproc b() { uint x = 1 $; }")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if h.ErrorCount() != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", h.ErrorCount(), h.Diagnostics)
	}
	for _, d := range h.Errors() {
		if !strings.Contains(d.Message, "unexpected character") {
			t.Errorf("expected only lexer errors, got %q", d.Message)
		}
	}
	for _, name := range []string{"a", "b"} {
		if prog.FindProcedure(name) == ast.None {
			t.Errorf("procedure %s should be declared", name)
		}
	}
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"missing return value", "proc f() -> uint { return; }", `procedure "f" must return a value`},
		{"unexpected return value", "proc f() { return 1; }", `procedure "f" does not have a return type`},
		{"too few arguments", "proc g(uint a);\nproc f() { g(); }", `procedure "g" expects 1 argument(s), got 0`},
		{"too many arguments", "proc g();\nproc f() { g(1, 2); }", `procedure "g" expects 0 argument(s), got 2`},
		{"call without value", "proc g();\nproc f() -> uint { return g(); }", `procedure "g" does not return a value`},
		{"undeclared statement", "proc f() { nope = 1; }", `undeclared identifier "nope"`},
		{"undeclared value", "proc f() -> uint { return nope; }", `undeclared identifier "nope"`},
		{"undeclared type", "proc f(word w) {}", `undeclared type "word"`},
		{"procedure as type", "proc g();\nproc f(g x) {}", `"g" is not a type`},
		{"type as value", "proc f() -> uint { return uint; }", `type "uint" cannot be used as a value`},
		{"compound assignment", "proc f(uint a) { a += 1; }", `compound assignment "+=" is not supported`},
		{"assignment to global", "proc g();\nproc f() { g = 1; }", `cannot assign to global "g"`},
		{"empty condition", "proc f() { if () {} }", "expected condition"},
		{"struct contains itself", "type s: struct { v: s; };", `struct "s" contains itself`},
		{"duplicate member", "type s: struct { v: uint; v: char; };", `member "v" already declared`},
		{"invalid character", "proc f(char c) { c = 'ab'; }", "invalid character literal"},
		{"struct assignment", "type s: struct { v: uint; };\nproc f(s x, uint y) { x = y; }", `cannot assign to "x" of struct type`},
		{"struct initializer", "type s: struct { v: uint; };\nproc f(uint y) { s x = y; }", `cannot initialize "x" of struct type`},
		{"unexpected top level", "return;", `expected "proc" or "type", got "return"`},
		{"missing semicolon", "proc f(uint a) { a = 1 }", `expected ";" after assignment, got "}"`},
		{"unterminated body", "proc f() {", `expected "}" before end of file`},
		{"bad statement", "proc f() { 42; }", `expected statement, got "42"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h, err := parse(t, tt.input)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if msg := h.Errors()[0].Message; !strings.Contains(msg, tt.err) {
				t.Errorf("expected error containing %q, got %q", tt.err, msg)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	input := `proc a() { bogus; }
proc b() {}
garbage
proc c() {}
type t: nothing;
type u: char;
`
	prog, h, err := parse(t, input)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "3 error(s)") {
		t.Errorf("expected the error count in %q", err)
	}
	if h.ErrorCount() != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", h.ErrorCount(), h.Diagnostics)
	}

	tests := []struct {
		name    string
		present bool
	}{
		{"a", false},
		{"b", true},
		{"c", true},
	}
	for _, tt := range tests {
		if got := prog.FindProcedure(tt.name) != ast.None; got != tt.present {
			t.Errorf("procedure %s: expected present=%v", tt.name, tt.present)
		}
	}
	if prog.Types.Find(ast.NewName("t")) != ast.None {
		t.Error("failed type t should not be declared")
	}
	if prog.Types.Find(ast.NewName("u")) == ast.None {
		t.Error("type u should be declared")
	}
}

func TestWarnings(t *testing.T) {
	input := "proc g(uint a, uint b,);\nproc f() { g(1, 2,); if (1,) {} }"
	_, h, err := parse(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%v", err, h.Diagnostics)
	}

	want := []string{
		`trailing "," in parameter list`,
		`trailing "," in argument list`,
		`trailing "," in condition list`,
	}
	warnings := h.Warnings()
	if len(warnings) != len(want) {
		t.Fatalf("expected %d warnings, got %d: %v", len(want), len(warnings), warnings)
	}
	for i, w := range want {
		if warnings[i].Message != w {
			t.Errorf("warning %d: expected %q, got %q", i, w, warnings[i].Message)
		}
	}
}

func TestStringTable(t *testing.T) {
	prog := mustParse(t, `proc print(char* s);
proc f() { print("first"); print("say \"hi\""); print("first"); }`)

	strs := prog.StringList()
	want := []string{"first", `say \"hi\"`, "first"}
	if len(strs) != len(want) {
		t.Fatalf("expected %d strings, got %d", len(want), len(strs))
	}
	for i, id := range strs {
		s, _ := ast.As[*ast.String](prog.Tree, id)
		if s.ID != i {
			t.Errorf("string %d: expected ID %d, got %d", i, i, s.ID)
		}
		if string(s.Data) != want[i] {
			t.Errorf("string %d: expected %q, got %q", i, want[i], s.Data)
		}
	}
}

func TestCharacterLiterals(t *testing.T) {
	tests := []struct {
		lit  string
		want uint64
	}{
		{`'a'`, 'a'},
		{`'0'`, '0'},
		{`'\''`, '\''},
		{`'\n'`, 'n'},
	}

	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			prog := mustParse(t, "proc f() -> char { return "+tt.lit+"; }")
			ret := prog.Tree.Node(prog.FindProcedure("f")).Head
			num := prog.Tree.Node(ret).Head
			n, ok := ast.As[*ast.Number](prog.Tree, num)
			if !ok {
				t.Fatalf("expected a number, got %s", prog.Tree.Kind(num))
			}
			if n.Value != tt.want {
				t.Errorf("expected %d, got %d", tt.want, n.Value)
			}
			if !prog.Tree.Node(num).Has(ast.FlagCharacter) {
				t.Error("expected the character flag")
			}
		})
	}
}

func TestTypeDeclarations(t *testing.T) {
	prog := mustParse(t, `
type str: char*;
pub type list: struct {
	value: uint;
	tag: char;
	name: str;
	next: list*;
};
type alias: list;
`)

	tests := []struct {
		name   string
		size   int
		public bool
	}{
		{"str", 8, false},
		{"list", 25, true},
		{"alias", 25, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := prog.Types.Find(ast.NewName(tt.name))
			if id == ast.None {
				t.Fatalf("type %s not declared", tt.name)
			}
			if got := prog.Types.SizeOf(id, 0); got != tt.size {
				t.Errorf("size: expected %d, got %d", tt.size, got)
			}
			if got := prog.Tree.Node(id).Has(ast.FlagPublic); got != tt.public {
				t.Errorf("public: expected %v, got %v", tt.public, got)
			}
		})
	}

	list := prog.Types.Find(ast.NewName("list"))
	if !prog.Types.IsStruct(prog.Types.Find(ast.NewName("alias")), 0) {
		t.Error("alias of a struct should be a struct")
	}
	if prog.Tree.ChildCount(list) != 4 {
		t.Errorf("expected 4 members, got %d", prog.Tree.ChildCount(list))
	}
}

func TestPublicProcedure(t *testing.T) {
	prog := mustParse(t, "pub proc main() {}\nproc helper();")

	main := prog.Tree.Node(prog.FindProcedure("main"))
	if !main.Has(ast.FlagPublic | ast.FlagDefinition) {
		t.Error("main should be public and defined")
	}
	helper := prog.Tree.Node(prog.FindProcedure("helper"))
	if helper.Has(ast.FlagPublic) || helper.Has(ast.FlagDefinition) {
		t.Error("helper should be a private declaration")
	}
}

func TestWordSizeOption(t *testing.T) {
	prog, _, err := parse(t, "proc f(uint a, char* b, char c) {}", WithWordSize(4))
	if err != nil {
		t.Fatal(err)
	}
	proc, _ := ast.As[*ast.Procedure](prog.Tree, prog.FindProcedure("f"))
	if proc.LocalSize != 4+4+1 {
		t.Errorf("expected LocalSize 9, got %d", proc.LocalSize)
	}
}

func TestBuiltinsOption(t *testing.T) {
	builtins := append(types.DefaultBuiltins(8), types.Builtin{Name: "u16", Size: 2})
	prog, _, err := parse(t, "proc f(u16 a, uint b) {}", WithBuiltins(builtins))
	if err != nil {
		t.Fatal(err)
	}
	proc, _ := ast.As[*ast.Procedure](prog.Tree, prog.FindProcedure("f"))
	if proc.LocalSize != 10 {
		t.Errorf("expected LocalSize 10, got %d", proc.LocalSize)
	}
}

func TestProgramPrint(t *testing.T) {
	prog := mustParse(t, "type s: char*;\nproc p(s x);\nproc f() { p(\"x\"); }")

	var buf bytes.Buffer
	prog.Print(&buf)
	out := buf.String()

	for _, want := range []string{
		"types:\n",
		"  builtin uint size=8\n",
		"  type s = char* size=8\n",
		"strings:\n  string 0 \"x\"\n",
		"procedures:\n  proc p extern\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\nGot:\n%s", want, out)
		}
	}
}
