package ast

// Data is the kind-specific payload of a node. Each node kind has exactly one
// payload type; the set is closed to this package.
type Data interface {
	Kind() Kind
	implData()
}

// Variable is implemented by payloads that occupy a stack slot
type Variable interface {
	Data
	// Slot returns the frame offset and byte size of the variable
	Slot() (offset, size int)
}

// Typed is implemented by payloads that refer to a type node
type Typed interface {
	Data
	TypeRef() (typ NodeID, pointerDepth int)
}

// Root groups children without carrying data: the type table, the procedure
// list and the string table are roots.
type Root struct{}

// BuiltinType is a primitive type with a fixed size in bytes
type BuiltinType struct {
	Size int
}

// TypeAlias names another type, optionally adding pointer levels
type TypeAlias struct {
	Type         NodeID
	PointerDepth int
	Size         int
}

// Struct is a record type. Its members are its children.
type Struct struct {
	Size int
}

// StructMember is a field of a Struct
type StructMember struct {
	Type         NodeID
	PointerDepth int
	Offset       int
	Size         int
}

// Procedure is a declared or defined procedure. Parameters are its first
// ParamCount children; a definition's statements follow.
type Procedure struct {
	ReturnType         NodeID // None when the procedure returns nothing
	ReturnPointerDepth int
	LocalSize          int
	ParamCount         int
}

// Parameter is a procedure parameter. Index is its position in the
// parameter list, counting from 0.
type Parameter struct {
	Type         NodeID
	PointerDepth int
	Size         int
	Offset       int
	Index        int
}

// LocalVariable is a variable declared inside a procedure body. An
// initializer, when present, is its only child.
type LocalVariable struct {
	Type         NodeID
	PointerDepth int
	Size         int
	Offset       int
}

// VariableReference reads a Parameter or LocalVariable
type VariableReference struct {
	Variable NodeID
}

// Assignment stores its only child into Variable
type Assignment struct {
	Variable NodeID
}

// Call invokes Callee with its children as arguments
type Call struct {
	Callee NodeID
}

// Number is an integer literal
type Number struct {
	Value uint64
}

// String is an entry of the string table. Data holds the raw bytes between
// the quotes.
type String struct {
	ID   int
	Data []byte
}

// StringReference is a use of a string literal
type StringReference struct {
	String NodeID
}

// Return leaves the enclosing procedure, with an optional value child
type Return struct{}

// If runs its statements when every condition holds. Its first child is a
// Conditions node; the statements follow.
type If struct{}

// Conditions holds the condition values of an If
type Conditions struct{}

func (*Root) Kind() Kind              { return KindRoot }
func (*BuiltinType) Kind() Kind       { return KindBuiltinType }
func (*TypeAlias) Kind() Kind         { return KindTypeAlias }
func (*Struct) Kind() Kind            { return KindStruct }
func (*StructMember) Kind() Kind      { return KindStructMember }
func (*Procedure) Kind() Kind         { return KindProcedure }
func (*Parameter) Kind() Kind         { return KindParameter }
func (*LocalVariable) Kind() Kind     { return KindLocalVariable }
func (*VariableReference) Kind() Kind { return KindVariableReference }
func (*Assignment) Kind() Kind        { return KindAssignment }
func (*Call) Kind() Kind              { return KindCall }
func (*Number) Kind() Kind            { return KindNumber }
func (*String) Kind() Kind            { return KindString }
func (*StringReference) Kind() Kind   { return KindStringReference }
func (*Return) Kind() Kind            { return KindReturn }
func (*If) Kind() Kind                { return KindIf }
func (*Conditions) Kind() Kind        { return KindConditions }

func (*Root) implData()              {}
func (*BuiltinType) implData()       {}
func (*TypeAlias) implData()         {}
func (*Struct) implData()            {}
func (*StructMember) implData()      {}
func (*Procedure) implData()         {}
func (*Parameter) implData()         {}
func (*LocalVariable) implData()     {}
func (*VariableReference) implData() {}
func (*Assignment) implData()        {}
func (*Call) implData()              {}
func (*Number) implData()            {}
func (*String) implData()            {}
func (*StringReference) implData()   {}
func (*Return) implData()            {}
func (*If) implData()                {}
func (*Conditions) implData()        {}

func (p *Parameter) Slot() (int, int)     { return p.Offset, p.Size }
func (l *LocalVariable) Slot() (int, int) { return l.Offset, l.Size }

func (a *TypeAlias) TypeRef() (NodeID, int)     { return a.Type, a.PointerDepth }
func (m *StructMember) TypeRef() (NodeID, int)  { return m.Type, m.PointerDepth }
func (p *Parameter) TypeRef() (NodeID, int)     { return p.Type, p.PointerDepth }
func (l *LocalVariable) TypeRef() (NodeID, int) { return l.Type, l.PointerDepth }
