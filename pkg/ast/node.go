// Package ast defines the Quark syntax tree. Every declared or referenced
// entity is a Node stored in a Tree arena and addressed by a NodeID.
package ast

import (
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/hash"
)

// NodeID addresses a node inside a Tree. The zero value is None.
type NodeID int32

// None is the absent node
const None NodeID = 0

// Kind identifies the payload carried by a node
type Kind uint8

const (
	KindInvalid Kind = iota
	KindRoot
	KindBuiltinType
	KindTypeAlias
	KindStruct
	KindStructMember
	KindProcedure
	KindParameter
	KindLocalVariable
	KindVariableReference
	KindAssignment
	KindCall
	KindNumber
	KindString
	KindStringReference
	KindReturn
	KindIf
	KindConditions
)

var kindNames = [...]string{
	KindInvalid:           "Invalid",
	KindRoot:              "Root",
	KindBuiltinType:       "BuiltinType",
	KindTypeAlias:         "TypeAlias",
	KindStruct:            "Struct",
	KindStructMember:      "StructMember",
	KindProcedure:         "Procedure",
	KindParameter:         "Parameter",
	KindLocalVariable:     "LocalVariable",
	KindVariableReference: "VariableReference",
	KindAssignment:        "Assignment",
	KindCall:              "Call",
	KindNumber:            "Number",
	KindString:            "String",
	KindStringReference:   "StringReference",
	KindReturn:            "Return",
	KindIf:                "If",
	KindConditions:        "Conditions",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// Flags is a bitset of node properties
type Flags uint8

const (
	FlagNamed Flags = 1 << iota
	FlagPublic
	FlagDefinition
	// FlagVisited marks a node that a traversal is currently inside of
	FlagVisited
	// FlagCharacter marks a number that was written as a character literal
	FlagCharacter
)

// Name is an identifier taken from the source together with its hash
type Name struct {
	Text string
	Hash uint32
}

// NewName hashes text into a Name
func NewName(text string) Name {
	return Name{Text: text, Hash: hash.String(text)}
}

// Matches reports whether two names have the same hash and length. This is
// the comparison used by symbol lookup.
func (n Name) Matches(other Name) bool {
	return n.Hash == other.Hash && len(n.Text) == len(other.Text)
}

// Equal is Matches plus a byte comparison
func (n Name) Equal(other Name) bool {
	return n.Matches(other) && n.Text == other.Text
}

func (n Name) String() string {
	return n.Text
}

// Node is a single entry of the tree. Links are NodeIDs into the owning Tree;
// Parent and every reference held in Data are non-owning.
type Node struct {
	Kind  Kind
	Flags Flags
	Name  Name
	Pos   diag.Position

	Parent NodeID
	Head   NodeID // first child
	Tail   NodeID // last child
	Prev   NodeID
	Next   NodeID

	Data Data
}

// Has reports whether all of the given flags are set
func (n *Node) Has(f Flags) bool {
	return n.Flags&f == f
}
