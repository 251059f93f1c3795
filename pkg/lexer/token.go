package lexer

import (
	"fmt"

	"github.com/quark-lang/quark/pkg/diag"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenUnknown TokenType = iota
	TokenEOF

	// Literals
	TokenIdent     // main, foo, x
	TokenString    // "hello"
	TokenNumber    // 42, 0x2a
	TokenCharacter // 'a'

	// Separators
	TokenComma     // ,
	TokenDot       // .
	TokenColon     // :
	TokenSemicolon // ;
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]

	// Operators
	TokenArrow       // ->
	TokenIncrement   // ++
	TokenDecrement   // --
	TokenPlus        // +
	TokenMinus       // -
	TokenStar        // *
	TokenSlash       // /
	TokenPercent     // %
	TokenEquals      // =
	TokenExclamation // !
	TokenLess        // <
	TokenGreater     // >
	TokenCaret       // ^
	TokenAmpersand   // &
	TokenPipe        // |
	TokenTilde       // ~

	// Keywords
	TokenProc   // proc
	TokenPub    // pub
	TokenType_  // type
	TokenStruct // struct
	TokenReturn // return
	TokenIf     // if
)

var tokenNames = map[TokenType]string{
	TokenUnknown:     "UNKNOWN",
	TokenEOF:         "EOF",
	TokenIdent:       "IDENT",
	TokenString:      "STRING",
	TokenNumber:      "NUMBER",
	TokenCharacter:   "CHARACTER",
	TokenComma:       ",",
	TokenDot:         ".",
	TokenColon:       ":",
	TokenSemicolon:   ";",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenArrow:       "->",
	TokenIncrement:   "++",
	TokenDecrement:   "--",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenEquals:      "=",
	TokenExclamation: "!",
	TokenLess:        "<",
	TokenGreater:     ">",
	TokenCaret:       "^",
	TokenAmpersand:   "&",
	TokenPipe:        "|",
	TokenTilde:       "~",
	TokenProc:        "proc",
	TokenPub:         "pub",
	TokenType_:       "type",
	TokenStruct:      "struct",
	TokenReturn:      "return",
	TokenIf:          "if",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Quoted returns the token type name in the form used by diagnostics
func (t TokenType) Quoted() string {
	return fmt.Sprintf("\"%s\"", t)
}

// TokenFlags carries per-token modifiers
type TokenFlags uint8

const (
	// FlagAssignment marks an operator followed by "=", e.g. "+=" is
	// TokenPlus with FlagAssignment set.
	FlagAssignment TokenFlags = 1 << iota
)

// Token represents a lexical token. Identifiers carry Hash, numbers and
// characters carry Value.
type Token struct {
	Type   TokenType
	Flags  TokenFlags
	Pos    diag.Position
	Length int
	Value  uint64
	Hash   uint32
}

// Is reports whether the token has the given type
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// IsAssignment reports whether an operator token carried a trailing "="
func (t Token) IsAssignment() bool {
	return t.Flags&FlagAssignment != 0
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Pos.Offset + t.Length
}
