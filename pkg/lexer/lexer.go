// Package lexer groups Quark source bytes into tokens on demand.
package lexer

import (
	"math/bits"

	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/hash"
	log "github.com/sirupsen/logrus"
)

// Lexer tokenizes Quark source code. The input is treated as NUL-terminated:
// a zero byte or the end of the buffer both end the stream.
type Lexer struct {
	input     []byte
	pos       int // current position in input
	line      int
	lineStart int // offset of the first byte of the current line

	keywords *Keywords
	reporter diag.Reporter
}

// New creates a new Lexer for the given input. A nil keyword table selects
// the default keywords; a nil reporter discards diagnostics.
func New(input []byte, keywords *Keywords, reporter diag.Reporter) *Lexer {
	log.Debug("lexer: creating lexer stream")
	if keywords == nil {
		keywords = NewKeywords()
	}
	if reporter == nil {
		reporter = diag.NewHandler(nil, false)
	}
	return &Lexer{input: input, line: 1, keywords: keywords, reporter: reporter}
}

// peek returns the byte n positions ahead, or 0 past the end of input
func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) position() diag.Position {
	return diag.Position{Offset: l.pos, Line: l.line, Column: l.pos - l.lineStart + 1}
}

// advance moves past the current byte, keeping line information current
func (l *Lexer) advance() {
	if classOf(l.peek(0))&charVertWS != 0 {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

// Text returns the source span covered by a token
func (l *Lexer) Text(tok Token) string {
	end := min(tok.End(), len(l.input))
	return string(l.input[tok.Pos.Offset:end])
}

// Literal returns the raw contents of a string or character token, without
// its quotes. No escape sequences are interpreted.
func (l *Lexer) Literal(tok Token) string {
	text := l.Text(tok)
	if len(text) < 2 {
		return ""
	}
	return text[1 : len(text)-1]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.position()}
	ch := l.peek(0)

	switch {
	case ch == 0:
		tok.Type = TokenEOF
	case isIdentStart(ch):
		l.readIdentifier(&tok)
	case classOf(ch)&charSingle != 0:
		tok.Type = kindOf(ch)
		tok.Length = 1
		l.advance()
	case classOf(ch)&charOper != 0:
		l.readOperator(&tok)
	case isDigit(ch):
		l.readNumber(&tok)
	case ch == '"':
		l.readQuoted(&tok, '"', TokenString)
	case ch == '\'':
		l.readQuoted(&tok, '\'', TokenCharacter)
	default:
		tok.Type = TokenUnknown
		tok.Length = 1
		l.reporter.Errorf(tok.Pos, "unexpected character %q", ch)
		l.advance()
	}

	return tok
}

func (l *Lexer) skipWhitespace() {
	for classOf(l.peek(0))&charWhitespace != 0 {
		l.advance()
	}
}

func (l *Lexer) readIdentifier(tok *Token) {
	start := l.pos
	for isIdentPart(l.peek(0)) {
		l.advance()
	}

	text := string(l.input[start:l.pos])
	tok.Length = l.pos - start
	tok.Hash = hash.String(text)
	tok.Type = l.keywords.Lookup(text, tok.Hash)
}

func (l *Lexer) readOperator(tok *Token) {
	ch := l.peek(0)
	next := l.peek(1)
	tok.Length = 1

	switch ch {
	case '+':
		tok.Type = TokenPlus
		if next == '+' {
			tok.Type = TokenIncrement
			tok.Length = 2
		} else if next == '=' {
			tok.Flags |= FlagAssignment
			tok.Length = 2
		}
	case '-':
		tok.Type = TokenMinus
		switch next {
		case '>':
			tok.Type = TokenArrow
			tok.Length = 2
		case '-':
			tok.Type = TokenDecrement
			tok.Length = 2
		case '=':
			tok.Flags |= FlagAssignment
			tok.Length = 2
		}
	case '~':
		tok.Type = TokenTilde
	case '=':
		tok.Type = TokenEquals
	default:
		tok.Type = kindOf(ch)
		if next == '=' {
			tok.Flags |= FlagAssignment
			tok.Length = 2
		}
	}

	for i := 0; i < tok.Length; i++ {
		l.advance()
	}
}

func (l *Lexer) readNumber(tok *Token) {
	start := l.pos
	tok.Type = TokenNumber
	overflow := false

	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()
		if !isHexDigit(l.peek(0)) {
			l.reporter.Errorf(tok.Pos, "expected hexadecimal digits after \"0x\"")
		}
		for isHexDigit(l.peek(0)) {
			ch := l.peek(0)
			var digit uint64
			switch {
			case classOf(ch)&charUpper != 0:
				digit = uint64(ch-'A') + 10
			case classOf(ch)&charLower != 0:
				digit = uint64(ch-'a') + 10
			default:
				digit = uint64(ch - '0')
			}
			if tok.Value>>60 != 0 {
				overflow = true
			}
			tok.Value = tok.Value<<4 | digit
			l.advance()
		}
	} else {
		for isDigit(l.peek(0)) {
			hi, lo := bits.Mul64(tok.Value, 10)
			sum, carry := bits.Add64(lo, uint64(l.peek(0)-'0'), 0)
			if hi != 0 || carry != 0 {
				overflow = true
			}
			tok.Value = sum
			l.advance()
		}
	}

	tok.Length = l.pos - start
	if overflow {
		l.reporter.Warningf(tok.Pos, "number literal \"%s\" does not fit in 64 bits", l.Text(*tok))
	}
}

// readQuoted scans a string or character literal. A backslash directly before
// the closing quote keeps the literal open; nothing else is unescaped.
func (l *Lexer) readQuoted(tok *Token, quote byte, typ TokenType) {
	start := l.pos
	l.advance() // opening quote

	for l.peek(0) != quote {
		if l.peek(0) == 0 {
			tok.Type = TokenUnknown
			tok.Length = l.pos - start
			if typ == TokenString {
				l.reporter.Errorf(tok.Pos, "unterminated string literal")
			} else {
				l.reporter.Errorf(tok.Pos, "unterminated character literal")
			}
			return
		}
		if l.peek(0) == '\\' && l.peek(1) == quote {
			l.advance()
		}
		l.advance()
	}
	l.advance() // closing quote

	tok.Type = typ
	tok.Length = l.pos - start
}
