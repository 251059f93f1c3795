package lexer

// Character classes. The high byte of a charInfo entry holds the token type
// for single-byte separators and operators.
const (
	charHorzWS uint16 = 1 << iota
	charVertWS
	charDigit
	charXDigit
	charUpper
	charLower
	charOper
	charSingle

	charHex        = charDigit | charXDigit
	charXUpper     = charXDigit | charUpper
	charXLower     = charXDigit | charLower
	charWhitespace = charHorzWS | charVertWS
	charAlpha      = charUpper | charLower
	charAlnum      = charAlpha | charDigit

	charKindShift = 8
)

func single(t TokenType) uint16 {
	return uint16(t)<<charKindShift | charSingle
}

func oper(t TokenType) uint16 {
	return uint16(t)<<charKindShift | charOper
}

// charInfo classifies every byte value. It is built once and never written
// afterwards.
var charInfo = buildCharInfo()

func buildCharInfo() [256]uint16 {
	var info [256]uint16

	info[' '] = charHorzWS
	info['\t'] = charHorzWS
	info['\r'] = charHorzWS
	info['\n'] = charVertWS
	info['\v'] = charVertWS
	info['\f'] = charVertWS

	for c := '0'; c <= '9'; c++ {
		info[c] = charDigit
	}
	for c := 'A'; c <= 'Z'; c++ {
		info[c] = charUpper
	}
	for c := 'a'; c <= 'z'; c++ {
		info[c] = charLower
	}
	for c := 'A'; c <= 'F'; c++ {
		info[c] = charXUpper
	}
	for c := 'a'; c <= 'f'; c++ {
		info[c] = charXLower
	}

	info[','] = single(TokenComma)
	info['.'] = single(TokenDot)
	info[':'] = single(TokenColon)
	info[';'] = single(TokenSemicolon)
	info['('] = single(TokenLParen)
	info[')'] = single(TokenRParen)
	info['{'] = single(TokenLBrace)
	info['}'] = single(TokenRBrace)
	info['['] = single(TokenLBracket)
	info[']'] = single(TokenRBracket)

	info['+'] = oper(TokenPlus)
	info['-'] = oper(TokenMinus)
	info['*'] = oper(TokenStar)
	info['/'] = oper(TokenSlash)
	info['%'] = oper(TokenPercent)
	info['='] = oper(TokenEquals)
	info['!'] = oper(TokenExclamation)
	info['<'] = oper(TokenLess)
	info['>'] = oper(TokenGreater)
	info['^'] = oper(TokenCaret)
	info['&'] = oper(TokenAmpersand)
	info['|'] = oper(TokenPipe)
	info['~'] = oper(TokenTilde)

	return info
}

func classOf(ch byte) uint16 {
	return charInfo[ch]
}

func kindOf(ch byte) TokenType {
	return TokenType(charInfo[ch] >> charKindShift)
}

func isIdentStart(ch byte) bool {
	return classOf(ch)&charAlpha != 0 || ch == '_'
}

func isIdentPart(ch byte) bool {
	return classOf(ch)&charAlnum != 0 || ch == '_'
}

func isDigit(ch byte) bool {
	return classOf(ch)&charDigit != 0
}

func isHexDigit(ch byte) bool {
	return classOf(ch)&charHex != 0
}
