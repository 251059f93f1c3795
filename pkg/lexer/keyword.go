package lexer

import "github.com/quark-lang/quark/pkg/hash"

const keywordRows = 16

type keyword struct {
	text string
	hash uint32
	typ  TokenType
}

// Keywords is an immutable hash table mapping reserved words to token types.
// Construct it once with NewKeywords and share it between lexers.
type Keywords struct {
	rows [keywordRows][]keyword
}

// DefaultKeywords lists the reserved words of the language
var DefaultKeywords = map[string]TokenType{
	"proc":   TokenProc,
	"pub":    TokenPub,
	"type":   TokenType_,
	"struct": TokenStruct,
	"return": TokenReturn,
	"if":     TokenIf,
}

// NewKeywords builds a keyword table. With no arguments it holds
// DefaultKeywords; otherwise the given words replace them.
func NewKeywords(words ...map[string]TokenType) *Keywords {
	if len(words) == 0 {
		words = []map[string]TokenType{DefaultKeywords}
	}

	kw := &Keywords{}
	for _, set := range words {
		for text, typ := range set {
			h := hash.String(text)
			row := &kw.rows[h%keywordRows]
			*row = append(*row, keyword{text: text, hash: h, typ: typ})
		}
	}
	return kw
}

// Lookup returns the keyword token type for an identifier with the given
// hash, or TokenIdent when it is not reserved.
func (kw *Keywords) Lookup(text string, h uint32) TokenType {
	for _, k := range kw.rows[h%keywordRows] {
		if k.hash == h && len(k.text) == len(text) && k.text == text {
			return k.typ
		}
	}
	return TokenIdent
}
