// Package highlight maps token categories to visual styles. The mapping
// is a stateless table lookup; themes bind style identifiers to concrete
// colors and are consumed by the external rendering surface.
package highlight

import "github.com/casebook-dev/casebook/internal/lexer"

// StyleID identifies a visual style slot. The slots mirror the classic
// Casebook editor styles.
type StyleID uint8

const (
	// StyleDefault is the plain text style.
	StyleDefault StyleID = iota

	// StyleKeyword styles keywords.
	StyleKeyword

	// StyleString styles string literals.
	StyleString

	// StyleScene styles scene identifiers and section types.
	StyleScene

	// StyleAction styles action and function-name tokens.
	StyleAction

	// StyleCharacter styles character names.
	StyleCharacter

	// StyleComment styles comments.
	StyleComment

	// StyleError styles malformed constructs.
	StyleError

	styleCount
)

// styleNames maps style identifiers to their names.
var styleNames = []string{
	StyleDefault:   "default",
	StyleKeyword:   "keyword",
	StyleString:    "string",
	StyleScene:     "scene",
	StyleAction:    "action",
	StyleCharacter: "character",
	StyleComment:   "comment",
	StyleError:     "error",
}

// String returns the style name.
func (s StyleID) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "unknown"
}

// categoryStyles is the fixed category -> style table. Punctuation shares
// the keyword style, as the classic editor styled it.
var categoryStyles = [...]StyleID{
	lexer.CategoryDefault:     StyleDefault,
	lexer.CategoryKeyword:     StyleKeyword,
	lexer.CategoryString:      StyleString,
	lexer.CategorySceneID:     StyleScene,
	lexer.CategoryAction:      StyleAction,
	lexer.CategoryCharacter:   StyleCharacter,
	lexer.CategoryComment:     StyleComment,
	lexer.CategoryIdentifier:  StyleDefault,
	lexer.CategoryPunctuation: StyleKeyword,
	lexer.CategoryError:       StyleError,
}

// StyleFor returns the style for a token category. Constant time, no
// error cases.
func StyleFor(cat lexer.Category) StyleID {
	if int(cat) < len(categoryStyles) {
		return categoryStyles[cat]
	}
	return StyleDefault
}

// Span is one styled token range handed to the rendering surface.
type Span struct {
	Start int
	End   int
	Style StyleID
}

// Spans converts a token stream into ordered styled ranges.
func Spans(tokens []lexer.Token) []Span {
	spans := make([]Span, 0, len(tokens))
	for _, t := range tokens {
		spans = append(spans, Span{Start: t.Start, End: t.End, Style: StyleFor(t.Category)})
	}
	return spans
}
