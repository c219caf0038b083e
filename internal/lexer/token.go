// Package lexer tokenizes Casebook source text. Tokenization is a total
// function: every byte sequence, however malformed, produces an ordered
// token stream that exactly partitions the input, with anomalies reported
// as ERROR tokens plus diagnostics rather than failures.
package lexer

// Category is the closed classification assigned to a lexical unit.
// Styling and structural analysis dispatch on it; adding a category is a
// compile-time change.
type Category uint8

const (
	// CategoryDefault covers whitespace, numbers, and anything no rule
	// claims.
	CategoryDefault Category = iota

	// CategoryKeyword covers the fixed, case-sensitive keyword set.
	CategoryKeyword

	// CategoryString covers string literals in all quoting forms.
	CategoryString

	// CategorySceneID covers scene identifiers.
	CategorySceneID

	// CategoryAction covers action/function-name tokens.
	CategoryAction

	// CategoryCharacter covers character names before a colon.
	CategoryCharacter

	// CategoryComment covers line and block comments.
	CategoryComment

	// CategoryIdentifier covers generic identifiers.
	CategoryIdentifier

	// CategoryPunctuation covers operators, brackets, and delimiters.
	CategoryPunctuation

	// CategoryError covers malformed constructs recovered in place.
	CategoryError

	categoryCount
)

// categoryNames maps categories to their display names.
var categoryNames = []string{
	CategoryDefault:     "default",
	CategoryKeyword:     "keyword",
	CategoryString:      "string",
	CategorySceneID:     "scene",
	CategoryAction:      "action",
	CategoryCharacter:   "character",
	CategoryComment:     "comment",
	CategoryIdentifier:  "identifier",
	CategoryPunctuation: "punctuation",
	CategoryError:       "error",
}

// String returns the category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// CategoryFromString maps a category name back to its value.
// Unknown names map to CategoryDefault.
func CategoryFromString(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return CategoryDefault, false
}

// Precedence returns the category's rank in the fixed precedence table:
// keyword > string > scene > action > character > identifier > comment >
// punctuation > default. Higher values win when rule patterns overlap.
func (c Category) Precedence() int {
	switch c {
	case CategoryKeyword:
		return 9
	case CategoryString:
		return 8
	case CategorySceneID:
		return 7
	case CategoryAction:
		return 6
	case CategoryCharacter:
		return 5
	case CategoryIdentifier:
		return 4
	case CategoryComment:
		return 3
	case CategoryPunctuation:
		return 2
	default:
		return 1
	}
}

// IsTrivia reports whether the category carries no structural meaning.
func (c Category) IsTrivia() bool {
	return c == CategoryDefault || c == CategoryComment
}

// Token is one classified lexical unit. Start is the inclusive byte
// offset, End the exclusive one; Text is the raw slice of the input so
// that concatenating a stream's Text fields reconstructs it exactly.
type Token struct {
	Category Category
	Start    int
	End      int
	Text     string

	// Line and Col locate the token start. Line is 0-based; Col counts
	// grapheme clusters from the line start.
	Line int
	Col  int

	// base is the category assigned before context reclassification.
	// Reclassify derives Category from it, so re-running over a spliced
	// stream undoes upgrades whose context an edit removed.
	base Category
}

// Len returns the token length in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Contains reports whether the byte offset falls inside the token.
func (t Token) Contains(offset int) bool {
	return offset >= t.Start && offset < t.End
}

// Is reports whether the token is an exact keyword or punctuation match.
func (t Token) Is(cat Category, text string) bool {
	return t.Category == cat && t.Text == text
}
