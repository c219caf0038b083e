package lexer

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// wordRules is a minimal rule table for exercising the scanner without a
// compiled grammar: a few keywords, single-rune punctuation, identifiers.
type wordRules struct{}

var testKeywords = []string{"SCENE", "FUNCTION", "WHILE", "IF", "ELSE"}

func (wordRules) MatchAt(src string, pos int) (int, Category, bool) {
	rest := src[pos:]
	for _, kw := range testKeywords {
		if !strings.HasPrefix(rest, kw) {
			continue
		}
		if end := pos + len(kw); end < len(src) && isWordChar(src[end]) {
			continue
		}
		return len(kw), CategoryKeyword, true
	}
	switch rest[0] {
	case '{', '}', '(', ')', ':', ',', '=':
		return 1, CategoryPunctuation, true
	}
	if isLetter(rest[0]) {
		n := 1
		for n < len(rest) && isWordChar(rest[n]) {
			n++
		}
		return n, CategoryIdentifier, true
	}
	return 0, CategoryDefault, false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isWordChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

func lex(t *testing.T, src string) Result {
	t.Helper()
	res := Tokenize(src, wordRules{}, Initial)
	Finalize(&res)
	return res
}

// cats extracts the non-trivia category/text pairs of a stream.
func cats(tokens []Token) []string {
	var out []string
	for _, tok := range tokens {
		if tok.Category.IsTrivia() {
			continue
		}
		out = append(out, tok.Category.String()+" "+tok.Text)
	}
	return out
}

func wantTokens(t *testing.T, got []Token, want []string) {
	t.Helper()
	g := cats(got)
	if len(g) != len(want) {
		t.Fatalf("token stream = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, g[i], want[i])
		}
	}
}

func TestTokenizeBasic(t *testing.T) {
	res := lex(t, "SCENE intro {")
	wantTokens(t, res.Tokens, []string{
		"keyword SCENE",
		"scene intro",
		"punctuation {",
	})
	if !res.Exit.IsNormal() {
		t.Errorf("Exit = %+v, want normal", res.Exit)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", res.Diagnostics)
	}
}

func TestTokenizePartition(t *testing.T) {
	inputs := []string{
		"",
		"SCENE intro { WHILE (x) { y } }",
		"a\r\nb\rc\td  e",
		`"one" 'two' “three”`,
		"'''multi\nline''' tail",
		"/* block\ncomment */ // line\nend",
		"\"unclosed\nnext",
		"\"a\\\nb\" c",
		"漢字 mixed ascii",
		"'''never closed",
	}
	for _, src := range inputs {
		res := lex(t, src)
		checkPartition(t, src, res)
	}
}

// failer is the overlap of *testing.T and *rapid.T that checkPartition
// needs.
type failer interface {
	Fatalf(format string, args ...any)
}

func checkPartition(t failer, src string, res Result) {
	var sb strings.Builder
	pos := 0
	for i, tok := range res.Tokens {
		if tok.Start != pos {
			t.Fatalf("%q: token %d starts at %d, want %d", src, i, tok.Start, pos)
		}
		if tok.End <= tok.Start {
			t.Fatalf("%q: token %d is empty: %+v", src, i, tok)
		}
		sb.WriteString(tok.Text)
		pos = tok.End
	}
	if sb.String() != src {
		t.Fatalf("concatenated tokens = %q, want %q", sb.String(), src)
	}
	if want := 1 + strings.Count(src, "\n"); len(res.LineStates) != want {
		t.Fatalf("%q: %d line states, want %d", src, len(res.LineStates), want)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	// The curly-quoted string is 8 bytes but 4 grapheme clusters wide.
	res := lex(t, "ab\n“xy”z")
	find := func(text string) Token {
		for _, tok := range res.Tokens {
			if tok.Text == text {
				return tok
			}
		}
		t.Fatalf("token %q not found", text)
		return Token{}
	}

	if tok := find("ab"); tok.Line != 0 || tok.Col != 0 {
		t.Errorf("ab at %d:%d, want 0:0", tok.Line, tok.Col)
	}
	if tok := find("“xy”"); tok.Line != 1 || tok.Col != 0 || tok.Category != CategoryString {
		t.Errorf("“xy” = %+v, want line 1 col 0 string", tok)
	}
	if tok := find("z"); tok.Line != 1 || tok.Col != 4 {
		t.Errorf("z at %d:%d, want 1:4", tok.Line, tok.Col)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"double", `x "hi" y`, []string{"identifier x", `string "hi"`, "identifier y"}},
		{"single", `'hi'`, []string{"string 'hi'"}},
		{"escaped quote", `"a\"b"`, []string{`string "a\"b"`}},
		{"escaped backslash", `"a\\" z`, []string{`string "a\\"`, "identifier z"}},
		{"curly", "“hi”", []string{"string “hi”"}},
		{"curly reversed", "”hi“", []string{"string ”hi“"}},
		{"curly close pair", "”hi”", []string{"string ”hi”"}},
		{"adjacent", `"a""b"`, []string{`string "a"`, `string "b"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := lex(t, tt.src)
			wantTokens(t, res.Tokens, tt.want)
			if len(res.Diagnostics) != 0 {
				t.Errorf("Diagnostics = %v, want none", res.Diagnostics)
			}
		})
	}
}

func TestUnterminatedStringAtNewline(t *testing.T) {
	res := lex(t, "\"abc\nnext")
	wantTokens(t, res.Tokens, []string{
		`error "abc`,
		"identifier next",
	})
	if len(res.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %v, want one", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Start != 0 || d.Message != "unterminated string literal" {
		t.Errorf("diagnostic = %v", d)
	}
	if !res.Exit.IsNormal() {
		t.Errorf("Exit = %+v, want normal", res.Exit)
	}
}

func TestBackslashBeforeNewlineEndsString(t *testing.T) {
	// A backslash cannot escape the line break: the literal still stops at
	// the newline, so line 2 begins in the normal state.
	src := "\"a\\\nb\""
	res := lex(t, src)
	checkPartition(t, src, res)
	wantTokens(t, res.Tokens, []string{
		`error "a\`,
		"identifier b",
		`error "`,
	})
	if got := res.Tokens[0].End; got != 3 {
		t.Errorf("first token ends at %d, want 3 (before the newline)", got)
	}
	if len(res.LineStates) != 2 || !res.LineStates[1].IsNormal() {
		t.Errorf("LineStates = %v, want two normal entries", res.LineStates)
	}
	if len(res.Diagnostics) != 2 {
		t.Errorf("Diagnostics = %v, want two", res.Diagnostics)
	}
}

func TestTripleString(t *testing.T) {
	res := lex(t, "a\n'''b\nc''' d")
	wantTokens(t, res.Tokens, []string{
		"identifier a",
		"string '''b\nc'''",
		"identifier d",
	})

	// Line 2 begins inside the string opened at offset 2.
	if len(res.LineStates) != 3 {
		t.Fatalf("LineStates = %v", res.LineStates)
	}
	st := res.LineStates[2]
	if st.Mode != ModeTripleString || st.Quote != '\'' || st.Open != 2 {
		t.Errorf("LineStates[2] = %+v", st)
	}
	if !res.LineStates[1].IsNormal() {
		t.Errorf("LineStates[1] = %+v, want normal", res.LineStates[1])
	}
}

func TestUnterminatedTripleString(t *testing.T) {
	res := Tokenize("'''abc", wordRules{}, Initial)
	if res.Exit.Mode != ModeTripleString || res.Exit.Quote != '\'' {
		t.Fatalf("Exit = %+v, want open triple string", res.Exit)
	}

	Finalize(&res)
	last := res.Tokens[len(res.Tokens)-1]
	if last.Category != CategoryError {
		t.Errorf("last token = %+v, want error", last)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "unterminated string literal" {
		t.Errorf("Diagnostics = %v", res.Diagnostics)
	}
	// Finalize keeps the exit state so a resumed pass can thread it.
	if res.Exit.IsNormal() {
		t.Error("Finalize cleared the exit state")
	}
}

func TestComments(t *testing.T) {
	res := lex(t, "// hi\nx /* a\nb */ y")
	wantTokens(t, res.Tokens, []string{
		"identifier x",
		"identifier y",
	})
	var comments []string
	for _, tok := range res.Tokens {
		if tok.Category == CategoryComment {
			comments = append(comments, tok.Text)
		}
	}
	if len(comments) != 2 || comments[0] != "// hi" || comments[1] != "/* a\nb */" {
		t.Errorf("comments = %q", comments)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	res := Tokenize("x /* open", wordRules{}, Initial)
	if res.Exit.Mode != ModeBlockComment {
		t.Fatalf("Exit = %+v, want open block comment", res.Exit)
	}
	Finalize(&res)
	if got := res.Diagnostics[0].Message; got != "unterminated block comment" {
		t.Errorf("diagnostic = %q", got)
	}
}

func TestResumeFromState(t *testing.T) {
	full := lex(t, "'''a\nb''' x")

	head := Tokenize("'''a\n", wordRules{}, Initial)
	if head.Exit.IsNormal() {
		t.Fatal("head pass closed the string")
	}
	tail := Tokenize("b''' x", wordRules{}, head.Exit)
	if !tail.Exit.IsNormal() {
		t.Fatalf("tail Exit = %+v, want normal", tail.Exit)
	}

	// The resumed halves classify every byte the same way the full pass did.
	var headStr, tailStr int
	for _, tok := range head.Tokens {
		if tok.Category == CategoryString {
			headStr += tok.Len()
		}
	}
	for _, tok := range tail.Tokens {
		if tok.Category == CategoryString {
			tailStr += tok.Len()
		}
	}
	var fullStr int
	for _, tok := range full.Tokens {
		if tok.Category == CategoryString {
			fullStr += tok.Len()
		}
	}
	if headStr+tailStr != fullStr {
		t.Errorf("resumed string coverage = %d+%d, full = %d", headStr, tailStr, fullStr)
	}
}

func TestStateEquivalent(t *testing.T) {
	a := State{Mode: ModeTripleString, Quote: '"', Open: 10}
	b := State{Mode: ModeTripleString, Quote: '"', Open: 99}
	c := State{Mode: ModeTripleString, Quote: '\'', Open: 10}
	if !a.Equivalent(b) {
		t.Error("states differing only in Open should be equivalent")
	}
	if a.Equivalent(c) {
		t.Error("states with different quotes should not be equivalent")
	}
	if !Initial.Equivalent(State{}) {
		t.Error("Initial not equivalent to zero state")
	}
}

func TestReclassifyCharacter(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"BOB: x", []string{"character BOB", "punctuation :", "identifier x"}},
		{"BOB : x", []string{"identifier BOB", "punctuation :", "identifier x"}},
		{"bob: x", []string{"identifier bob", "punctuation :", "identifier x"}},
		{"BOB_JR: x", []string{"character BOB_JR", "punctuation :", "identifier x"}},
		{"___: x", []string{"identifier ___", "punctuation :", "identifier x"}},
	}
	for _, tt := range tests {
		res := lex(t, tt.src)
		wantTokens(t, res.Tokens, tt.want)
	}
}

func TestReclassifySceneID(t *testing.T) {
	res := lex(t, "SCENE\nintro {")
	wantTokens(t, res.Tokens, []string{
		"keyword SCENE",
		"scene intro",
		"punctuation {",
	})
}

func TestReclassifyUndo(t *testing.T) {
	res := lex(t, "SCENE intro")
	toks := res.Tokens
	if toks[2].Category != CategorySceneID {
		t.Fatalf("intro = %v, want scene", toks[2].Category)
	}

	// Splicing away the SCENE keyword must downgrade the identifier again.
	rest := append([]Token(nil), toks[2:]...)
	Reclassify(rest)
	if rest[0].Category != CategoryIdentifier {
		t.Errorf("intro without SCENE context = %v, want identifier", rest[0].Category)
	}

	// Re-running over the untouched stream changes nothing.
	Reclassify(toks)
	if toks[2].Category != CategorySceneID {
		t.Errorf("re-run downgraded intro to %v", toks[2].Category)
	}
}

func TestTokenizeProperties(t *testing.T) {
	alphabet := []rune("SCENEab c\n\"'{}:/*“”\\\t\rX_1")
	rapid.Check(t, func(t *rapid.T) {
		runes := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 60).Draw(t, "runes")
		src := string(runes)

		res := Tokenize(src, wordRules{}, Initial)
		Finalize(&res)
		checkPartition(t, src, res)

		// Deterministic: a second pass produces the identical stream.
		again := Tokenize(src, wordRules{}, Initial)
		Finalize(&again)
		if len(again.Tokens) != len(res.Tokens) {
			t.Fatalf("non-deterministic token count: %d vs %d", len(res.Tokens), len(again.Tokens))
		}
		for i := range res.Tokens {
			if res.Tokens[i] != again.Tokens[i] {
				t.Fatalf("non-deterministic token %d: %+v vs %+v", i, res.Tokens[i], again.Tokens[i])
			}
		}
		if res.Exit != again.Exit {
			t.Fatalf("non-deterministic exit: %+v vs %+v", res.Exit, again.Exit)
		}
	})
}
