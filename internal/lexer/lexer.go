package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/casebook-dev/casebook/internal/diag"
)

// Matcher matches grammar rules at a position in the source. The compiled
// grammar implements it; the lexer stays independent of rule representation.
type Matcher interface {
	// MatchAt returns the length and category of the highest-precedence
	// rule matching at src[pos:], or ok=false if no rule matches.
	MatchAt(src string, pos int) (n int, cat Category, ok bool)
}

// Result is the output of one tokenize pass over a range.
type Result struct {
	// Tokens exactly partition the input range, ordered by Start.
	Tokens []Token

	// Exit is the lexer state after the last byte of the range.
	Exit State

	// LineStates holds the entry state for every line start in the range.
	// LineStates[0] is the entry state of the pass; one entry is appended
	// per newline consumed. A range ending in a newline therefore carries
	// the state of the line that begins just past the range.
	LineStates []State

	// Diagnostics reports malformed constructs found in the range.
	Diagnostics []diag.Diagnostic
}

const (
	curlyOpen  = "“" // left double quotation mark
	curlyClose = "”" // right double quotation mark
)

// Tokenize converts src into a classified token stream, resuming from
// entry. It is total: it terminates for any input and never fails.
// Multi-line constructs left open at the end of src are reported through
// the exit state; call Finalize when the range ends at end-of-document.
//
// Token offsets, lines, and columns are relative to the start of src.
func Tokenize(src string, m Matcher, entry State) Result {
	s := scanner{src: src, m: m, state: entry}
	s.lineStates = append(s.lineStates, entry)

	if !s.state.IsNormal() {
		s.scanContinuation()
	}
	for s.pos < len(s.src) {
		s.scanNormal()
	}

	Reclassify(s.tokens)
	return Result{
		Tokens:      s.tokens,
		Exit:        s.state,
		LineStates:  s.lineStates,
		Diagnostics: s.diags,
	}
}

// Finalize applies end-of-document recovery to a pass whose range ended at
// the end of the document: a construct still open at EOF becomes an ERROR
// token with a diagnostic. The exit state is preserved so a resumed pass
// can still thread it.
func Finalize(res *Result) {
	if res.Exit.IsNormal() || len(res.Tokens) == 0 {
		return
	}
	last := &res.Tokens[len(res.Tokens)-1]
	last.Category = CategoryError

	msg := "unterminated string literal"
	if res.Exit.Mode == ModeBlockComment {
		msg = "unterminated block comment"
	}
	at := last.Start
	res.Diagnostics = append(res.Diagnostics, diag.Errorf(at, at+1, "%s", msg))
}

// Reclassify applies the post-pass classifications that depend on token
// context rather than grammar rules:
//
//   - an identifier of uppercase letters and underscores immediately
//     followed by an adjacent ':' becomes CHARACTER
//   - an identifier following a SCENE keyword becomes SCENE_ID
//
// It is idempotent and safe to re-run over a spliced stream: upgrades
// applied by an earlier run are undone first when their context is gone.
func Reclassify(tokens []Token) {
	for i := range tokens {
		t := &tokens[i]
		if (t.Category == CategorySceneID || t.Category == CategoryCharacter) &&
			t.base == CategoryIdentifier {
			t.Category = CategoryIdentifier
		}
	}

	scenePending := false
	for i := range tokens {
		t := &tokens[i]
		if t.Category.IsTrivia() {
			continue
		}

		if scenePending {
			if t.Category == CategoryIdentifier {
				t.Category = CategorySceneID
			}
			scenePending = false
		}
		if t.Is(CategoryKeyword, "SCENE") {
			scenePending = true
			continue
		}

		if t.Category == CategoryIdentifier && isUpperName(t.Text) {
			if next := nextAdjacent(tokens, i); next != nil && next.Text == ":" {
				t.Category = CategoryCharacter
			}
		}
	}
}

// nextAdjacent returns the token directly following tokens[i] with no gap.
func nextAdjacent(tokens []Token, i int) *Token {
	if i+1 >= len(tokens) {
		return nil
	}
	next := &tokens[i+1]
	if next.Start != tokens[i].End {
		return nil
	}
	return next
}

func isUpperName(s string) bool {
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c == '_':
		default:
			return false
		}
	}
	return upper
}

type scanner struct {
	src   string
	m     Matcher
	state State

	pos  int
	line int
	col  int

	tokens     []Token
	lineStates []State
	diags      []diag.Diagnostic
}

// emit appends a token for [start, end) and advances position tracking.
// lineState is recorded as the entry state of every line that starts
// inside the token (multi-line strings and block comments).
func (s *scanner) emit(cat Category, start, end int, lineState State) {
	text := s.src[start:end]
	s.tokens = append(s.tokens, Token{
		Category: cat,
		Start:    start,
		End:      end,
		Text:     text,
		Line:     s.line,
		Col:      s.col,
		base:     cat,
	})

	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				s.line++
				s.lineStates = append(s.lineStates, lineState)
			}
		}
		s.col = uniseg.GraphemeClusterCount(text[idx+1:])
	} else {
		s.col += uniseg.GraphemeClusterCount(text)
	}
	s.pos = end
}

func (s *scanner) scanNormal() {
	c := s.src[s.pos]

	switch {
	case c == '\n':
		s.emit(CategoryDefault, s.pos, s.pos+1, s.state)
		return
	case c == '\r' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '\n':
		s.emit(CategoryDefault, s.pos, s.pos+2, s.state)
		return
	case c == ' ' || c == '\t' || c == '\r':
		end := s.pos + 1
		for end < len(s.src) && (s.src[end] == ' ' || s.src[end] == '\t' || s.src[end] == '\r') {
			// Keep \r out of the run when it opens a \r\n pair.
			if s.src[end] == '\r' && end+1 < len(s.src) && s.src[end+1] == '\n' {
				break
			}
			end++
		}
		s.emit(CategoryDefault, s.pos, end, s.state)
		return
	}

	if strings.HasPrefix(s.src[s.pos:], "//") {
		end := s.pos + 2
		for end < len(s.src) && s.src[end] != '\n' {
			end++
		}
		s.emit(CategoryComment, s.pos, end, s.state)
		return
	}
	if strings.HasPrefix(s.src[s.pos:], "/*") {
		s.scanBlockComment()
		return
	}

	if strings.HasPrefix(s.src[s.pos:], "'''") || strings.HasPrefix(s.src[s.pos:], `"""`) {
		s.scanTripleString()
		return
	}
	if c == '\'' || c == '"' {
		s.scanQuoted(s.pos+1, "\\", string(c))
		return
	}
	// Either curly quote opens a literal, and either one closes it.
	if strings.HasPrefix(s.src[s.pos:], curlyOpen) || strings.HasPrefix(s.src[s.pos:], curlyClose) {
		s.scanQuoted(s.pos+len(curlyOpen), "\\", curlyOpen, curlyClose)
		return
	}

	if n, cat, ok := s.m.MatchAt(s.src, s.pos); ok && n > 0 {
		s.emit(cat, s.pos, s.pos+n, s.state)
		return
	}

	_, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if size == 0 {
		size = 1
	}
	s.emit(CategoryDefault, s.pos, s.pos+size, s.state)
}

// scanQuoted scans a single-line string literal opened at s.pos whose body
// starts at body and ends at any of closers. A backslash escapes the next
// rune but never the line break: single-line literals always stop at the
// newline, so only triple strings and block comments thread state across
// lines. An unclosed literal ends at the line break or at the end of the
// range as an ERROR token with a diagnostic anchored at the quote.
func (s *scanner) scanQuoted(body int, escape string, closers ...string) {
	start := s.pos
	j := body
	for j < len(s.src) {
		if strings.HasPrefix(s.src[j:], escape) && j+len(escape) < len(s.src) &&
			s.src[j+len(escape)] != '\n' {
			_, size := utf8.DecodeRuneInString(s.src[j+len(escape):])
			j += len(escape) + size
			continue
		}
		for _, closer := range closers {
			if strings.HasPrefix(s.src[j:], closer) {
				s.emit(CategoryString, start, j+len(closer), s.state)
				return
			}
		}
		if s.src[j] == '\n' {
			break
		}
		_, size := utf8.DecodeRuneInString(s.src[j:])
		j += size
	}
	s.diags = append(s.diags, diag.Errorf(start, start+1, "unterminated string literal"))
	s.emit(CategoryError, start, j, s.state)
}

func (s *scanner) scanTripleString() {
	start := s.pos
	quote := s.src[s.pos]
	delim := s.src[s.pos : s.pos+3]
	open := State{Mode: ModeTripleString, Quote: quote, Open: start}

	j := s.pos + 3
	for j < len(s.src) {
		if s.src[j] == '\\' && j+1 < len(s.src) {
			_, size := utf8.DecodeRuneInString(s.src[j+1:])
			j += 1 + size
			continue
		}
		if strings.HasPrefix(s.src[j:], delim) {
			s.emit(CategoryString, start, j+3, open)
			return
		}
		j++
	}
	// Open at the end of the range; the caller decides whether that is
	// end-of-document (Finalize) or a resumable window boundary.
	s.state = open
	s.emit(CategoryString, start, len(s.src), open)
}

func (s *scanner) scanBlockComment() {
	start := s.pos
	open := State{Mode: ModeBlockComment, Open: start}

	if end := strings.Index(s.src[s.pos+2:], "*/"); end >= 0 {
		s.emit(CategoryComment, start, s.pos+2+end+2, open)
		return
	}
	s.state = open
	s.emit(CategoryComment, start, len(s.src), open)
}

// scanContinuation consumes the remainder of a construct left open by the
// entry state.
func (s *scanner) scanContinuation() {
	if len(s.src) == 0 {
		return
	}
	open := s.state
	switch open.Mode {
	case ModeTripleString:
		delim := strings.Repeat(string(open.Quote), 3)
		j := 0
		for j < len(s.src) {
			if s.src[j] == '\\' && j+1 < len(s.src) {
				_, size := utf8.DecodeRuneInString(s.src[j+1:])
				j += 1 + size
				continue
			}
			if strings.HasPrefix(s.src[j:], delim) {
				s.state = State{}
				s.emit(CategoryString, 0, j+3, open)
				return
			}
			j++
		}
		s.emit(CategoryString, 0, len(s.src), open)

	case ModeBlockComment:
		if end := strings.Index(s.src, "*/"); end >= 0 {
			s.state = State{}
			s.emit(CategoryComment, 0, end+2, open)
			return
		}
		s.emit(CategoryComment, 0, len(s.src), open)
	}
}
