package lexer

// Mode identifies which multi-line construct, if any, the lexer is inside.
type Mode uint8

const (
	// ModeNormal is the top-level state with no open construct.
	ModeNormal Mode = iota

	// ModeTripleString is inside an unterminated triple-quoted string.
	ModeTripleString

	// ModeBlockComment is inside an unterminated block comment.
	ModeBlockComment
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeTripleString:
		return "triple-string"
	case ModeBlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// State is the context needed to resume tokenization mid-document.
// It is a comparable value: incremental re-lexing detects convergence by
// equality against previously cached states.
type State struct {
	Mode Mode

	// Quote is the quote rune of the open triple string (' or ").
	// Zero unless Mode is ModeTripleString.
	Quote byte

	// Open is the byte offset where the construct opened, relative to the
	// document start of the pass that produced this state. Offsets are
	// excluded from equality-based convergence checks via Resumable.
	Open int
}

// Initial is the default entry state: top level, no open construct.
var Initial = State{}

// IsNormal reports whether no multi-line construct is open.
func (s State) IsNormal() bool {
	return s.Mode == ModeNormal
}

// Resumable strips positional bookkeeping so two states compare equal
// when they demand the same continuation, regardless of where the open
// construct began.
func (s State) Resumable() State {
	s.Open = 0
	return s
}

// Equivalent reports whether resuming from either state tokenizes the
// remainder of the document identically.
func (s State) Equivalent(o State) bool {
	return s.Resumable() == o.Resumable()
}
