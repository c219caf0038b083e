// Package document owns per-document analysis state and the incremental
// re-lex scheduler. Each edit produces a complete replacement Snapshot:
// consumers never observe a partially updated analysis.
package document

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/casebook-dev/casebook/internal/diag"
	"github.com/casebook-dev/casebook/internal/engine/buffer"
	"github.com/casebook-dev/casebook/internal/grammar"
	"github.com/casebook-dev/casebook/internal/highlight"
	"github.com/casebook-dev/casebook/internal/lexer"
	"github.com/casebook-dev/casebook/internal/log"
	"github.com/casebook-dev/casebook/internal/structure"
)

// Snapshot is one immutable analysis result. All fields describe the same
// revision of the text.
type Snapshot struct {
	// Seq is the edit sequence number that produced the snapshot.
	// Later sequence numbers always win the commit race.
	Seq uint64

	// Text is the analyzed content.
	Text string

	// Tokens partition Text.
	Tokens []lexer.Token

	// LineStarts holds the byte offset of every line start.
	LineStarts []int

	// LineStates holds the lexer entry state of every line.
	LineStates []lexer.State

	// Analysis is the structural result over Tokens.
	Analysis *structure.Analysis

	// Grammar is the compiled grammar the pass used.
	Grammar *grammar.Compiled

	lexDiags    []diag.Diagnostic
	grammarDiag *diag.Diagnostic
}

// Diagnostics returns lexical, structural, and grammar-load diagnostics.
func (s *Snapshot) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0,
		len(s.lexDiags)+len(s.Analysis.Diagnostics)+1)
	if s.grammarDiag != nil {
		out = append(out, *s.grammarDiag)
	}
	out = append(out, s.lexDiags...)
	out = append(out, s.Analysis.Diagnostics...)
	return out
}

// StyleSpans returns the ordered styled ranges for rendering.
func (s *Snapshot) StyleSpans() []highlight.Span {
	return highlight.Spans(s.Tokens)
}

// FoldRanges returns the collapsible regions, ordered by start offset.
func (s *Snapshot) FoldRanges() []structure.FoldRegion {
	return s.Analysis.Folds
}

// SceneNameAt returns the name of the scene containing the offset.
func (s *Snapshot) SceneNameAt(offset int) (string, bool) {
	rec, ok := s.Analysis.SceneAt(offset)
	if !ok {
		return "", false
	}
	return rec.Name, true
}

// Document binds a buffer to its cached analysis. Methods are not safe
// for concurrent edits: the host serializes edits per document, and a
// stale in-flight pass loses the commit by sequence number.
type Document struct {
	id   uuid.UUID
	buf  *buffer.Buffer
	reg  *grammar.Registry
	snap atomic.Pointer[Snapshot]
	seq  atomic.Uint64
}

// Open analyzes text and returns a document ready for edits.
func Open(text string, reg *grammar.Registry) *Document {
	d := &Document{id: uuid.New(), buf: buffer.New(text), reg: reg}
	d.commit(d.fullPass(d.seq.Add(1), reg.Current(), reg.LoadDiagnostic()))
	return d
}

// ID returns the document identity.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Snapshot returns the latest committed analysis.
func (d *Document) Snapshot() *Snapshot {
	return d.snap.Load()
}

// Text returns the current buffer content.
func (d *Document) Text() string {
	return d.buf.Text()
}

// Reanalyze forces a full pass, picking up a reloaded grammar.
func (d *Document) Reanalyze() *Snapshot {
	snap := d.fullPass(d.seq.Add(1), d.reg.Current(), d.reg.LoadDiagnostic())
	d.commit(snap)
	return snap
}

// ApplyEdit applies (replacedRange, newText) to the buffer and re-lexes
// the minimal window: the enclosing logical lines, extended backward past
// any open multi-line construct and forward until the lexer state at the
// window boundary matches the cached state. Structural analysis re-runs
// over the full spliced stream; the result replaces the snapshot
// atomically.
func (d *Document) ApplyEdit(e buffer.Edit) *Snapshot {
	prev := d.snap.Load()
	seq := d.seq.Add(1)
	applied := d.buf.Apply(e)
	g := d.reg.Current()

	// A grammar reload invalidates every cached token: full pass.
	if prev == nil || prev.Grammar != g {
		snap := d.fullPass(seq, g, d.reg.LoadDiagnostic())
		d.commit(snap)
		return snap
	}

	snap, ok := d.incrementalPass(prev, applied, seq, g)
	if !ok {
		log.L().Debug("incremental pass declined, re-lexing document", "doc", d.id)
		snap = d.fullPass(seq, g, prev.grammarDiag)
	}
	d.commit(snap)
	return snap
}

// commit installs the snapshot unless a later edit already won.
func (d *Document) commit(snap *Snapshot) {
	for {
		cur := d.snap.Load()
		if cur != nil && cur.Seq >= snap.Seq {
			return
		}
		if d.snap.CompareAndSwap(cur, snap) {
			return
		}
	}
}

// fullPass tokenizes and analyzes the whole buffer.
func (d *Document) fullPass(seq uint64, g *grammar.Compiled, gd *diag.Diagnostic) *Snapshot {
	text := d.buf.Text()
	res := lexer.Tokenize(text, g, lexer.Initial)
	lexer.Finalize(&res)

	return &Snapshot{
		Seq:         seq,
		Text:        text,
		Tokens:      res.Tokens,
		LineStarts:  buffer.LineStartsOf(text),
		LineStates:  res.LineStates,
		Analysis:    structure.Analyze(res.Tokens, len(text)),
		Grammar:     g,
		lexDiags:    res.Diagnostics,
		grammarDiag: gd,
	}
}
