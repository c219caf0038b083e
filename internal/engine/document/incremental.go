package document

import (
	"strings"

	"github.com/casebook-dev/casebook/internal/diag"
	"github.com/casebook-dev/casebook/internal/engine/buffer"
	"github.com/casebook-dev/casebook/internal/grammar"
	"github.com/casebook-dev/casebook/internal/lexer"
	"github.com/casebook-dev/casebook/internal/structure"
)

// incrementalPass re-lexes only the window around the applied edit and
// splices the result into the cached token stream. It reports ok=false
// when the window bookkeeping cannot be trusted, in which case the caller
// falls back to a full pass.
func (d *Document) incrementalPass(prev *Snapshot, applied buffer.Edit, seq uint64, g *grammar.Compiled) (*Snapshot, bool) {
	newText := d.buf.Text()
	delta := applied.Delta()

	// Start of the window: the start of the line containing the edit,
	// walked back past any line that begins inside a multi-line
	// construct so the construct is re-lexed from its opening.
	startLine := lineAt(prev.LineStarts, applied.Range.Start)
	for startLine > 0 && !prev.LineStates[startLine].IsNormal() {
		startLine--
	}
	if !prev.LineStates[startLine].IsNormal() {
		return nil, false
	}
	windowStart := prev.LineStarts[startLine]

	// End of the window in old coordinates: the first line at or past
	// the edit end whose cached entry state is normal. Ending on a
	// normal boundary guarantees no cached token crosses it.
	oldLines := len(prev.LineStarts)
	boundaryLine := lineAt(prev.LineStarts, applied.Range.End) + 1
	for boundaryLine < oldLines && !prev.LineStates[boundaryLine].IsNormal() {
		boundaryLine++
	}

	var res lexer.Result
	var boundaryOld, boundaryNew int
	for {
		boundaryOld = lineStartOf(prev, boundaryLine)
		boundaryNew = boundaryOld + delta
		if boundaryNew < windowStart || boundaryNew > len(newText) {
			return nil, false
		}

		res = lexer.Tokenize(newText[windowStart:boundaryNew], g, lexer.Initial)
		if boundaryNew == len(newText) {
			lexer.Finalize(&res)
			break
		}
		// The window ends mid-document: accept once the exit state
		// converges with the cached entry state of the boundary line.
		if res.Exit.Equivalent(prev.LineStates[boundaryLine]) {
			break
		}
		boundaryLine++
		for boundaryLine < oldLines && !prev.LineStates[boundaryLine].IsNormal() {
			boundaryLine++
		}
	}

	windowLines := strings.Count(newText[windowStart:boundaryNew], "\n")
	lineDelta := windowLines - (boundaryLine - startLine)

	tokens := spliceTokens(prev.Tokens, res.Tokens, windowStart, boundaryOld,
		delta, startLine, lineDelta)
	lexer.Reclassify(tokens)

	states := spliceStates(prev.LineStates, res.LineStates, startLine, boundaryLine, windowStart, delta)
	lexDiags := spliceDiags(prev.lexDiags, res.Diagnostics, windowStart, boundaryOld, delta)

	return &Snapshot{
		Seq:         seq,
		Text:        newText,
		Tokens:      tokens,
		LineStarts:  buffer.LineStartsOf(newText),
		LineStates:  states,
		Analysis:    structure.Analyze(tokens, len(newText)),
		Grammar:     g,
		lexDiags:    lexDiags,
		grammarDiag: prev.grammarDiag,
	}, true
}

// spliceTokens rebuilds the token stream: cached tokens before the
// window, freshly lexed window tokens shifted into document coordinates,
// and cached tokens after the window shifted by the edit delta.
func spliceTokens(old, window []lexer.Token, windowStart, boundaryOld, delta, startLine, lineDelta int) []lexer.Token {
	out := make([]lexer.Token, 0, len(old)+len(window))
	for _, t := range old {
		if t.Start >= windowStart {
			break
		}
		out = append(out, t)
	}
	for _, t := range window {
		t.Start += windowStart
		t.End += windowStart
		t.Line += startLine
		out = append(out, t)
	}
	for _, t := range old {
		if t.Start < boundaryOld {
			continue
		}
		t.Start += delta
		t.End += delta
		t.Line += lineDelta
		out = append(out, t)
	}
	return out
}

// spliceStates rebuilds the per-line entry states. The window result
// carries one state per line start it covers, including the boundary line
// itself, whose state converged with the cached one.
func spliceStates(old, window []lexer.State, startLine, boundaryLine, windowStart, delta int) []lexer.State {
	out := make([]lexer.State, 0, startLine+len(window))
	out = append(out, old[:startLine]...)
	for _, st := range window {
		if !st.IsNormal() {
			st.Open += windowStart
		}
		out = append(out, st)
	}
	for _, st := range old[min(boundaryLine+1, len(old)):] {
		if !st.IsNormal() {
			st.Open += delta
		}
		out = append(out, st)
	}
	return out
}

// spliceDiags rebuilds lexical diagnostics around the window.
func spliceDiags(old, window []diag.Diagnostic, windowStart, boundaryOld, delta int) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, dg := range old {
		if dg.Start < windowStart {
			out = append(out, dg)
		}
	}
	for _, dg := range window {
		dg.Start += windowStart
		dg.End += windowStart
		out = append(out, dg)
	}
	for _, dg := range old {
		if dg.Start >= boundaryOld {
			dg.Start += delta
			dg.End += delta
			out = append(out, dg)
		}
	}
	return out
}

// lineAt returns the index of the line containing the offset.
func lineAt(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// lineStartOf returns the byte offset where the line begins in the old
// snapshot, mapping one-past-the-last-line to the text length.
func lineStartOf(s *Snapshot, line int) int {
	if line >= len(s.LineStarts) {
		return len(s.Text)
	}
	return s.LineStarts[line]
}
