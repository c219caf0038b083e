package buffer

import "strings"

// Buffer holds the document text with a line-start index. Offsets are
// bytes; lines are 0-based and delimited by '\n'.
//
// Buffer is not safe for concurrent mutation: the engine's concurrency
// model is single-threaded per document, with the host serializing edits.
type Buffer struct {
	text       string
	lineStarts []int
}

// New creates a buffer with the given content.
func New(text string) *Buffer {
	b := &Buffer{text: text}
	b.reindex()
	return b
}

// Text returns the full content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Slice returns the text in r, clamped to the buffer.
func (b *Buffer) Slice(r Range) string {
	r = r.Clamp(len(b.text))
	return b.text[r.Start:r.End]
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	return len(b.lineStarts)
}

// LineStarts returns the byte offset of every line start. The returned
// slice is shared; callers must not modify it.
func (b *Buffer) LineStarts() []int {
	return b.lineStarts
}

// LineAt returns the line containing the byte offset.
func (b *Buffer) LineAt(offset int) int {
	if offset < 0 {
		return 0
	}
	// Find the last line start <= offset.
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineStart returns the byte offset where line begins. Lines past the end
// map to the buffer length.
func (b *Buffer) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(b.lineStarts) {
		return len(b.text)
	}
	return b.lineStarts[line]
}

// Apply replaces the edit's range with its new text and returns the
// applied edit with its range clamped to the previous buffer bounds.
func (b *Buffer) Apply(e Edit) Edit {
	e.Range = e.Range.Clamp(len(b.text))
	b.text = b.text[:e.Range.Start] + e.NewText + b.text[e.Range.End:]
	b.reindex()
	return e
}

func (b *Buffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

// LineStartsOf computes the line-start offsets of an arbitrary string,
// relative to its beginning.
func LineStartsOf(s string) []int {
	starts := []int{0}
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			return starts
		}
		starts = append(starts, starts[len(starts)-1]+i+1)
		s = s[i+1:]
	}
}
