// Package buffer provides the text buffer and edit model consumed by the
// analysis engine. The buffer is deliberately simple: the engine is
// invoked synchronously from the host editing surface, which owns the
// interactive editing machinery; here a string with a line index is all
// the re-lex scheduler needs.
package buffer

import "fmt"

// Range is a byte range: Start inclusive, End exclusive.
type Range struct {
	Start int
	End   int
}

// NewRange creates a Range from start and end offsets.
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the range length in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid reports whether Start <= End.
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Contains reports whether the offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether the ranges share any byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Clamp restricts the range to [0, max].
func (r Range) Clamp(max int) Range {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > max {
		r.End = max
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r
}
