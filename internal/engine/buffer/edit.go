package buffer

import "fmt"

// Edit replaces a range with new text. Inserts use an empty range,
// deletes an empty replacement.
type Edit struct {
	Range   Range
	NewText string
}

// NewEdit creates an Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit inserting text at offset.
func NewInsert(offset int, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// NewDelete creates an Edit deleting [start, end).
func NewDelete(start, end int) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// Delta returns the change in buffer length the edit causes.
func (e Edit) Delta() int {
	return len(e.NewText) - e.Range.Len()
}

// IsNoOp reports whether the edit changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}
