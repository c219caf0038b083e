// Package structure derives document structure from a token stream:
// scene records, nested fold regions, and bracket pairs. The analysis is
// one linear pass with a bracket stack; malformed input is repaired by
// best-effort closing at end-of-input and reported through diagnostics,
// never through failure.
package structure

import (
	"sort"

	"github.com/casebook-dev/casebook/internal/diag"
	"github.com/casebook-dev/casebook/internal/lexer"
)

// FoldKind classifies a fold region.
type FoldKind uint8

const (
	// FoldScene is a SCENE body.
	FoldScene FoldKind = iota

	// FoldFunction is a FUNCTION body.
	FoldFunction

	// FoldControl is an IF/ELIF/ELSE/WHILE/FOR body.
	FoldControl
)

// String returns the fold kind name.
func (k FoldKind) String() string {
	switch k {
	case FoldScene:
		return "scene"
	case FoldFunction:
		return "function"
	case FoldControl:
		return "control"
	default:
		return "unknown"
	}
}

// FoldRegion is a collapsible range spanning a braced block, opening
// brace included. Regions form a laminar family: any two are disjoint or
// strictly nested.
type FoldRegion struct {
	Start int
	End   int
	Kind  FoldKind

	// Depth is the fold nesting depth, 0 for outermost.
	Depth int

	// WellFormed is false when the region was force-closed at
	// end-of-input instead of by its matching brace.
	WellFormed bool
}

// SceneRecord is a named top-level narrative block. Body covers the
// braced block, braces included; records are pairwise disjoint.
type SceneRecord struct {
	Name  string
	Start int
	End   int

	// Children are the fold regions directly nested in the scene body.
	Children []FoldRegion

	WellFormed bool
}

// BracketPair is one matched (or force-closed) bracket pair.
type BracketPair struct {
	Open       int
	Close      int
	Depth      int
	WellFormed bool
}

// Analysis is the immutable result of one structural pass.
type Analysis struct {
	// Scenes is sorted by Start; bodies are pairwise disjoint.
	Scenes []SceneRecord

	// Folds is sorted by Start.
	Folds []FoldRegion

	// Brackets is sorted by open offset.
	Brackets []BracketPair

	Diagnostics []diag.Diagnostic
}

// SceneAt returns the scene whose body contains the offset. Records are
// disjoint, so a binary search suffices.
func (a *Analysis) SceneAt(offset int) (SceneRecord, bool) {
	i := sort.Search(len(a.Scenes), func(i int) bool {
		return a.Scenes[i].End > offset
	})
	if i < len(a.Scenes) && a.Scenes[i].Start <= offset {
		return a.Scenes[i], true
	}
	return SceneRecord{}, false
}

// frame is one open bracket on the stack.
type frame struct {
	open      lexer.Token
	kind      FoldKind
	fold      bool
	foldDepth int
	scene     bool
	name      string
}

// pending tracks a structural keyword waiting for its opening brace.
type pending struct {
	active bool
	kind   FoldKind
	scene  bool
	name   string
}

// Analyze derives scenes, folds, and bracket pairs from a token stream.
// end is the end-of-input offset used to force-close open constructs.
func Analyze(tokens []lexer.Token, end int) *Analysis {
	a := &Analysis{}
	var stack []frame
	var pend pending
	sceneKeyword := false
	foldDepth := 0

	for i := range tokens {
		t := &tokens[i]
		if t.Category.IsTrivia() {
			continue
		}

		switch {
		case t.Is(lexer.CategoryKeyword, "SCENE"):
			sceneKeyword = true
			continue
		case sceneKeyword && t.Category == lexer.CategorySceneID:
			pend = pending{active: true, kind: FoldScene, scene: len(stack) == 0, name: t.Text}
			sceneKeyword = false
			continue
		case t.Is(lexer.CategoryKeyword, "FUNCTION"):
			pend = pending{active: true, kind: FoldFunction}
		case isControlKeyword(t):
			pend = pending{active: true, kind: FoldControl}
		}
		sceneKeyword = false

		if t.Category != lexer.CategoryPunctuation {
			continue
		}
		switch t.Text {
		case "{":
			f := frame{open: *t}
			if pend.active {
				f.kind = pend.kind
				f.fold = true
				f.foldDepth = foldDepth
				f.scene = pend.scene
				f.name = pend.name
				foldDepth++
				pend = pending{}
			}
			stack = append(stack, f)
		case "(", "[":
			stack = append(stack, frame{open: *t})
		case "}", ")", "]":
			if len(stack) == 0 || stack[len(stack)-1].open.Text != openerFor(t.Text) {
				a.Diagnostics = append(a.Diagnostics,
					diag.Errorf(t.Start, t.End, "unmatched closing bracket %q", t.Text))
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			a.close(f, t.End, len(stack), true)
			if f.fold {
				foldDepth--
			}
		}
	}

	// Force-close whatever is still open at end-of-input.
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a.close(f, end, len(stack), false)
		a.Diagnostics = append(a.Diagnostics,
			diag.Errorf(f.open.Start, end, "unterminated block"))
	}

	sort.SliceStable(a.Folds, func(i, j int) bool { return a.Folds[i].Start < a.Folds[j].Start })
	sort.SliceStable(a.Brackets, func(i, j int) bool { return a.Brackets[i].Open < a.Brackets[j].Open })
	sort.SliceStable(a.Scenes, func(i, j int) bool { return a.Scenes[i].Start < a.Scenes[j].Start })
	a.attachChildren()
	return a
}

// close records the bracket pair and, when the frame opened a fold or
// scene, the corresponding region.
func (a *Analysis) close(f frame, end, depth int, wellFormed bool) {
	a.Brackets = append(a.Brackets, BracketPair{
		Open: f.open.Start, Close: end, Depth: depth, WellFormed: wellFormed,
	})
	if !f.fold {
		return
	}
	region := FoldRegion{
		Start: f.open.Start, End: end,
		Kind: f.kind, Depth: f.foldDepth, WellFormed: wellFormed,
	}
	a.Folds = append(a.Folds, region)
	if f.scene {
		a.Scenes = append(a.Scenes, SceneRecord{
			Name: f.name, Start: region.Start, End: region.End, WellFormed: wellFormed,
		})
	}
}

// attachChildren populates each scene's direct child fold regions.
func (a *Analysis) attachChildren() {
	for i := range a.Scenes {
		s := &a.Scenes[i]
		var sceneDepth int
		for _, f := range a.Folds {
			if f.Kind == FoldScene && f.Start == s.Start && f.End == s.End {
				sceneDepth = f.Depth
				break
			}
		}
		for _, f := range a.Folds {
			if f.Start > s.Start && f.End <= s.End && f.Depth == sceneDepth+1 {
				s.Children = append(s.Children, f)
			}
		}
	}
}

func isControlKeyword(t *lexer.Token) bool {
	if t.Category != lexer.CategoryKeyword {
		return false
	}
	switch t.Text {
	case "IF", "ELIF", "ELSE", "WHILE", "FOR":
		return true
	}
	return false
}

func openerFor(closer string) string {
	switch closer {
	case "}":
		return "{"
	case ")":
		return "("
	case "]":
		return "["
	}
	return ""
}
