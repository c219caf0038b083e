package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebook-dev/casebook/internal/grammar"
	"github.com/casebook-dev/casebook/internal/lexer"
)

func analyzeSrc(t *testing.T, src string) *Analysis {
	t.Helper()
	c, err := grammar.Compile(grammar.BaseSource, nil)
	require.NoError(t, err)
	res := lexer.Tokenize(src, c, lexer.Initial)
	lexer.Finalize(&res)
	return Analyze(res.Tokens, len(src))
}

func TestAnalyzeSingleScene(t *testing.T) {
	src := `SCENE intro {
	x = 1
}`
	a := analyzeSrc(t, src)

	require.Len(t, a.Scenes, 1)
	sc := a.Scenes[0]
	assert.Equal(t, "intro", sc.Name)
	assert.Equal(t, 12, sc.Start) // the opening brace
	assert.Equal(t, len(src), sc.End)
	assert.True(t, sc.WellFormed)
	assert.Empty(t, sc.Children)

	require.Len(t, a.Folds, 1)
	assert.Equal(t, FoldScene, a.Folds[0].Kind)
	assert.Equal(t, 0, a.Folds[0].Depth)
	assert.Empty(t, a.Diagnostics)
}

func TestAnalyzeNestedFolds(t *testing.T) {
	src := `SCENE one {
	IF ready {
		WHILE going {
			DO step()
		}
	}
}`
	a := analyzeSrc(t, src)

	require.Len(t, a.Scenes, 1)
	require.Len(t, a.Folds, 3)

	// Laminar family: any two regions are disjoint or strictly nested.
	for i := range a.Folds {
		for j := i + 1; j < len(a.Folds); j++ {
			f, g := a.Folds[i], a.Folds[j]
			nested := (f.Start <= g.Start && g.End <= f.End) ||
				(g.Start <= f.Start && f.End <= g.End)
			disjoint := f.End <= g.Start || g.End <= f.Start
			assert.True(t, nested || disjoint, "folds %v and %v overlap", f, g)
		}
	}

	// Sorted by start offset, depths step down the nesting.
	assert.Equal(t, FoldScene, a.Folds[0].Kind)
	for i, f := range a.Folds {
		assert.Equal(t, i, f.Depth, "fold %d", i)
	}

	// The scene's direct children exclude the doubly nested WHILE fold.
	require.Len(t, a.Scenes[0].Children, 1)
	assert.Equal(t, FoldControl, a.Scenes[0].Children[0].Kind)
}

func TestAnalyzeSiblingScenes(t *testing.T) {
	src := "SCENE a { x } SCENE b { y } SCENE c { z }"
	a := analyzeSrc(t, src)

	require.Len(t, a.Scenes, 3)
	names := []string{a.Scenes[0].Name, a.Scenes[1].Name, a.Scenes[2].Name}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	// Records are sorted and pairwise disjoint.
	for i := 1; i < len(a.Scenes); i++ {
		assert.GreaterOrEqual(t, a.Scenes[i].Start, a.Scenes[i-1].End)
	}
}

func TestAnalyzeNestedSceneIsNotARecord(t *testing.T) {
	src := "SCENE outer { SCENE inner { x } }"
	a := analyzeSrc(t, src)

	// Only the top-level scene produces a record; the nested one is a
	// fold region inside it.
	require.Len(t, a.Scenes, 1)
	assert.Equal(t, "outer", a.Scenes[0].Name)

	require.Len(t, a.Folds, 2)
	require.Len(t, a.Scenes[0].Children, 1)
	assert.Equal(t, FoldScene, a.Scenes[0].Children[0].Kind)
}

func TestAnalyzeFunctionFold(t *testing.T) {
	src := "FUNCTION f() { RETURN 1 }"
	a := analyzeSrc(t, src)

	assert.Empty(t, a.Scenes)
	require.Len(t, a.Folds, 1)
	assert.Equal(t, FoldFunction, a.Folds[0].Kind)
}

func TestAnalyzeUnterminatedScene(t *testing.T) {
	src := "SCENE broken {\n\tx = 1\n"
	a := analyzeSrc(t, src)

	require.Len(t, a.Scenes, 1)
	sc := a.Scenes[0]
	assert.False(t, sc.WellFormed)
	assert.Equal(t, len(src), sc.End)

	require.Len(t, a.Diagnostics, 1)
	assert.Contains(t, a.Diagnostics[0].Message, "unterminated block")
}

func TestAnalyzeInnerFoldSurvivesBrokenScene(t *testing.T) {
	src := "SCENE a { IF x THEN { } "
	a := analyzeSrc(t, src)

	// The IF block closed normally; only the scene is force-closed.
	require.Len(t, a.Folds, 2)
	for _, f := range a.Folds {
		switch f.Kind {
		case FoldControl:
			assert.True(t, f.WellFormed)
		case FoldScene:
			assert.False(t, f.WellFormed)
			assert.Equal(t, len(src), f.End)
		}
	}

	require.Len(t, a.Scenes, 1)
	assert.Equal(t, "a", a.Scenes[0].Name)
	assert.False(t, a.Scenes[0].WellFormed)

	require.Len(t, a.Diagnostics, 1)
	assert.Contains(t, a.Diagnostics[0].Message, "unterminated block")
}

func TestAnalyzeUnmatchedCloser(t *testing.T) {
	src := "x } y"
	a := analyzeSrc(t, src)

	require.Len(t, a.Diagnostics, 1)
	assert.Contains(t, a.Diagnostics[0].Message, "unmatched closing bracket")
	assert.Empty(t, a.Scenes)
	assert.Empty(t, a.Brackets)
}

func TestAnalyzeMismatchedPair(t *testing.T) {
	src := "( x ]"
	a := analyzeSrc(t, src)

	// The ] does not close the (, which is then force-closed at EOF.
	require.Len(t, a.Diagnostics, 2)
	assert.Contains(t, a.Diagnostics[0].Message, "unmatched closing bracket")
	assert.Contains(t, a.Diagnostics[1].Message, "unterminated block")

	require.Len(t, a.Brackets, 1)
	assert.False(t, a.Brackets[0].WellFormed)
}

func TestAnalyzeBracketPairs(t *testing.T) {
	src := "DO f(a, g[0])"
	a := analyzeSrc(t, src)

	require.Len(t, a.Brackets, 2)
	// Sorted by open offset: ( before [.
	assert.Less(t, a.Brackets[0].Open, a.Brackets[1].Open)
	assert.Equal(t, 0, a.Brackets[0].Depth)
	assert.Equal(t, 1, a.Brackets[1].Depth)
	for _, b := range a.Brackets {
		assert.True(t, b.WellFormed)
	}
}

func TestAnalyzePlainBracesAreNotFolds(t *testing.T) {
	src := "x { y }"
	a := analyzeSrc(t, src)

	assert.Empty(t, a.Folds)
	assert.Empty(t, a.Scenes)
	require.Len(t, a.Brackets, 1)
}

func TestSceneAt(t *testing.T) {
	src := "SCENE a { x } SCENE b { y }"
	a := analyzeSrc(t, src)
	require.Len(t, a.Scenes, 2)

	tests := []struct {
		offset   int
		wantName string
		wantOK   bool
	}{
		{a.Scenes[0].Start, "a", true},
		{a.Scenes[0].End - 1, "a", true},
		{a.Scenes[0].End, "", false}, // gap between scenes
		{a.Scenes[1].Start + 1, "b", true},
		{len(src) + 5, "", false},
		{0, "", false}, // the SCENE keyword precedes the body
	}
	for _, tt := range tests {
		rec, ok := a.SceneAt(tt.offset)
		assert.Equal(t, tt.wantOK, ok, "offset %d", tt.offset)
		if ok {
			assert.Equal(t, tt.wantName, rec.Name, "offset %d", tt.offset)
		}
	}
}

func TestAnalyzeEmptyStream(t *testing.T) {
	a := Analyze(nil, 0)
	assert.Empty(t, a.Scenes)
	assert.Empty(t, a.Folds)
	assert.Empty(t, a.Diagnostics)
}

func TestFoldKindString(t *testing.T) {
	assert.Equal(t, "scene", FoldScene.String())
	assert.Equal(t, "function", FoldFunction.String())
	assert.Equal(t, "control", FoldControl.String())
}
