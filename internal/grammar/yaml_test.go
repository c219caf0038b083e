package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casebook-dev/casebook/internal/lexer"
)

func TestParseYAMLRules(t *testing.T) {
	src := []byte(`
rules:
  - name: SCENE
    category: keyword
    precedence: 3
    literals: ["SCENE", "ACT"]
  - name: TAG
    category: identifier
    regex: '@[a-z]+'
`)
	rules, lerr := ParseYAMLRules(src)
	require.Nil(t, lerr)
	require.Len(t, rules, 2)

	assert.Equal(t, "SCENE", rules[0].Name)
	assert.Equal(t, lexer.CategoryKeyword, rules[0].Category)
	assert.Equal(t, 3, rules[0].Precedence)
	assert.Equal(t, []string{"SCENE", "ACT"}, rules[0].literals)
	assert.Equal(t, 5, rules[0].maxLen)

	assert.Equal(t, "TAG", rules[1].Name)
	require.NotNil(t, rules[1].pattern)
	assert.Equal(t, 4, rules[1].matchLen("@tag!", 0))
}

func TestParseYAMLRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not yaml", ":\n::bad"},
		{"no rules", "rules: []"},
		{"missing name", "rules:\n  - category: keyword\n    literals: [\"X\"]"},
		{"unknown category", "rules:\n  - name: X\n    category: wild\n    literals: [\"X\"]"},
		{"regex and literals", "rules:\n  - name: X\n    regex: a\n    literals: [\"X\"]"},
		{"neither", "rules:\n  - name: X\n    category: keyword"},
		{"empty literal", "rules:\n  - name: X\n    literals: [\"\"]"},
		{"bad regex", "rules:\n  - name: X\n    regex: '['"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, lerr := ParseYAMLRules([]byte(tt.src))
			require.NotNil(t, lerr, "source should be rejected")
			assert.Nil(t, rules)
		})
	}
}

func TestParseYAMLRulesMergeWithBase(t *testing.T) {
	override, lerr := ParseYAMLRules([]byte(`
rules:
  - name: SCENE
    category: keyword
    precedence: 3
    literals: ["SCENE", "EPISODE"]
`))
	require.Nil(t, lerr)

	c, err := Compile(BaseSource, override)
	require.NoError(t, err)

	n, cat, ok := c.MatchAt("EPISODE x", 0)
	require.True(t, ok)
	assert.Equal(t, 7, n)
	assert.Equal(t, lexer.CategoryKeyword, cat)
}
