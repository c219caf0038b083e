// Package grammar compiles the Casebook rule tables that drive the lexer.
// A compiled grammar is an immutable, precedence-ordered rule list built
// from the embedded base rule set merged with an optional override source;
// it is shared read-only across every open document.
package grammar

import (
	"regexp"
	"sort"
	"strings"

	"github.com/casebook-dev/casebook/internal/lexer"
)

// Directive records how a rule entered the merged grammar.
type Directive uint8

const (
	// DirectiveAdd marks a rule that coexists with the base rules.
	DirectiveAdd Directive = iota

	// DirectiveReplace marks an override rule that displaced a base rule
	// of the same name.
	DirectiveReplace
)

// String returns the directive name.
func (d Directive) String() string {
	if d == DirectiveReplace {
		return "replace"
	}
	return "add"
}

// Rule is one recognition rule. Immutable once compiled.
type Rule struct {
	// Name identifies the rule for REPLACE-by-name merging.
	Name string

	// Category is assigned to tokens the rule matches.
	Category lexer.Category

	// Precedence ranks the rule within its category; higher wins.
	Precedence int

	// Directive records the merge decision for this rule.
	Directive Directive

	// literals are tried by prefix match; pattern is an anchored regex.
	// Exactly one of the two is populated.
	literals []string
	pattern  *regexp.Regexp

	override bool
	maxLen   int
}

// matchLen returns the match length of the rule at src[pos:], or 0.
func (r *Rule) matchLen(src string, pos int) int {
	rest := src[pos:]

	if r.pattern != nil {
		loc := r.pattern.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			return 0
		}
		return loc[1]
	}

	for _, lit := range r.literals {
		if !strings.HasPrefix(rest, lit) {
			continue
		}
		// Word-shaped literals only match on a word boundary, so a
		// keyword never claims the head of a longer identifier.
		if endsInWordChar(lit) && pos+len(lit) < len(src) && isWordChar(src[pos+len(lit)]) {
			continue
		}
		return len(lit)
	}
	return 0
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func endsInWordChar(s string) bool {
	return s != "" && isWordChar(s[len(s)-1])
}

// Compiled is an immutable merged grammar. It implements lexer.Matcher.
type Compiled struct {
	rules []Rule
}

// Rules returns the compiled rules in matching order.
func (c *Compiled) Rules() []Rule {
	return c.rules
}

// Find returns the active rule with the given name.
func (c *Compiled) Find(name string) (Rule, bool) {
	for _, r := range c.rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// MatchAt implements lexer.Matcher: rules are evaluated in compiled order
// and the first match wins.
func (c *Compiled) MatchAt(src string, pos int) (int, lexer.Category, bool) {
	for i := range c.rules {
		if n := c.rules[i].matchLen(src, pos); n > 0 {
			return n, c.rules[i].Category, true
		}
	}
	return 0, lexer.CategoryDefault, false
}

// merge combines base and override rule lists. An override rule whose name
// matches a base rule replaces it; all other override rules are added.
// The result order depends only on rule attributes, never on override file
// ordering.
func merge(base, override []Rule) []Rule {
	byName := make(map[string]int, len(override))
	for i := range override {
		override[i].override = true
		byName[override[i].Name] = i
	}

	merged := make([]Rule, 0, len(base)+len(override))
	replaced := make(map[string]bool)
	for _, b := range base {
		if i, ok := byName[b.Name]; ok {
			o := override[i]
			o.Directive = DirectiveReplace
			merged = append(merged, o)
			replaced[o.Name] = true
			continue
		}
		merged = append(merged, b)
	}
	for _, o := range override {
		if !replaced[o.Name] {
			o.Directive = DirectiveAdd
			merged = append(merged, o)
		}
	}

	sortRules(merged)
	return merged
}

// sortRules orders rules for matching: category precedence, then rule
// precedence, then override before base, then longer literals first, then
// name for determinism.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := &rules[i], &rules[j]
		if pa, pb := a.Category.Precedence(), b.Category.Precedence(); pa != pb {
			return pa > pb
		}
		if a.Precedence != b.Precedence {
			return a.Precedence > b.Precedence
		}
		if a.override != b.override {
			return a.override
		}
		if a.maxLen != b.maxLen {
			return a.maxLen > b.maxLen
		}
		return a.Name < b.Name
	})
}
