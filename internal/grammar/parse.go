package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/casebook-dev/casebook/internal/lexer"
)

// LoadError reports a malformed rule source. It is non-fatal: the caller
// degrades to the base grammar and surfaces the error as a diagnostic.
type LoadError struct {
	// Line is the 1-based source line of the first bad definition,
	// or 0 when the source failed as a whole.
	Line int

	// Msg describes the problem.
	Msg string
}

// Error implements error.
func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("grammar load: line %d: %s", e.Line, e.Msg)
	}
	return "grammar load: " + e.Msg
}

// ParseRules parses the line-based rule source format:
//
//	NAME.3: "SCENE" -> keyword
//	ALTS.2: "OPTIONS" | "SETUP" -> scene
//	IDENT.2: /[A-Za-z_][A-Za-z0-9_]*/ -> identifier
//
// The numeric suffix is the precedence rank (default 0); the trailing
// arrow names the token category (default "default"). Blank lines and
// // comments are skipped.
func ParseRules(src string) ([]Rule, *LoadError) {
	var rules []Rule
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		rule, err := parseRuleLine(line)
		if err != nil {
			return nil, &LoadError{Line: i + 1, Msg: err.Error()}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

var ruleNameRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\.([0-9]+))?$`)

func parseRuleLine(line string) (Rule, error) {
	head, rhs, ok := strings.Cut(line, ":")
	if !ok {
		return Rule{}, fmt.Errorf("missing ':' in rule definition")
	}

	m := ruleNameRe.FindStringSubmatch(strings.TrimSpace(head))
	if m == nil {
		return Rule{}, fmt.Errorf("bad rule name %q", strings.TrimSpace(head))
	}
	rule := Rule{Name: m[1]}
	if m[2] != "" {
		rule.Precedence, _ = strconv.Atoi(m[2])
	}

	pattern, cat := splitCategory(strings.TrimSpace(rhs))
	rule.Category = cat
	if err := setPattern(&rule, pattern); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// splitCategory strips a trailing "-> name" clause when name is a known
// category; the pattern text is returned untouched otherwise.
func splitCategory(rhs string) (string, lexer.Category) {
	if i := strings.LastIndex(rhs, "->"); i >= 0 {
		name := strings.TrimSpace(rhs[i+2:])
		if cat, ok := lexer.CategoryFromString(name); ok {
			return strings.TrimSpace(rhs[:i]), cat
		}
	}
	return rhs, lexer.CategoryDefault
}

// setPattern fills the rule matcher from its pattern text: /…/ compiles to
// an anchored regex, anything else is a | alternation of quoted literals.
func setPattern(rule *Rule, pattern string) error {
	if pattern == "" {
		return fmt.Errorf("rule %s has an empty pattern", rule.Name)
	}

	if strings.HasPrefix(pattern, "/") {
		if len(pattern) < 2 || !strings.HasSuffix(pattern, "/") {
			return fmt.Errorf("rule %s: unclosed /…/ pattern", rule.Name)
		}
		re, err := regexp.Compile("^(?:" + pattern[1:len(pattern)-1] + ")")
		if err != nil {
			return fmt.Errorf("rule %s: %v", rule.Name, err)
		}
		rule.pattern = re
		return nil
	}

	alts, err := splitAlternation(pattern)
	if err != nil {
		return fmt.Errorf("rule %s: %v", rule.Name, err)
	}
	for _, alt := range alts {
		lit, err := strconv.Unquote(alt)
		if err != nil {
			return fmt.Errorf("rule %s: bad literal %s: %v", rule.Name, alt, err)
		}
		if lit == "" {
			return fmt.Errorf("rule %s: empty literal", rule.Name)
		}
		rule.literals = append(rule.literals, lit)
		if len(lit) > rule.maxLen {
			rule.maxLen = len(lit)
		}
	}
	return nil
}

// splitAlternation splits `"a" | "b" | "c"` into its quoted segments,
// honoring escapes so literals may contain | and " themselves.
func splitAlternation(s string) ([]string, error) {
	var alts []string
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) || s[i] != '"' {
			return nil, fmt.Errorf("literal must be double-quoted")
		}
		j := i + 1
		for j < len(s) && s[j] != '"' {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(s) {
			return nil, fmt.Errorf("unclosed literal")
		}
		alts = append(alts, s[i:j+1])
		i = j + 1
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			return alts, nil
		}
		if s[i] != '|' {
			return nil, fmt.Errorf("expected '|' between literals")
		}
		i++
	}
}

// Compile merges the base rule source with already-parsed override rules
// into an immutable grammar. A bad base source is a programming error and
// is returned as a fatal error, unlike override sources.
func Compile(baseSrc string, override []Rule) (*Compiled, error) {
	base, lerr := ParseRules(baseSrc)
	if lerr != nil {
		return nil, fmt.Errorf("base grammar: %w", lerr)
	}
	if len(base) == 0 {
		return nil, fmt.Errorf("base grammar: no rules")
	}
	return &Compiled{rules: merge(base, override)}, nil
}
