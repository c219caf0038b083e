package grammar

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/casebook-dev/casebook/internal/lexer"
)

// yamlRule is one rule entry in a YAML override file.
type yamlRule struct {
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	Precedence int      `yaml:"precedence"`
	Regex      string   `yaml:"regex"`
	Literals   []string `yaml:"literals"`
}

type yamlFile struct {
	Rules []yamlRule `yaml:"rules"`
}

// ParseYAMLRules parses a YAML override rule file:
//
//	rules:
//	  - name: SCENE
//	    category: keyword
//	    precedence: 3
//	    literals: ["SCENE", "ACT"]
//	  - name: TAG
//	    category: identifier
//	    regex: '@[a-z]+'
//
// Exactly one of regex/literals must be set per rule.
func ParseYAMLRules(data []byte) ([]Rule, *LoadError) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Msg: err.Error()}
	}
	if len(f.Rules) == 0 {
		return nil, &LoadError{Msg: "no rules defined"}
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, yr := range f.Rules {
		rule, err := yr.compile()
		if err != nil {
			return nil, &LoadError{Msg: fmt.Sprintf("rule %d: %v", i+1, err)}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (yr yamlRule) compile() (Rule, error) {
	if yr.Name == "" {
		return Rule{}, fmt.Errorf("missing name")
	}
	cat, ok := lexer.CategoryFromString(yr.Category)
	if yr.Category != "" && !ok {
		return Rule{}, fmt.Errorf("%s: unknown category %q", yr.Name, yr.Category)
	}
	rule := Rule{Name: yr.Name, Category: cat, Precedence: yr.Precedence}

	switch {
	case yr.Regex != "" && len(yr.Literals) > 0:
		return Rule{}, fmt.Errorf("%s: regex and literals are mutually exclusive", yr.Name)
	case yr.Regex != "":
		re, err := regexp.Compile("^(?:" + yr.Regex + ")")
		if err != nil {
			return Rule{}, fmt.Errorf("%s: %v", yr.Name, err)
		}
		rule.pattern = re
	case len(yr.Literals) > 0:
		for _, lit := range yr.Literals {
			if lit == "" {
				return Rule{}, fmt.Errorf("%s: empty literal", yr.Name)
			}
			rule.literals = append(rule.literals, lit)
			if len(lit) > rule.maxLen {
				rule.maxLen = len(lit)
			}
		}
	default:
		return Rule{}, fmt.Errorf("%s: needs regex or literals", yr.Name)
	}
	return rule, nil
}
