package permission

import (
	"fmt"
	"strings"
)

// Decision is the outcome of evaluating an invocation against a RuleSet.
type Decision string

const (
	// DecisionAllow means an allow rule matched and no deny rule did.
	DecisionAllow Decision = "allow"
	// DecisionDeny means a deny rule matched. Deny wins over allow.
	DecisionDeny Decision = "deny"
	// DecisionAsk means no rule matched; the consuming assistant should
	// fall back to interactive confirmation.
	DecisionAsk Decision = "ask"
)

// Rule is one parsed permission pattern.
type Rule struct {
	// Tool is the tool name the rule applies to, or "*" for any tool.
	Tool string
	// Arg is the glob matched against the tool's argument string.
	// Empty means the rule matches any argument.
	Arg string
	// Raw is the original pattern text, kept for reporting.
	Raw string
}

// Parse parses a single permission pattern. It returns an error describing
// the malformed pattern when the text does not fit the rule grammar.
func Parse(raw string) (Rule, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Rule{}, fmt.Errorf("empty permission pattern")
	}

	if text == "*" {
		return Rule{Tool: "*", Raw: raw}, nil
	}

	tool := text
	arg := ""

	if open := strings.IndexByte(text, '('); open >= 0 {
		if !strings.HasSuffix(text, ")") {
			return Rule{}, fmt.Errorf("pattern %q: missing closing parenthesis", raw)
		}
		tool = text[:open]
		arg = text[open+1 : len(text)-1]
		if arg == "" {
			return Rule{}, fmt.Errorf("pattern %q: empty argument glob", raw)
		}
		if strings.ContainsAny(arg, "()") {
			return Rule{}, fmt.Errorf("pattern %q: nested parentheses are not allowed", raw)
		}
	} else if strings.ContainsRune(text, ')') {
		return Rule{}, fmt.Errorf("pattern %q: unexpected closing parenthesis", raw)
	}

	if !validToolName(tool) {
		return Rule{}, fmt.Errorf("pattern %q: invalid tool name %q", raw, tool)
	}

	return Rule{Tool: tool, Arg: arg, Raw: raw}, nil
}

// ParseList parses every pattern in order. The first malformed pattern
// aborts with its error.
func ParseList(patterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		r, err := Parse(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Matches reports whether the rule matches a tool invocation.
func (r Rule) Matches(tool, arg string) bool {
	if r.Tool != "*" && r.Tool != tool {
		return false
	}
	if r.Arg == "" {
		return true
	}
	return globMatch(r.Arg, arg)
}

// RuleSet is an ordered pair of allow and deny rule lists.
type RuleSet struct {
	Allow []Rule
	Deny  []Rule
}

// NewRuleSet parses allow and deny pattern lists into a RuleSet.
func NewRuleSet(allow, deny []string) (RuleSet, error) {
	allowRules, err := ParseList(allow)
	if err != nil {
		return RuleSet{}, fmt.Errorf("allow list: %w", err)
	}
	denyRules, err := ParseList(deny)
	if err != nil {
		return RuleSet{}, fmt.Errorf("deny list: %w", err)
	}
	return RuleSet{Allow: allowRules, Deny: denyRules}, nil
}

// Decide evaluates a tool invocation. Deny rules are checked first and
// short-circuit; an invocation matched by both lists is denied.
func (s RuleSet) Decide(tool, arg string) Decision {
	for _, r := range s.Deny {
		if r.Matches(tool, arg) {
			return DecisionDeny
		}
	}
	for _, r := range s.Allow {
		if r.Matches(tool, arg) {
			return DecisionAllow
		}
	}
	return DecisionAsk
}

// validToolName accepts names of the form used by assistant tool registries:
// a letter followed by letters, digits, underscores, or hyphens.
func validToolName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return true
}

// globMatch matches s against a pattern where '*' matches any run of
// characters (including none) and '?' matches exactly one. All other
// characters match literally.
func globMatch(pattern, s string) bool {
	// Iterative wildcard match with single-star backtracking.
	pi, si := 0, 0
	star, mark := -1, 0

	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == s[si] || pattern[pi] == '?'):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
