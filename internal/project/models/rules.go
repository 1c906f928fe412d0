package models

import (
	"slices"
	"strings"

	pstrings "github.com/web-lizzard/review-genie/pkg/platform/strings"
)

const noRulesText = "No specific rules defined"

var defaultRules = []string{
	"Focus on code quality, readability, and maintainability",
	"Check for potential bugs and security vulnerabilities",
	"Verify proper error handling and edge cases",
	"Ensure code follows project conventions and best practices",
	"Review performance implications of changes",
}

// Rules is an ordered set of free-text review guidelines.
// Every operation returns a new value; the receiver is never modified.
type Rules struct {
	items []string
}

// DefaultRules returns the baseline guideline set.
func DefaultRules() Rules {
	return Rules{items: slices.Clone(defaultRules)}
}

// NewRules builds Rules from raw strings. Each rule is trimmed and repeats are
// dropped; a blank entry fails with empty_rule and a multi-line one with
// invalid_rule. An empty list yields empty Rules.
func NewRules(raw []string) (Rules, error) {
	r := Rules{items: make([]string, 0, len(raw))}
	for _, rule := range raw {
		next, err := r.AddRule(rule)
		if err != nil {
			return Rules{}, err
		}
		r = next
	}
	return r, nil
}

// ParseRulesText decodes the newline-joined form produced by Text.
// Blank lines are dropped; blank text yields empty Rules, not the defaults.
func ParseRulesText(text string) Rules {
	return Rules{items: pstrings.DedupeAndTrim(pstrings.NonBlankLines(text))}
}

// AddRule rejects line breaks inside a rule: Text joins rules with newlines.
func (r Rules) AddRule(rule string) (Rules, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return Rules{}, ErrEmptyRule()
	}
	if strings.ContainsAny(rule, "\r\n") {
		return Rules{}, ErrInvalidRule()
	}
	items := slices.Clone(r.items)
	if !slices.Contains(items, rule) {
		items = append(items, rule)
	}
	return Rules{items: items}, nil
}

func (r Rules) RemoveRule(rule string) Rules {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return Rules{items: slices.Clone(r.items)}
	}
	items := make([]string, 0, len(r.items))
	for _, existing := range r.items {
		if existing != rule {
			items = append(items, existing)
		}
	}
	return Rules{items: items}
}

func (r Rules) HasRule(rule string) bool {
	return slices.Contains(r.items, strings.TrimSpace(rule))
}

func (r Rules) Len() int {
	return len(r.items)
}

// Items returns a copy of the rules in order.
func (r Rules) Items() []string {
	if r.items == nil {
		return []string{}
	}
	return slices.Clone(r.items)
}

func (r Rules) Equal(other Rules) bool {
	return slices.Equal(r.items, other.items)
}

// Text joins the rules with newlines.
func (r Rules) Text() string {
	return strings.Join(r.items, "\n")
}

// String renders a bulleted list for prompts and logs.
func (r Rules) String() string {
	if len(r.items) == 0 {
		return noRulesText
	}
	lines := make([]string, len(r.items))
	for i, rule := range r.items {
		lines[i] = "• " + rule
	}
	return strings.Join(lines, "\n")
}
