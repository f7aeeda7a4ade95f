package grader

import (
	"fmt"
	"strings"
	"unicode"
)

// Comparison decides whether a program's output matches the expected output.
type Comparison int

const (
	// CompareTrimTrailing ignores trailing whitespace, including trailing
	// blank lines, on both sides. Leading whitespace is significant.
	CompareTrimTrailing Comparison = iota
	// CompareTrimAll ignores leading and trailing whitespace on both sides.
	CompareTrimAll
)

// DefaultComparison is the policy used unless configured otherwise.
const DefaultComparison = CompareTrimTrailing

// ParseComparison maps a configuration value to a policy.
func ParseComparison(s string) (Comparison, error) {
	switch s {
	case "", "trailing":
		return CompareTrimTrailing, nil
	case "all":
		return CompareTrimAll, nil
	}
	return 0, fmt.Errorf("unknown comparison %q (want \"trailing\" or \"all\")", s)
}

func (c Comparison) String() string {
	if c == CompareTrimAll {
		return "all"
	}
	return "trailing"
}

// Match reports whether actual and expected are equal under the policy.
func (c Comparison) Match(actual, expected string) bool {
	return c.normalize(actual) == c.normalize(expected)
}

func (c Comparison) normalize(s string) string {
	if c == CompareTrimAll {
		return strings.TrimSpace(s)
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
