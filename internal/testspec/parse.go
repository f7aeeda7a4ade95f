// Package testspec parses delimiter-based test specifications into test
// cases.
//
// A specification is plain text divided by delimiter lines: lines that start
// with a prefix (by default "###") and end with a newline. Whatever follows
// the prefix on a delimiter line is a label and is discarded. Text before
// the first delimiter is ignored; the remaining sections alternate between
// input and expected output.
//
//	### case 1 input
//	3
//	### case 1 output
//	9
//	### end
package testspec

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/AndreyAkinshin/automark/internal/model"
)

// DefaultPrefix starts a delimiter line unless configured otherwise.
const DefaultPrefix = "###"

// ErrInvalidSpec is returned when the text does not split into complete
// input/output pairs.
var ErrInvalidSpec = errors.New("invalid test specification")

// Parse splits raw into test cases using delimiter lines starting with
// prefix. Parsing is all-or-nothing: on error no cases are returned.
func Parse(raw, prefix string) ([]model.TestCase, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: delimiter prefix must not be empty", ErrInvalidSpec)
	}

	sections := split(raw, delimiterPattern(prefix))
	if len(sections) < 3 || len(sections)%2 == 0 {
		return nil, fmt.Errorf("%w: found %d sections, want an odd number of at least 3 (prefix %q)",
			ErrInvalidSpec, len(sections), prefix)
	}

	cases := make([]model.TestCase, 0, len(sections)/2)
	for k := 1; k < len(sections); k += 2 {
		cases = append(cases, model.TestCase{
			Input:    sections[k],
			Expected: sections[k+1],
		})
	}
	return cases, nil
}

func delimiterPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(prefix) + `[^\n]*\n`)
}

// split returns the text between delimiter lines, including the leading and
// trailing sections even when they are empty.
func split(raw string, re *regexp.Regexp) []string {
	matches := re.FindAllStringIndex(raw, -1)
	sections := make([]string, 0, len(matches)+1)
	start := 0
	for _, m := range matches {
		sections = append(sections, raw[start:m[0]])
		start = m[1]
	}
	return append(sections, raw[start:])
}
