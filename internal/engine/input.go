package engine

import (
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`^[+-]?(?:0[xX][0-9a-fA-F]+|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// lineFeeder serves test input to a single run.
type lineFeeder struct {
	rest string
}

func newLineFeeder(input string) *lineFeeder {
	return &lineFeeder{rest: input}
}

// readLine returns the next line without its newline. The last line may
// lack a newline. ok is false once the input is exhausted.
func (f *lineFeeder) readLine(keepNewline bool) (line string, ok bool) {
	if f.rest == "" {
		return "", false
	}
	i := strings.IndexByte(f.rest, '\n')
	if i < 0 {
		line, f.rest = f.rest, ""
		return line, true
	}
	end := i
	if keepNewline {
		end = i + 1
	}
	line, f.rest = f.rest[:end], f.rest[i+1:]
	return line, true
}

// readAll drains the remaining input.
func (f *lineFeeder) readAll() string {
	s := f.rest
	f.rest = ""
	return s
}

// readNumber skips leading whitespace and consumes one numeric token.
// eof is true when only whitespace remained; matched is false when the next
// token is not a number, which leaves the input untouched past the
// whitespace.
func (f *lineFeeder) readNumber() (token string, matched, eof bool) {
	f.rest = strings.TrimLeft(f.rest, " \t\r\n\v\f")
	if f.rest == "" {
		return "", false, true
	}
	token = numberPattern.FindString(f.rest)
	if token == "" {
		return "", false, false
	}
	f.rest = f.rest[len(token):]
	return token, true, false
}
