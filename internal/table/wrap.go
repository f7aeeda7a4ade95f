package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const tabStop = 8

// wrapSpace is the set of characters wrap treats as word separators.
const wrapSpace = "\t\n\v\f\r "

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// cellWidth is the widest physical line of cell, with tabs advancing to the
// next multiple of tabStop.
func cellWidth(cell string) int {
	widest := 0
	for _, line := range strings.Split(cell, "\n") {
		parts := strings.Split(line, "\t")
		length := 0
		for i, part := range parts {
			length += displayWidth(part)
			if i < len(parts)-1 {
				length = (length/tabStop + 1) * tabStop
			}
		}
		if length > widest {
			widest = length
		}
	}
	return widest
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabStop - col%tabStop
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// chunks splits s into alternating runs of words and separators, with every
// separator normalized to a space.
func chunks(s string) []string {
	var out []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := strings.ContainsRune(wrapSpace, r)
		if i > start && space != inSpace {
			out = append(out, s[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	for i, c := range out {
		if strings.ContainsRune(wrapSpace, []rune(c)[0]) {
			out[i] = strings.Repeat(" ", len(c))
		}
	}
	return out
}

func isSpaceChunk(c string) bool {
	return strings.Trim(c, " ") == ""
}

// wrap breaks one physical line into lines no wider than width using greedy
// word wrap. Leading whitespace survives only on the first line and
// trailing whitespace is dropped. A word wider than width gets a line of
// its own and overflows.
func wrap(line string, width int) []string {
	if width < 1 {
		width = 1
	}
	pieces := chunks(expandTabs(line))

	var lines []string
	for i := 0; i < len(pieces); {
		if len(lines) > 0 && isSpaceChunk(pieces[i]) {
			i++
			continue
		}

		var cur []string
		used := 0
		for i < len(pieces) {
			w := displayWidth(pieces[i])
			if used+w > width {
				break
			}
			cur = append(cur, pieces[i])
			used += w
			i++
		}
		if len(cur) == 0 {
			cur = append(cur, pieces[i])
			i++
		}
		if len(cur) > 1 && isSpaceChunk(cur[len(cur)-1]) {
			cur = cur[:len(cur)-1]
		}
		if text := strings.Join(cur, ""); strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
