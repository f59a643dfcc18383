// Package linemap translates line numbers in errors raised by injected,
// transformed sketch code back into coordinates of the source the user
// actually typed.
package linemap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// The textual conventions an error or stack string may use to embed a line
// number. A number is counted once even when several patterns match it.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bline[\s:]+(\d+)`), // "line 15", "line: 15"
	regexp.MustCompile(`\((\d+):\d+\)`),     // "(15:3)"
	regexp.MustCompile(`:(\d+):\d+`),        // "sketch.js:15:3" stack frames
	regexp.MustCompile(`:\s+(\d+)\)`),       // "(anonymous: 15)"
	regexp.MustCompile(`\[(\d+)\]`),         // "[15]"
}

// Mapper rewrites reported line numbers by subtracting the scaffold lines
// injected ahead of user code and clamping into the source's valid range.
type Mapper struct {
	lines    []string
	injected int
}

// New creates a mapper for one execution attempt. injected is the number of
// scaffold lines placed before the user's code.
func New(source string, injected int) *Mapper {
	if injected < 0 {
		injected = 0
	}
	return &Mapper{
		lines:    strings.Split(source, "\n"),
		injected: injected,
	}
}

// MapLine converts a reported line number to a source line number, clamped
// to [1, len(source lines)].
func (m *Mapper) MapLine(reported int) int {
	mapped := reported - m.injected
	if mapped < 1 {
		return 1
	}
	if mapped > len(m.lines) {
		return len(m.lines)
	}
	return mapped
}

// ExtractLines returns every line number recognized in msg, deduplicated,
// in order of first appearance.
func (m *Mapper) ExtractLines(msg string) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, pat := range linePatterns {
		for _, match := range pat.FindAllStringSubmatch(msg, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// MapMessage rewrites every recognized line reference in msg. Numbers are
// replaced largest first so a freshly written smaller number cannot be
// picked up again by a pending replacement. A message with no recognizable
// line number is returned unchanged.
func (m *Mapper) MapMessage(msg string) string {
	nums := m.ExtractLines(msg)
	if len(nums) == 0 {
		return msg
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))
	for _, n := range nums {
		mapped := m.MapLine(n)
		if mapped == n {
			continue
		}
		pat := regexp.MustCompile(`\b` + strconv.Itoa(n) + `\b`)
		msg = pat.ReplaceAllString(msg, strconv.Itoa(mapped))
	}
	return msg
}

// Context renders radius source lines either side of line with a marker:
//
//	  3 | let x = 10
//	> 4 | elipse(50, 50)
//	  5 | }
func (m *Mapper) Context(line, radius int) string {
	if line < 1 || line > len(m.lines) || radius < 0 {
		return ""
	}
	lo := line - radius
	if lo < 1 {
		lo = 1
	}
	hi := line + radius
	if hi > len(m.lines) {
		hi = len(m.lines)
	}
	width := len(strconv.Itoa(hi))

	var b strings.Builder
	for n := lo; n <= hi; n++ {
		marker := "  "
		if n == line {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%*d | %s", marker, width, n, m.lines[n-1])
		if n < hi {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ScaffoldLines counts the lines a block of scaffolding text occupies when
// injected ahead of user code.
func ScaffoldLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
