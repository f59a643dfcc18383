package transpile

import (
	"fmt"
	"sort"
)

// edit is a single text patch: replace src[start:end] with text.
// An insert is an edit with start == end.
type edit struct {
	start int
	end   int
	text  string
}

// editor collects position-anchored patches against one source string and
// applies them largest-offset-first so earlier offsets stay valid.
type editor struct {
	edits []edit
}

func (e *editor) insert(pos int, text string) {
	e.edits = append(e.edits, edit{start: pos, end: pos, text: text})
}

func (e *editor) replace(start, end int, text string) {
	e.edits = append(e.edits, edit{start: start, end: end, text: text})
}

// apply patches src. Edits must not overlap; overlapping ranges indicate a
// walker bug and are reported as an error rather than producing garbage.
func (e *editor) apply(src string) (string, error) {
	sort.SliceStable(e.edits, func(i, j int) bool {
		if e.edits[i].start != e.edits[j].start {
			return e.edits[i].start > e.edits[j].start
		}
		return e.edits[i].end > e.edits[j].end
	})

	prev := len(src) + 1
	for _, ed := range e.edits {
		if ed.start < 0 || ed.end > len(src) || ed.start > ed.end {
			return "", fmt.Errorf("edit out of range: [%d,%d) in %d bytes", ed.start, ed.end, len(src))
		}
		if ed.end > prev {
			return "", fmt.Errorf("overlapping edits at offset %d", ed.start)
		}
		src = src[:ed.start] + ed.text + src[ed.end:]
		prev = ed.start
	}
	return src, nil
}
