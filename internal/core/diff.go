package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// UnifiedDiff renders a line-based unified diff between two texts, or ""
// if they match.
func UnifiedDiff(name string, before, after []byte) string {
	if bytes.Equal(before, after) {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	lines := splitLines(diffs)
	ranges := hunkRanges(lines, diffContext)
	if len(ranges) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", name))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", name))
	for _, r := range ranges {
		writeHunk(&result, lines, r[0], r[1])
	}
	return result.String()
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

func splitLines(diffs []diffmatchpatch.Diff) []diffLine {
	var lines []diffLine
	for _, d := range diffs {
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text != "" {
				lines = append(lines, diffLine{op: d.Type, text: text})
			}
		}
	}
	return lines
}

// hunkRanges returns [start, end) line ranges covering every change plus
// context lines. Ranges whose context touches are merged.
func hunkRanges(lines []diffLine, context int) [][2]int {
	var ranges [][2]int
	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		start := max(0, i-context)
		end := min(len(lines), i+1+context)
		if n := len(ranges); n > 0 && start <= ranges[n-1][1] {
			ranges[n-1][1] = end
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

func writeHunk(w *strings.Builder, lines []diffLine, start, end int) {
	oldStart, newStart := 1, 1
	for _, l := range lines[:start] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	var oldCount, newCount int
	var body strings.Builder
	for _, l := range lines[start:end] {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			body.WriteByte('-')
			oldCount++
		case diffmatchpatch.DiffInsert:
			body.WriteByte('+')
			newCount++
		default:
			body.WriteByte(' ')
			oldCount++
			newCount++
		}
		body.WriteString(l.text)
		if !strings.HasSuffix(l.text, "\n") {
			body.WriteString("\n\\ No newline at end of file\n")
		}
	}

	// An empty side is addressed by the line before it.
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	w.WriteString(body.String())
}
