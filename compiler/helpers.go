package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/net/html"
)

// lineIndex maps byte offsets to line/character positions.
type lineIndex []int // byte offset where each line starts

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (idx lineIndex) position(offset int) Position {
	line := sort.Search(len(idx), func(i int) bool { return idx[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Character: offset - idx[line]}
}

func (idx lineIndex) span(start, end int) Range {
	return Range{Start: idx.position(start), End: idx.position(end)}
}

// getContextLines returns a formatted string with context lines around the error line.
// lineNumber is 1-indexed; contextSize lines are shown before and after it.
func getContextLines(source string, lineNumber int, contextSize int) string {
	lines := strings.Split(source, "\n")

	startLine := lineNumber - contextSize - 1
	if startLine < 0 {
		startLine = 0
	}
	endLine := lineNumber + contextSize
	if endLine > len(lines) {
		endLine = len(lines)
	}

	var result strings.Builder
	for i := startLine; i < endLine; i++ {
		lineNum := i + 1
		prefix := "  "
		if lineNum == lineNumber {
			prefix = "> "
		}
		result.WriteString(fmt.Sprintf("%s%4d | %s\n", prefix, lineNum, lines[i]))
	}
	return result.String()
}

// suggestMember returns the candidate closest to name, if it is within two edits.
func suggestMember(name string, candidates []string) string {
	const threshold = 2

	best, bestDist := "", threshold+1
	sort.Strings(candidates)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// didYouMean formats the suggestion suffix used by not-found diagnostics.
func didYouMean(name string, candidates []string) string {
	if s := suggestMember(name, candidates); s != "" && s != name {
		return fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	return ""
}

// blank overwrites buf[start:end] with spaces, keeping line breaks so that
// positions on later lines are unaffected.
func blank(buf []byte, start, end int) {
	for i := start; i < end && i < len(buf); i++ {
		if buf[i] != '\n' && buf[i] != '\r' {
			buf[i] = ' '
		}
	}
}

// unescapeAttr decodes the character references of a raw attribute value.
// offsets[i] is the byte offset in raw where decoded byte i came from, and
// offsets[len(value)] is len(raw).
func unescapeAttr(raw string) (value string, offsets []int) {
	offsets = make([]int, 0, len(raw)+1)
	if !strings.Contains(raw, "&") {
		for i := 0; i <= len(raw); i++ {
			offsets = append(offsets, i)
		}
		return raw, offsets
	}

	var b strings.Builder
	for i := 0; i < len(raw); {
		if raw[i] == '&' {
			if semi := strings.IndexByte(raw[i:], ';'); semi > 1 {
				ref := raw[i : i+semi+1]
				if dec := html.UnescapeString(ref); dec != ref {
					for j := 0; j < len(dec); j++ {
						offsets = append(offsets, i)
					}
					b.WriteString(dec)
					i += len(ref)
					continue
				}
			}
		}
		offsets = append(offsets, i)
		b.WriteByte(raw[i])
		i++
	}
	return b.String(), append(offsets, len(raw))
}
