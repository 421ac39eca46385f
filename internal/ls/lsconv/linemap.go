package lsconv

import (
	"slices"
)

// LineMap holds the byte offset at which each line of a text starts.
// "\n", "\r\n" and "\r" all end a line.
type LineMap struct {
	LineStarts []int
	textLen    int
}

func ComputeLineMap(text string) *LineMap {
	starts := make([]int, 1, 1+len(text)/40)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &LineMap{LineStarts: starts, textLen: len(text)}
}

func (lm *LineMap) LineCount() int {
	return len(lm.LineStarts)
}

// ComputeLineOf returns the zero-based line containing the byte offset.
func (lm *LineMap) ComputeLineOf(offset int) int {
	line, found := slices.BinarySearch(lm.LineStarts, offset)
	if found {
		return line
	}
	return line - 1
}

// LineContent returns the line's text without its line break.
func (lm *LineMap) LineContent(text string, line int) string {
	start := lm.LineStarts[line]
	end := lm.textLen
	if line+1 < len(lm.LineStarts) {
		end = lm.LineStarts[line+1]
	}
	content := text[start:end]
	for len(content) > 0 && (content[len(content)-1] == '\n' || content[len(content)-1] == '\r') {
		content = content[:len(content)-1]
	}
	return content
}
