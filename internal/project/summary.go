package project

import (
	"strings"

	"github.com/peter-evans/patience"
)

type ChangeSummary struct {
	LinesInserted int
	LinesDeleted  int
}

func (s ChangeSummary) IsEmpty() bool {
	return s.LinesInserted == 0 && s.LinesDeleted == 0
}

// SummarizeChange counts the lines a change inserted and deleted.
func SummarizeChange(before, after string) ChangeSummary {
	if before == after {
		return ChangeSummary{}
	}
	var summary ChangeSummary
	for _, line := range patience.Diff(splitLines(before), splitLines(after)) {
		switch line.Type {
		case patience.Insert:
			summary.LinesInserted++
		case patience.Delete:
			summary.LinesDeleted++
		}
	}
	return summary
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(s, "\n")
}
