package project_test

import (
	"testing"

	"github.com/stubls/stubls/internal/project"
	"gotest.tools/v3/assert"
)

func TestSummarizeChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		before, after string
		want          project.ChangeSummary
	}{
		{"identical", "a\nb\n", "a\nb\n", project.ChangeSummary{}},
		{"replace line", "a\nb\nc\n", "a\nB\nc\n", project.ChangeSummary{LinesInserted: 1, LinesDeleted: 1}},
		{"append", "a\n", "a\nb\nc\n", project.ChangeSummary{LinesInserted: 2}},
		{"from empty", "", "x", project.ChangeSummary{LinesInserted: 1}},
		{"to empty", "x\ny\n", "", project.ChangeSummary{LinesDeleted: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := project.SummarizeChange(tt.before, tt.after)
			assert.Equal(t, got, tt.want)
			assert.Equal(t, got.IsEmpty(), tt.want == project.ChangeSummary{})
		})
	}
}
