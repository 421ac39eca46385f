package project

import (
	"fmt"

	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
)

// applyChanges applies content changes in order. Each range is resolved
// against the text produced by the changes before it.
func applyChanges(conv *lsconv.Converters, doc *Document, changes []lsproto.TextDocumentContentChangeEvent) (string, error) {
	content := doc.Content
	lineMap := doc.LineMap()
	for i, change := range changes {
		if change.IsWholeDocument() {
			content = change.Text
			lineMap = nil
			continue
		}
		if doc.SyncKind != lsproto.TextDocumentSyncKindIncremental {
			return "", fmt.Errorf("%w: change %d: ranged edit on a full-sync document", ErrInvalidRange, i)
		}
		if lineMap == nil {
			lineMap = lsconv.ComputeLineMap(content)
		}
		start, end, err := conv.RangeToOffsets(content, lineMap, *change.Range)
		if err != nil {
			return "", fmt.Errorf("%w: change %d: %w", ErrInvalidRange, i, err)
		}
		content = content[:start] + change.Text + content[end:]
		lineMap = nil
	}
	return content, nil
}
