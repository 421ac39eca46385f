package ls

import (
	"context"
	"strings"

	"github.com/stubls/stubls/internal/lsp/lsproto"
)

// ProvideFoldingRanges folds every paragraph of two or more lines. Paragraphs
// are separated by lines that are empty or whitespace only.
func (l *LanguageService) ProvideFoldingRanges(ctx context.Context, documentURI lsproto.DocumentUri) ([]lsproto.FoldingRange, error) {
	doc, err := l.getDocument(documentURI)
	if err != nil {
		return nil, err
	}

	lm := doc.LineMap()
	ranges := []lsproto.FoldingRange{}
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			ranges = append(ranges, lsproto.FoldingRange{
				StartLine: uint32(start),
				EndLine:   uint32(end),
			})
		}
		start = -1
	}
	for line := range lm.LineCount() {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		if strings.TrimSpace(lm.LineContent(doc.Content, line)) == "" {
			flush(line - 1)
			continue
		}
		if start < 0 {
			start = line
		}
	}
	flush(lm.LineCount() - 1)
	return ranges, nil
}
