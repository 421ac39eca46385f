package ls

import (
	"context"
	"unicode/utf8"

	"github.com/stubls/stubls/internal/core"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"golang.org/x/text/message"
)

// ProvideHover describes the word under the cursor: how often it occurs in
// the document and at which version. A position outside any word has no hover.
func (l *LanguageService) ProvideHover(ctx context.Context, documentURI lsproto.DocumentUri, position lsproto.Position) (*lsproto.Hover, error) {
	doc, err := l.getDocument(documentURI)
	if err != nil {
		return nil, err
	}
	offset, err := l.positionToOffset(doc, position)
	if err != nil {
		return nil, err
	}

	lm := doc.LineMap()
	lineStart := lm.LineStarts[position.Line]
	line := lm.LineContent(doc.Content, int(position.Line))
	cursor := utf8.RuneCountInString(doc.Content[lineStart:offset])

	word, start, end, err := l.wordAt(line, cursor)
	if err != nil || word == "" {
		return nil, err
	}

	count, err := l.countOccurrences(ctx, doc.Content, word)
	if err != nil {
		return nil, err
	}

	p := message.NewPrinter(core.GetLocale(ctx))
	return &lsproto.Hover{
		Contents: lsproto.MarkupContent{
			Kind:  lsproto.MarkupKindPlainText,
			Value: p.Sprintf("%s: %d occurrence(s), version %d", word, count, doc.Version),
		},
		Range: &lsproto.Range{
			Start: l.converters.OffsetToPosition(doc.Content, lm, lineStart+start),
			End:   l.converters.OffsetToPosition(doc.Content, lm, lineStart+end),
		},
	}, nil
}

// wordAt finds the match of the word pattern touching the rune index cursor
// and returns it with its byte bounds in line.
func (l *LanguageService) wordAt(line string, cursor int) (string, int, int, error) {
	m, err := l.wordPattern.FindStringMatch(line)
	for m != nil && err == nil {
		if m.Index <= cursor && cursor <= m.Index+m.Length && m.Length > 0 {
			start := runeOffset(line, m.Index)
			end := runeOffset(line, m.Index+m.Length)
			return m.String(), start, end, nil
		}
		if m.Index > cursor {
			break
		}
		m, err = l.wordPattern.FindNextMatch(m)
	}
	return "", 0, 0, err
}

// countOccurrences counts whole matches of the word pattern equal to word.
func (l *LanguageService) countOccurrences(ctx context.Context, text string, word string) (int, error) {
	count := 0
	m, err := l.wordPattern.FindStringMatch(text)
	for m != nil && err == nil {
		if ctx.Err() != nil {
			return 0, context.Cause(ctx)
		}
		if m.String() == word {
			count++
		}
		m, err = l.wordPattern.FindNextMatch(m)
	}
	return count, err
}

// runeOffset converts a rune index into a byte offset.
func runeOffset(s string, runes int) int {
	for i := range s {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(s)
}
