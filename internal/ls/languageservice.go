package ls

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
)

// LanguageService answers plaintext feature requests against one view of
// the open documents. It is cheap to create and lives for a single request.
type LanguageService struct {
	host        Host
	converters  *lsconv.Converters
	wordPattern *regexp2.Regexp
}

func NewLanguageService(host Host, wordPattern *regexp2.Regexp) *LanguageService {
	return &LanguageService{
		host:        host,
		converters:  host.Converters(),
		wordPattern: wordPattern,
	}
}

func (l *LanguageService) getDocument(uri lsproto.DocumentUri) (*project.Document, error) {
	doc, err := l.host.Get(uri)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *LanguageService) positionToOffset(doc *project.Document, pos lsproto.Position) (int, error) {
	offset, err := l.converters.PositionToOffset(doc.Content, doc.LineMap(), pos)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", lsproto.ErrInvalidParams, doc.URI, err)
	}
	return offset, nil
}
