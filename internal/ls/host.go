package ls

import (
	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
)

// Host is the document view a language service reads from.
type Host interface {
	Get(uri lsproto.DocumentUri) (*project.Document, error)
	Converters() *lsconv.Converters
}

var _ Host = project.Reader(nil)
