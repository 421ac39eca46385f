package project

import (
	"sync"

	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/zeebo/xxh3"
)

// Document is an immutable snapshot of an open text document. Every mutation
// in the store produces a new Document, so a handler may keep using the one it
// was given while later notifications are applied.
type Document struct {
	URI        lsproto.DocumentUri
	LanguageID string
	Version    int32
	Content    string
	SyncKind   lsproto.TextDocumentSyncKind

	hashOnce sync.Once
	hash     xxh3.Uint128

	lineMapOnce sync.Once
	lineMap     *lsconv.LineMap
}

func newDocument(uri lsproto.DocumentUri, languageID string, version int32, content string, syncKind lsproto.TextDocumentSyncKind) *Document {
	return &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Content:    content,
		SyncKind:   syncKind,
	}
}

func (d *Document) withContent(version int32, content string) *Document {
	return newDocument(d.URI, d.LanguageID, version, content, d.SyncKind)
}

func (d *Document) Hash() xxh3.Uint128 {
	d.hashOnce.Do(func() {
		d.hash = xxh3.HashString128(d.Content)
	})
	return d.hash
}

func (d *Document) LineMap() *lsconv.LineMap {
	d.lineMapOnce.Do(func() {
		d.lineMap = lsconv.ComputeLineMap(d.Content)
	})
	return d.lineMap
}
