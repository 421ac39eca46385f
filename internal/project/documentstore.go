package project

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/stubls/stubls/internal/collections"
	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/zeebo/xxh3"
)

// Reader is the read-only view of the store handed to feature handlers.
type Reader interface {
	Get(uri lsproto.DocumentUri) (*Document, error)
	Converters() *lsconv.Converters
}

// documentEntry serializes mutations of one URI. doc is nil once the
// document has been closed and the entry is on its way out of the map.
type documentEntry struct {
	mu  sync.Mutex
	doc *Document
}

// DocumentStore tracks open documents. Each URI has its own lock, so
// documents never wait on each other.
type DocumentStore struct {
	docs       collections.SyncMap[lsproto.DocumentUri, *documentEntry]
	converters *lsconv.Converters
}

var _ Reader = (*DocumentStore)(nil)

func NewDocumentStore(converters *lsconv.Converters) *DocumentStore {
	return &DocumentStore{converters: converters}
}

func (s *DocumentStore) Converters() *lsconv.Converters {
	return s.converters
}

func (s *DocumentStore) Open(uri lsproto.DocumentUri, languageID string, version int32, content string, syncKind lsproto.TextDocumentSyncKind) (*Document, error) {
	doc := newDocument(uri, languageID, version, content, syncKind)
	for {
		existing, loaded := s.docs.LoadOrStore(uri, &documentEntry{doc: doc})
		if !loaded {
			return doc, nil
		}
		existing.mu.Lock()
		closing := existing.doc == nil
		existing.mu.Unlock()
		if !closing {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDocument, uri)
		}
		// Lost a race with Close; drop the dead entry and retry.
		s.docs.CompareAndDelete(uri, existing)
	}
}

// ApplyChanges requires version to be greater than the tracked version.
// On any error the tracked document is left as it was.
func (s *DocumentStore) ApplyChanges(uri lsproto.DocumentUri, version int32, changes []lsproto.TextDocumentContentChangeEvent) (before *Document, after *Document, err error) {
	err = s.update(uri, func(doc *Document) (*Document, error) {
		if version <= doc.Version {
			return nil, fmt.Errorf("%w: %s got version %d, have %d", ErrStaleVersion, uri, version, doc.Version)
		}
		content, err := applyChanges(s.converters, doc, changes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", uri, err)
		}
		before = doc
		after = doc.withContent(version, content)
		return after, nil
	})
	return before, after, err
}

// Save does not change the version. When text is given it must match the
// tracked content.
func (s *DocumentStore) Save(uri lsproto.DocumentUri, text *string) (*Document, error) {
	var saved *Document
	err := s.update(uri, func(doc *Document) (*Document, error) {
		if text != nil && xxh3.HashString128(*text) != doc.Hash() {
			return nil, fmt.Errorf("%w: %s at version %d", ErrContentMismatch, uri, doc.Version)
		}
		saved = doc
		return doc, nil
	})
	return saved, err
}

// Close stops tracking uri and returns the last tracked state.
func (s *DocumentStore) Close(uri lsproto.DocumentUri) (*Document, error) {
	entry, ok := s.docs.Load(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	doc := entry.doc
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	entry.doc = nil
	s.docs.CompareAndDelete(uri, entry)
	return doc, nil
}

func (s *DocumentStore) Get(uri lsproto.DocumentUri) (*Document, error) {
	entry, ok := s.docs.Load(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	return entry.doc, nil
}

// URIs returns the open documents in sorted order.
func (s *DocumentStore) URIs() []lsproto.DocumentUri {
	var uris []lsproto.DocumentUri
	s.docs.Range(func(uri lsproto.DocumentUri, entry *documentEntry) bool {
		entry.mu.Lock()
		open := entry.doc != nil
		entry.mu.Unlock()
		if open {
			uris = append(uris, uri)
		}
		return true
	})
	slices.SortFunc(uris, func(a, b lsproto.DocumentUri) int {
		return strings.Compare(string(a), string(b))
	})
	return uris
}

func (s *DocumentStore) update(uri lsproto.DocumentUri, fn func(*Document) (*Document, error)) error {
	entry, ok := s.docs.Load(uri)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.doc == nil {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}
	next, err := fn(entry.doc)
	if err != nil {
		return err
	}
	entry.doc = next
	return nil
}
