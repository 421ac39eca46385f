package project

import (
	"fmt"

	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project/logging"
)

// SessionOptions are the immutable options negotiated at initialize.
type SessionOptions struct {
	PositionEncoding lsproto.PositionEncodingKind
	SyncKind         lsproto.TextDocumentSyncKind
}

type SessionInit struct {
	Options *SessionOptions
	Logger  logging.Logger
}

// Session receives textDocument synchronization events from the LSP server
// and applies them to the document store.
type Session struct {
	options *SessionOptions
	logger  logging.Logger
	store   *DocumentStore
}

func NewSession(init *SessionInit) *Session {
	syncKind := init.Options.SyncKind
	if syncKind == lsproto.TextDocumentSyncKindNone {
		syncKind = lsproto.TextDocumentSyncKindIncremental
	}
	options := *init.Options
	options.SyncKind = syncKind
	return &Session{
		options: &options,
		logger:  init.Logger,
		store:   NewDocumentStore(lsconv.NewConverters(init.Options.PositionEncoding)),
	}
}

func (s *Session) Options() *SessionOptions {
	return s.options
}

func (s *Session) Documents() Reader {
	return s.store
}

func (s *Session) DidOpenFile(uri lsproto.DocumentUri, version int32, content string, languageID string) error {
	_, err := s.Apply(FileChange{
		Kind:       FileChangeKindOpen,
		URI:        uri,
		Version:    version,
		Content:    content,
		LanguageID: languageID,
	})
	return err
}

func (s *Session) DidChangeFile(uri lsproto.DocumentUri, version int32, changes []lsproto.TextDocumentContentChangeEvent) error {
	_, err := s.Apply(FileChange{
		Kind:    FileChangeKindChange,
		URI:     uri,
		Version: version,
		Changes: changes,
	})
	return err
}

func (s *Session) DidSaveFile(uri lsproto.DocumentUri, text *string) error {
	_, err := s.Apply(FileChange{
		Kind:      FileChangeKindSave,
		URI:       uri,
		SavedText: text,
	})
	return err
}

func (s *Session) DidCloseFile(uri lsproto.DocumentUri) error {
	_, err := s.Apply(FileChange{
		Kind: FileChangeKindClose,
		URI:  uri,
	})
	return err
}

// Apply applies a single synchronization event to the store.
func (s *Session) Apply(change FileChange) (FileChangeResult, error) {
	var result FileChangeResult
	switch change.Kind {
	case FileChangeKindOpen:
		doc, err := s.store.Open(change.URI, change.LanguageID, change.Version, change.Content, s.options.SyncKind)
		if err != nil {
			return result, err
		}
		result.Document = doc
	case FileChangeKindChange:
		before, after, err := s.store.ApplyChanges(change.URI, change.Version, change.Changes)
		if err != nil {
			return result, err
		}
		result.Document = after
		if s.logger.IsVerbose() {
			result.Summary = SummarizeChange(before.Content, after.Content)
		}
	case FileChangeKindSave:
		doc, err := s.store.Save(change.URI, change.SavedText)
		if err != nil {
			return result, err
		}
		result.Document = doc
	case FileChangeKindClose:
		doc, err := s.store.Close(change.URI)
		if err != nil {
			return result, err
		}
		result.Document = doc
	default:
		return result, fmt.Errorf("unknown file change kind %v", change.Kind)
	}
	result.Hash = result.Document.Hash()
	s.logChange(change, result)
	return result, nil
}

func (s *Session) logChange(change FileChange, result FileChangeResult) {
	logger := s.logger.Verbose()
	if logger == nil {
		return
	}
	doc := result.Document
	switch change.Kind {
	case FileChangeKindChange:
		logger.Logf("%s %s: version %d, %d edit(s), +%d -%d lines", change.Kind, doc.URI, doc.Version, len(change.Changes), result.Summary.LinesInserted, result.Summary.LinesDeleted)
	case FileChangeKindClose:
		logger.Logf("%s %s: dropped version %d, content hash %x", change.Kind, doc.URI, doc.Version, result.Hash.Bytes())
	default:
		logger.Logf("%s %s: version %d, %d bytes", change.Kind, doc.URI, doc.Version, len(doc.Content))
	}
}

// Close drops every tracked document.
func (s *Session) Close() {
	uris := s.store.URIs()
	for _, uri := range uris {
		_, _ = s.store.Close(uri)
	}
	if len(uris) > 0 {
		s.logger.Logf("session closed with %d open document(s)", len(uris))
	}
}
