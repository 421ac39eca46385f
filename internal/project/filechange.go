package project

import (
	"fmt"

	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/zeebo/xxh3"
)

type FileChangeKind int

const (
	FileChangeKindOpen FileChangeKind = iota
	FileChangeKindClose
	FileChangeKindChange
	FileChangeKindSave
)

func (k FileChangeKind) String() string {
	switch k {
	case FileChangeKindOpen:
		return "open"
	case FileChangeKindClose:
		return "close"
	case FileChangeKindChange:
		return "change"
	case FileChangeKindSave:
		return "save"
	}
	return fmt.Sprintf("FileChangeKind(%d)", int(k))
}

// FileChange is one document synchronization event, as received from the client.
type FileChange struct {
	Kind       FileChangeKind
	URI        lsproto.DocumentUri
	Version    int32                                    // Only set for Open/Change
	Content    string                                   // Only set for Open
	LanguageID string                                   // Only set for Open
	Changes    []lsproto.TextDocumentContentChangeEvent // Only set for Change
	SavedText  *string                                  // Only set for Save, when the client includes text
}

// FileChangeResult describes the effect of an applied FileChange.
type FileChangeResult struct {
	// Document is the tracked state after the change; for Close it is the
	// state that was discarded.
	Document *Document
	// Hash is the content hash of Document. For Close it identifies the
	// content that was dropped.
	Hash xxh3.Uint128
	// Summary is only set for Change.
	Summary ChangeSummary
}
