package project_test

import (
	"strings"
	"testing"

	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
	"github.com/stubls/stubls/internal/project/logging"
	"gotest.tools/v3/assert"
)

func newSession(t *testing.T, verbose bool) (*project.Session, logging.LogCollector) {
	t.Helper()
	logger := logging.NewLogCollector()
	t.Cleanup(logger.Close)
	logger.SetVerbose(verbose)
	return project.NewSession(&project.SessionInit{
		Options: &project.SessionOptions{PositionEncoding: lsproto.PositionEncodingKindUTF16},
		Logger:  logger,
	}), logger
}

func TestSessionLifecycleScenario(t *testing.T) {
	t.Parallel()

	session, logger := newSession(t, true)
	assert.Equal(t, session.Options().SyncKind, lsproto.TextDocumentSyncKindIncremental)

	assert.NilError(t, session.DidOpenFile(uri, 1, "hello", "plaintext"))
	assert.NilError(t, session.DidChangeFile(uri, 2, []lsproto.TextDocumentContentChangeEvent{rangeEdit(0, 0, 0, 5, "HELLO")}))

	doc, err := session.Documents().Get(uri)
	assert.NilError(t, err)
	assert.Equal(t, doc.Content, "HELLO")

	assert.NilError(t, session.DidCloseFile(uri))
	err = session.DidChangeFile(uri, 3, []lsproto.TextDocumentContentChangeEvent{wholeDocument("x")})
	assert.ErrorIs(t, err, project.ErrUnknownDocument)

	out := logger.String()
	assert.Assert(t, strings.Contains(out, "change file:///a.txt: version 2, 1 edit(s), +1 -1 lines"), out)
	assert.Assert(t, strings.Contains(out, "close file:///a.txt: dropped version 2"), out)
}

func TestSessionApplyResult(t *testing.T) {
	t.Parallel()

	session, _ := newSession(t, false)
	res, err := session.Apply(project.FileChange{Kind: project.FileChangeKindOpen, URI: uri, Version: 1, Content: "a", LanguageID: "plaintext"})
	assert.NilError(t, err)
	openHash := res.Hash

	res, err = session.Apply(project.FileChange{Kind: project.FileChangeKindClose, URI: uri})
	assert.NilError(t, err)
	assert.Equal(t, res.Hash, openHash)
	assert.Equal(t, res.Document.LanguageID, "plaintext")
}

func TestSessionClose(t *testing.T) {
	t.Parallel()

	session, logger := newSession(t, false)
	assert.NilError(t, session.DidOpenFile("file:///1", 1, "", "plaintext"))
	assert.NilError(t, session.DidOpenFile("file:///2", 1, "", "plaintext"))
	session.Close()

	_, err := session.Documents().Get("file:///1")
	assert.ErrorIs(t, err, project.ErrUnknownDocument)
	assert.Assert(t, strings.Contains(logger.String(), "session closed with 2 open document(s)"))
}
