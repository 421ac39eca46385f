package lsp

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/stubls/stubls/internal/core"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
	"golang.org/x/text/language"
)

type handlerFunc func(*Server, context.Context, *lsproto.RequestMessage) error

type handlerMap map[lsproto.Method]handlerFunc

// handlers are the methods the server itself owns. They run on the dispatch
// goroutine in arrival order.
var handlers = sync.OnceValue(func() handlerMap {
	handlers := make(handlerMap)

	registerRequestHandler(handlers, lsproto.InitializeInfo, (*Server).handleInitialize)
	registerNotificationHandler(handlers, lsproto.InitializedInfo, (*Server).handleInitialized)
	registerRequestHandler(handlers, lsproto.ShutdownInfo, (*Server).handleShutdown)
	registerNotificationHandler(handlers, lsproto.ExitInfo, (*Server).handleExit)
	registerNotificationHandler(handlers, lsproto.SetTraceInfo, (*Server).handleSetTrace)

	registerNotificationHandler(handlers, lsproto.TextDocumentDidOpenInfo, (*Server).handleDidOpen)
	registerNotificationHandler(handlers, lsproto.TextDocumentDidChangeInfo, (*Server).handleDidChange)
	registerNotificationHandler(handlers, lsproto.TextDocumentWillSaveInfo, (*Server).handleWillSave)
	registerNotificationHandler(handlers, lsproto.TextDocumentDidSaveInfo, (*Server).handleDidSave)
	registerNotificationHandler(handlers, lsproto.TextDocumentDidCloseInfo, (*Server).handleDidClose)

	registerNotificationHandler(handlers, lsproto.WorkspaceDidChangeConfigurationInfo, (*Server).handleDidChangeConfiguration)
	registerNotificationHandler(handlers, lsproto.WorkspaceDidChangeWorkspaceFoldersInfo, (*Server).handleDidChangeWorkspaceFolders)
	registerNotificationHandler(handlers, lsproto.WorkspaceDidChangeWatchedFilesInfo, (*Server).handleDidChangeWatchedFiles)
	registerNotificationHandler(handlers, lsproto.WorkspaceDidCreateFilesInfo, (*Server).handleDidCreateFiles)
	registerNotificationHandler(handlers, lsproto.WorkspaceDidRenameFilesInfo, (*Server).handleDidRenameFiles)
	registerNotificationHandler(handlers, lsproto.WorkspaceDidDeleteFilesInfo, (*Server).handleDidDeleteFiles)

	return handlers
})

func registerNotificationHandler[Req any](handlers handlerMap, info lsproto.NotificationInfo[Req], fn func(*Server, context.Context, Req) error) {
	handlers[info.Method] = func(s *Server, ctx context.Context, req *lsproto.RequestMessage) error {
		params, err := lsproto.UnmarshalParams[Req](req.Params)
		if err != nil {
			return err
		}
		return fn(s, ctx, params)
	}
}

func registerRequestHandler[Req, Resp any](handlers handlerMap, info lsproto.RequestInfo[Req, Resp], fn func(*Server, context.Context, Req) (Resp, error)) {
	handlers[info.Method] = func(s *Server, ctx context.Context, req *lsproto.RequestMessage) error {
		params, err := lsproto.UnmarshalParams[Req](req.Params)
		if err != nil {
			return err
		}
		resp, err := fn(s, ctx, params)
		if err != nil {
			return err
		}
		s.sendResult(req.ID, resp)
		return nil
	}
}

func (s *Server) handleInitialize(ctx context.Context, params *lsproto.InitializeParams) (*lsproto.InitializeResult, error) {
	locale := language.Und
	if params.Locale != nil && *params.Locale != "" {
		var err error
		if locale, err = language.Parse(*params.Locale); err != nil {
			return nil, fmt.Errorf("%w: invalid locale %q: %w", lsproto.ErrInvalidParams, *params.Locale, err)
		}
	}

	s.initializeParams = params
	s.locale = locale
	s.positionEncoding = negotiatePositionEncoding(s.positionEncodings, params.Capabilities)
	if params.Trace != nil && *params.Trace == lsproto.TraceValueVerbose {
		s.logger.SetVerbose(true)
	}
	if params.ClientInfo != nil {
		s.logger.Logf("client: %s %s", params.ClientInfo.Name, deref(params.ClientInfo.Version))
	}
	if params.WorkspaceFolders != nil {
		for _, folder := range *params.WorkspaceFolders {
			s.workspaceFolders.Add(folder.Uri)
		}
	}

	s.session = project.NewSession(&project.SessionInit{
		Options: &project.SessionOptions{
			PositionEncoding: s.positionEncoding,
			SyncKind:         s.syncKind,
		},
		Logger: s.logger,
	})
	s.setPhase(PhaseInitializing)

	return &lsproto.InitializeResult{
		ServerInfo: &lsproto.ServerInfo{
			Name:    "stubls",
			Version: ptrTo(core.Version()),
		},
		Capabilities: s.capabilities(),
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, params *lsproto.InitializedParams) error {
	s.setPhase(PhaseRunning)
	sendNotification(s, lsproto.WindowLogMessageInfo, &lsproto.LogMessageParams{
		Type:    lsproto.MessageTypeInfo,
		Message: "server initialized!",
	})
	if s.clientSupportsConfiguration() {
		go s.pullConfiguration(ctx)
	}
	return nil
}

func (s *Server) handleShutdown(ctx context.Context, params jsontext.Value) (lsproto.Null, error) {
	s.shutdownRequested.Store(true)
	s.setPhase(PhaseShuttingDown)
	s.drainRequests(s.shutdownGrace)
	s.session.Close()
	return lsproto.Null{}, nil
}

func (s *Server) handleExit(ctx context.Context, params jsontext.Value) error {
	s.setPhase(PhaseStopped)
	return errExit
}

func (s *Server) handleSetTrace(ctx context.Context, params *lsproto.SetTraceParams) error {
	s.applyTrace(params.Value)
	return nil
}

func (s *Server) applyTrace(value lsproto.TraceValue) {
	switch value {
	case lsproto.TraceValueVerbose:
		s.logger.SetVerbose(true)
	case lsproto.TraceValueMessages, lsproto.TraceValueOff:
		s.logger.SetVerbose(false)
	}
}

func (s *Server) handleDidOpen(ctx context.Context, params *lsproto.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	return s.session.DidOpenFile(doc.Uri, doc.Version, doc.Text, doc.LanguageId)
}

func (s *Server) handleDidChange(ctx context.Context, params *lsproto.DidChangeTextDocumentParams) error {
	return s.session.DidChangeFile(params.TextDocument.Uri, params.TextDocument.Version, params.ContentChanges)
}

func (s *Server) handleWillSave(ctx context.Context, params *lsproto.WillSaveTextDocumentParams) error {
	if _, err := s.session.Documents().Get(params.TextDocument.Uri); err != nil {
		return err
	}
	s.logger.Logf("will save %s (reason %d)", params.TextDocument.Uri, params.Reason)
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, params *lsproto.DidSaveTextDocumentParams) error {
	return s.session.DidSaveFile(params.TextDocument.Uri, params.Text)
}

func (s *Server) handleDidClose(ctx context.Context, params *lsproto.DidCloseTextDocumentParams) error {
	return s.session.DidCloseFile(params.TextDocument.Uri)
}

func (s *Server) handleDidChangeConfiguration(ctx context.Context, params *lsproto.DidChangeConfigurationParams) error {
	if s.clientSupportsConfiguration() {
		go s.pullConfiguration(ctx)
		return nil
	}
	// Push model: the settings object is keyed by section.
	if params == nil || len(params.Settings) == 0 || params.Settings.Kind() != '{' {
		return nil
	}
	var sections map[string]jsontext.Value
	if err := json.Unmarshal(params.Settings, &sections); err != nil {
		return fmt.Errorf("%w: settings: %w", lsproto.ErrInvalidParams, err)
	}
	if section, ok := sections[s.configurationSection]; ok {
		return s.applySettings(section)
	}
	return nil
}

func (s *Server) handleDidChangeWorkspaceFolders(ctx context.Context, params *lsproto.DidChangeWorkspaceFoldersParams) error {
	for _, folder := range params.Event.Removed {
		if s.workspaceFolders.Has(folder.Uri) {
			s.workspaceFolders.Delete(folder.Uri)
			s.logger.Logf("workspace folder removed: %s", folder.Uri)
		}
	}
	for _, folder := range params.Event.Added {
		if !s.workspaceFolders.Has(folder.Uri) {
			s.workspaceFolders.Add(folder.Uri)
			s.logger.Logf("workspace folder added: %s", folder.Uri)
		}
	}
	if logger := s.logger.Verbose(); logger != nil {
		logger.Logf("workspace folders: %v", slices.Sorted(s.workspaceFolders.Keys()))
	}
	s.logger.Logf("%d workspace folder(s)", s.workspaceFolders.Len())
	return nil
}

func (s *Server) handleDidChangeWatchedFiles(ctx context.Context, params *lsproto.DidChangeWatchedFilesParams) error {
	s.logger.Logf("%d watched file(s) changed", len(params.Changes))
	if logger := s.logger.Verbose(); logger != nil {
		for _, change := range params.Changes {
			logger.Logf("  %s (%d)", change.Uri, change.Type)
		}
	}
	return nil
}

func (s *Server) handleDidCreateFiles(ctx context.Context, params *lsproto.CreateFilesParams) error {
	s.logger.Logf("%d file(s) created", len(params.Files))
	return nil
}

func (s *Server) handleDidRenameFiles(ctx context.Context, params *lsproto.RenameFilesParams) error {
	for _, file := range params.Files {
		s.logger.Logf("file renamed: %s -> %s", file.OldUri, file.NewUri)
	}
	return nil
}

func (s *Server) handleDidDeleteFiles(ctx context.Context, params *lsproto.DeleteFilesParams) error {
	s.logger.Logf("%d file(s) deleted", len(params.Files))
	return nil
}

func (s *Server) clientSupportsConfiguration() bool {
	caps := s.initializeParams.Capabilities
	return caps.Workspace != nil && lsproto.PtrIsTrue(caps.Workspace.Configuration)
}

// settings is the shape of the server's configuration section.
type settings struct {
	Trace *lsproto.TraceValue `json:"trace,omitzero"`
	// RequestTimeout is a duration string or a number of milliseconds.
	RequestTimeout jsontext.Value `json:"requestTimeout,omitzero"`
}

func (s *Server) pullConfiguration(ctx context.Context) {
	result, err := sendClientRequest(ctx, s, lsproto.WorkspaceConfigurationInfo, &lsproto.ConfigurationParams{
		Items: []lsproto.ConfigurationItem{{Section: s.configurationSection}},
	})
	if err != nil {
		s.logger.Warn("failed to pull configuration: ", err)
		return
	}
	if len(result) == 0 {
		return
	}
	if err := s.applySettings(result[0]); err != nil {
		s.logger.Warn("ignoring configuration: ", err)
	}
}

func (s *Server) applySettings(raw jsontext.Value) error {
	if len(raw) == 0 || raw.Kind() == 'n' {
		return nil
	}
	var cfg settings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", lsproto.ErrInvalidParams, s.configurationSection, err)
	}
	if len(cfg.RequestTimeout) != 0 {
		timeout, err := parseTimeout(cfg.RequestTimeout)
		if err != nil {
			return fmt.Errorf("%w: %s.requestTimeout: %w", lsproto.ErrInvalidParams, s.configurationSection, err)
		}
		s.SetRequestTimeout(timeout)
	}
	if cfg.Trace != nil {
		s.applyTrace(*cfg.Trace)
	}
	s.logger.Logf("configuration applied: verbose=%t requestTimeout=%s", s.logger.IsVerbose(), s.RequestTimeout())
	return nil
}

func parseTimeout(raw jsontext.Value) (time.Duration, error) {
	var timeout time.Duration
	switch raw.Kind() {
	case '0':
		var ms int64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return 0, err
		}
		timeout = time.Duration(ms) * time.Millisecond
	case '"':
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return 0, err
		}
		var err error
		if timeout, err = time.ParseDuration(value); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("expected a duration, got %s", raw)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("negative timeout %s", timeout)
	}
	return timeout, nil
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
