package lsproto

import (
	"errors"

	"github.com/go-json-experiment/json/jsontext"
)

type PositionEncodingKind string

const (
	PositionEncodingKindUTF8  PositionEncodingKind = "utf-8"
	PositionEncodingKindUTF16 PositionEncodingKind = "utf-16"
	PositionEncodingKindUTF32 PositionEncodingKind = "utf-32"
)

type TextDocumentSyncKind uint32

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

type TraceValue string

const (
	TraceValueOff      TraceValue = "off"
	TraceValueMessages TraceValue = "messages"
	TraceValueVerbose  TraceValue = "verbose"
)

type MessageType uint32

const (
	MessageTypeError   MessageType = 1
	MessageTypeWarning MessageType = 2
	MessageTypeInfo    MessageType = 3
	MessageTypeLog     MessageType = 4
)

type MarkupKind string

const (
	MarkupKindPlainText MarkupKind = "plaintext"
	MarkupKindMarkdown  MarkupKind = "markdown"
)

type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type TextDocumentIdentifier struct {
	Uri DocumentUri `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	Uri     DocumentUri `json:"uri"`
	Version int32       `json:"version"`
}

type TextDocumentItem struct {
	Uri        DocumentUri `json:"uri"`
	LanguageId string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

// Lifecycle

type ClientInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitzero"`
}

type ServerInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitzero"`
}

type WorkspaceFolder struct {
	Uri  URI    `json:"uri"`
	Name string `json:"name"`
}

type InitializeParams struct {
	ProcessId             *int32              `json:"processId"`
	ClientInfo            *ClientInfo         `json:"clientInfo,omitzero"`
	Locale                *string             `json:"locale,omitzero"`
	RootPath              *string             `json:"rootPath,omitzero"`
	RootUri               *DocumentUri        `json:"rootUri"`
	InitializationOptions jsontext.Value      `json:"initializationOptions,omitzero"`
	Capabilities          *ClientCapabilities `json:"capabilities"`
	Trace                 *TraceValue         `json:"trace,omitzero"`
	WorkspaceFolders      *[]WorkspaceFolder  `json:"workspaceFolders,omitzero"`
}

func (p *InitializeParams) validate() error {
	if p == nil || p.Capabilities == nil {
		return errors.New("initialize: missing capabilities")
	}
	return nil
}

type ClientCapabilities struct {
	Workspace    *WorkspaceClientCapabilities    `json:"workspace,omitzero"`
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitzero"`
	Window       *WindowClientCapabilities       `json:"window,omitzero"`
	General      *GeneralClientCapabilities      `json:"general,omitzero"`
}

type WorkspaceClientCapabilities struct {
	Configuration          *bool                                     `json:"configuration,omitzero"`
	WorkspaceFolders       *bool                                     `json:"workspaceFolders,omitzero"`
	DidChangeConfiguration *DidChangeConfigurationClientCapabilities `json:"didChangeConfiguration,omitzero"`
}

type DidChangeConfigurationClientCapabilities struct {
	DynamicRegistration *bool `json:"dynamicRegistration,omitzero"`
}

type TextDocumentClientCapabilities struct {
	Hover        *HoverClientCapabilities        `json:"hover,omitzero"`
	FoldingRange *FoldingRangeClientCapabilities `json:"foldingRange,omitzero"`
}

type HoverClientCapabilities struct {
	ContentFormat *[]MarkupKind `json:"contentFormat,omitzero"`
}

type FoldingRangeClientCapabilities struct {
	LineFoldingOnly *bool `json:"lineFoldingOnly,omitzero"`
}

type WindowClientCapabilities struct {
	WorkDoneProgress *bool `json:"workDoneProgress,omitzero"`
}

type GeneralClientCapabilities struct {
	PositionEncodings *[]PositionEncodingKind `json:"positionEncodings,omitzero"`
}

type InitializeResult struct {
	Capabilities *ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo         `json:"serverInfo,omitzero"`
}

type InitializedParams struct{}

type ServerCapabilities struct {
	PositionEncoding                 *PositionEncodingKind            `json:"positionEncoding,omitzero"`
	TextDocumentSync                 *TextDocumentSyncOptions         `json:"textDocumentSync,omitzero"`
	CompletionProvider               *CompletionOptions               `json:"completionProvider,omitzero"`
	HoverProvider                    *bool                            `json:"hoverProvider,omitzero"`
	SignatureHelpProvider            *SignatureHelpOptions            `json:"signatureHelpProvider,omitzero"`
	DeclarationProvider              *bool                            `json:"declarationProvider,omitzero"`
	DefinitionProvider               *bool                            `json:"definitionProvider,omitzero"`
	TypeDefinitionProvider           *bool                            `json:"typeDefinitionProvider,omitzero"`
	ImplementationProvider           *bool                            `json:"implementationProvider,omitzero"`
	ReferencesProvider               *bool                            `json:"referencesProvider,omitzero"`
	DocumentHighlightProvider        *bool                            `json:"documentHighlightProvider,omitzero"`
	DocumentSymbolProvider           *bool                            `json:"documentSymbolProvider,omitzero"`
	CodeActionProvider               *CodeActionOptions               `json:"codeActionProvider,omitzero"`
	CodeLensProvider                 *CodeLensOptions                 `json:"codeLensProvider,omitzero"`
	DocumentLinkProvider             *DocumentLinkOptions             `json:"documentLinkProvider,omitzero"`
	ColorProvider                    *bool                            `json:"colorProvider,omitzero"`
	WorkspaceSymbolProvider          *WorkspaceSymbolOptions          `json:"workspaceSymbolProvider,omitzero"`
	DocumentFormattingProvider       *bool                            `json:"documentFormattingProvider,omitzero"`
	DocumentRangeFormattingProvider  *bool                            `json:"documentRangeFormattingProvider,omitzero"`
	DocumentOnTypeFormattingProvider *DocumentOnTypeFormattingOptions `json:"documentOnTypeFormattingProvider,omitzero"`
	RenameProvider                   *RenameOptions                   `json:"renameProvider,omitzero"`
	FoldingRangeProvider             *bool                            `json:"foldingRangeProvider,omitzero"`
	SelectionRangeProvider           *bool                            `json:"selectionRangeProvider,omitzero"`
	ExecuteCommandProvider           *ExecuteCommandOptions           `json:"executeCommandProvider,omitzero"`
	CallHierarchyProvider            *bool                            `json:"callHierarchyProvider,omitzero"`
	LinkedEditingRangeProvider       *bool                            `json:"linkedEditingRangeProvider,omitzero"`
	SemanticTokensProvider           *SemanticTokensOptions           `json:"semanticTokensProvider,omitzero"`
	MonikerProvider                  *bool                            `json:"monikerProvider,omitzero"`
	TypeHierarchyProvider            *bool                            `json:"typeHierarchyProvider,omitzero"`
	InlineValueProvider              *bool                            `json:"inlineValueProvider,omitzero"`
	InlayHintProvider                *InlayHintOptions                `json:"inlayHintProvider,omitzero"`
	DiagnosticProvider               *DiagnosticOptions               `json:"diagnosticProvider,omitzero"`
	Workspace                        *WorkspaceOptions                `json:"workspace,omitzero"`
}

type TextDocumentSyncOptions struct {
	OpenClose         *bool                 `json:"openClose,omitzero"`
	Change            *TextDocumentSyncKind `json:"change,omitzero"`
	WillSave          *bool                 `json:"willSave,omitzero"`
	WillSaveWaitUntil *bool                 `json:"willSaveWaitUntil,omitzero"`
	Save              *SaveOptions          `json:"save,omitzero"`
}

type SaveOptions struct {
	IncludeText *bool `json:"includeText,omitzero"`
}

type CompletionOptions struct {
	TriggerCharacters *[]string `json:"triggerCharacters,omitzero"`
	ResolveProvider   *bool     `json:"resolveProvider,omitzero"`
}

type SignatureHelpOptions struct {
	TriggerCharacters *[]string `json:"triggerCharacters,omitzero"`
}

type CodeActionOptions struct {
	ResolveProvider *bool `json:"resolveProvider,omitzero"`
}

type CodeLensOptions struct {
	ResolveProvider *bool `json:"resolveProvider,omitzero"`
}

type DocumentLinkOptions struct {
	ResolveProvider *bool `json:"resolveProvider,omitzero"`
}

type WorkspaceSymbolOptions struct {
	ResolveProvider *bool `json:"resolveProvider,omitzero"`
}

type DocumentOnTypeFormattingOptions struct {
	FirstTriggerCharacter string    `json:"firstTriggerCharacter"`
	MoreTriggerCharacter  *[]string `json:"moreTriggerCharacter,omitzero"`
}

type RenameOptions struct {
	PrepareProvider *bool `json:"prepareProvider,omitzero"`
}

type ExecuteCommandOptions struct {
	Commands []string `json:"commands"`
}

type SemanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

type SemanticTokensOptions struct {
	Legend SemanticTokensLegend `json:"legend"`
	Range  *bool                `json:"range,omitzero"`
	Full   *SemanticTokensFull  `json:"full,omitzero"`
}

type SemanticTokensFull struct {
	Delta *bool `json:"delta,omitzero"`
}

type InlayHintOptions struct {
	ResolveProvider *bool `json:"resolveProvider,omitzero"`
}

type DiagnosticOptions struct {
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}

type WorkspaceOptions struct {
	WorkspaceFolders *WorkspaceFoldersServerCapabilities `json:"workspaceFolders,omitzero"`
	FileOperations   *FileOperationOptions               `json:"fileOperations,omitzero"`
}

type FileOperationOptions struct {
	DidCreate  *FileOperationRegistrationOptions `json:"didCreate,omitzero"`
	WillCreate *FileOperationRegistrationOptions `json:"willCreate,omitzero"`
	DidRename  *FileOperationRegistrationOptions `json:"didRename,omitzero"`
	WillRename *FileOperationRegistrationOptions `json:"willRename,omitzero"`
	DidDelete  *FileOperationRegistrationOptions `json:"didDelete,omitzero"`
	WillDelete *FileOperationRegistrationOptions `json:"willDelete,omitzero"`
}

type FileOperationRegistrationOptions struct {
	Filters []FileOperationFilter `json:"filters"`
}

type FileOperationFilter struct {
	Scheme  *string              `json:"scheme,omitzero"`
	Pattern FileOperationPattern `json:"pattern"`
}

type FileOperationPattern struct {
	Glob string `json:"glob"`
}

type WorkspaceFoldersServerCapabilities struct {
	Supported           *bool `json:"supported,omitzero"`
	ChangeNotifications *bool `json:"changeNotifications,omitzero"`
}

type CancelParams struct {
	Id *ID `json:"id"`
}

func (p *CancelParams) validate() error {
	if p == nil || p.Id == nil {
		return errors.New("$/cancelRequest: missing id")
	}
	return nil
}

type SetTraceParams struct {
	Value TraceValue `json:"value"`
}

func (p *SetTraceParams) validate() error {
	if p == nil {
		return errors.New("$/setTrace: missing params")
	}
	switch p.Value {
	case TraceValueOff, TraceValueMessages, TraceValueVerbose:
		return nil
	}
	return errors.New("$/setTrace: unknown trace value " + string(p.Value))
}

// Document synchronization

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

func (p *DidOpenTextDocumentParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/didOpen: missing textDocument.uri")
	}
	return nil
}

func (p *DidOpenTextDocumentParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

// TextDocumentContentChangeEvent is either a range replacement or, when Range
// is nil, the whole new content of the document.
type TextDocumentContentChangeEvent struct {
	Range       *Range  `json:"range,omitzero"`
	RangeLength *uint32 `json:"rangeLength,omitzero"`
	Text        string  `json:"text"`
}

func (e TextDocumentContentChangeEvent) IsWholeDocument() bool {
	return e.Range == nil
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

func (p *DidChangeTextDocumentParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/didChange: missing textDocument.uri")
	}
	return nil
}

func (p *DidChangeTextDocumentParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

type TextDocumentSaveReason uint32

type WillSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Reason       TextDocumentSaveReason `json:"reason"`
}

func (p *WillSaveTextDocumentParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/willSave: missing textDocument.uri")
	}
	return nil
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitzero"`
}

func (p *DidSaveTextDocumentParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/didSave: missing textDocument.uri")
	}
	return nil
}

func (p *DidSaveTextDocumentParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

func (p *DidCloseTextDocumentParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/didClose: missing textDocument.uri")
	}
	return nil
}

func (p *DidCloseTextDocumentParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

// Features

type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

func (p *HoverParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/hover: missing textDocument.uri")
	}
	return nil
}

func (p *HoverParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

type MarkupContent struct {
	Kind  MarkupKind `json:"kind"`
	Value string     `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitzero"`
}

type FoldingRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

func (p *FoldingRangeParams) validate() error {
	if p == nil || p.TextDocument.Uri == "" {
		return errors.New("textDocument/foldingRange: missing textDocument.uri")
	}
	return nil
}

func (p *FoldingRangeParams) TextDocumentURI() DocumentUri {
	return p.TextDocument.Uri
}

type FoldingRangeKind string

const (
	FoldingRangeKindComment FoldingRangeKind = "comment"
	FoldingRangeKindImports FoldingRangeKind = "imports"
	FoldingRangeKindRegion  FoldingRangeKind = "region"
)

type FoldingRange struct {
	StartLine      uint32            `json:"startLine"`
	StartCharacter *uint32           `json:"startCharacter,omitzero"`
	EndLine        uint32            `json:"endLine"`
	EndCharacter   *uint32           `json:"endCharacter,omitzero"`
	Kind           *FoldingRangeKind `json:"kind,omitzero"`
}

// Workspace

type DidChangeConfigurationParams struct {
	Settings jsontext.Value `json:"settings,omitzero"`
}

type WorkspaceFoldersChangeEvent struct {
	Added   []WorkspaceFolder `json:"added"`
	Removed []WorkspaceFolder `json:"removed"`
}

type DidChangeWorkspaceFoldersParams struct {
	Event WorkspaceFoldersChangeEvent `json:"event"`
}

type FileChangeType uint32

const (
	FileChangeTypeCreated FileChangeType = 1
	FileChangeTypeChanged FileChangeType = 2
	FileChangeTypeDeleted FileChangeType = 3
)

type FileEvent struct {
	Uri  DocumentUri    `json:"uri"`
	Type FileChangeType `json:"type"`
}

type DidChangeWatchedFilesParams struct {
	Changes []FileEvent `json:"changes"`
}

type FileCreate struct {
	Uri string `json:"uri"`
}

type CreateFilesParams struct {
	Files []FileCreate `json:"files"`
}

type FileRename struct {
	OldUri string `json:"oldUri"`
	NewUri string `json:"newUri"`
}

type RenameFilesParams struct {
	Files []FileRename `json:"files"`
}

type FileDelete struct {
	Uri string `json:"uri"`
}

type DeleteFilesParams struct {
	Files []FileDelete `json:"files"`
}

type ConfigurationItem struct {
	ScopeUri *URI   `json:"scopeUri,omitzero"`
	Section  string `json:"section,omitzero"`
}

type ConfigurationParams struct {
	Items []ConfigurationItem `json:"items"`
}

// Window

type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}
