package lsproto

import "github.com/go-json-experiment/json/jsontext"

const (
	MethodInitialize    Method = "initialize"
	MethodInitialized   Method = "initialized"
	MethodShutdown      Method = "shutdown"
	MethodExit          Method = "exit"
	MethodCancelRequest Method = "$/cancelRequest"
	MethodSetTrace      Method = "$/setTrace"
	MethodProgress      Method = "$/progress"

	MethodTextDocumentDidOpen           Method = "textDocument/didOpen"
	MethodTextDocumentDidChange         Method = "textDocument/didChange"
	MethodTextDocumentWillSave          Method = "textDocument/willSave"
	MethodTextDocumentWillSaveWaitUntil Method = "textDocument/willSaveWaitUntil"
	MethodTextDocumentDidSave           Method = "textDocument/didSave"
	MethodTextDocumentDidClose          Method = "textDocument/didClose"

	MethodTextDocumentDeclaration             Method = "textDocument/declaration"
	MethodTextDocumentDefinition              Method = "textDocument/definition"
	MethodTextDocumentTypeDefinition          Method = "textDocument/typeDefinition"
	MethodTextDocumentImplementation          Method = "textDocument/implementation"
	MethodTextDocumentReferences              Method = "textDocument/references"
	MethodTextDocumentPrepareCallHierarchy    Method = "textDocument/prepareCallHierarchy"
	MethodCallHierarchyIncomingCalls          Method = "callHierarchy/incomingCalls"
	MethodCallHierarchyOutgoingCalls          Method = "callHierarchy/outgoingCalls"
	MethodTextDocumentPrepareTypeHierarchy    Method = "textDocument/prepareTypeHierarchy"
	MethodTypeHierarchySupertypes             Method = "typeHierarchy/supertypes"
	MethodTypeHierarchySubtypes               Method = "typeHierarchy/subtypes"
	MethodTextDocumentDocumentHighlight       Method = "textDocument/documentHighlight"
	MethodTextDocumentDocumentLink            Method = "textDocument/documentLink"
	MethodDocumentLinkResolve                 Method = "documentLink/resolve"
	MethodTextDocumentHover                   Method = "textDocument/hover"
	MethodTextDocumentCodeLens                Method = "textDocument/codeLens"
	MethodCodeLensResolve                     Method = "codeLens/resolve"
	MethodTextDocumentFoldingRange            Method = "textDocument/foldingRange"
	MethodTextDocumentSelectionRange          Method = "textDocument/selectionRange"
	MethodTextDocumentDocumentSymbol          Method = "textDocument/documentSymbol"
	MethodTextDocumentSemanticTokensFull      Method = "textDocument/semanticTokens/full"
	MethodTextDocumentSemanticTokensFullDelta Method = "textDocument/semanticTokens/full/delta"
	MethodTextDocumentSemanticTokensRange     Method = "textDocument/semanticTokens/range"
	MethodTextDocumentInlineValue             Method = "textDocument/inlineValue"
	MethodTextDocumentInlayHint               Method = "textDocument/inlayHint"
	MethodInlayHintResolve                    Method = "inlayHint/resolve"
	MethodTextDocumentMoniker                 Method = "textDocument/moniker"
	MethodTextDocumentCompletion              Method = "textDocument/completion"
	MethodCompletionItemResolve               Method = "completionItem/resolve"
	MethodTextDocumentDiagnostic              Method = "textDocument/diagnostic"
	MethodWorkspaceDiagnostic                 Method = "workspace/diagnostic"
	MethodTextDocumentSignatureHelp           Method = "textDocument/signatureHelp"
	MethodTextDocumentCodeAction              Method = "textDocument/codeAction"
	MethodCodeActionResolve                   Method = "codeAction/resolve"
	MethodTextDocumentDocumentColor           Method = "textDocument/documentColor"
	MethodTextDocumentColorPresentation       Method = "textDocument/colorPresentation"
	MethodTextDocumentFormatting              Method = "textDocument/formatting"
	MethodTextDocumentRangeFormatting         Method = "textDocument/rangeFormatting"
	MethodTextDocumentOnTypeFormatting        Method = "textDocument/onTypeFormatting"
	MethodTextDocumentRename                  Method = "textDocument/rename"
	MethodTextDocumentPrepareRename           Method = "textDocument/prepareRename"
	MethodTextDocumentLinkedEditingRange      Method = "textDocument/linkedEditingRange"

	MethodWorkspaceSymbol                    Method = "workspace/symbol"
	MethodWorkspaceSymbolResolve             Method = "workspaceSymbol/resolve"
	MethodWorkspaceExecuteCommand            Method = "workspace/executeCommand"
	MethodWorkspaceWillCreateFiles           Method = "workspace/willCreateFiles"
	MethodWorkspaceWillRenameFiles           Method = "workspace/willRenameFiles"
	MethodWorkspaceWillDeleteFiles           Method = "workspace/willDeleteFiles"
	MethodWorkspaceDidChangeConfiguration    Method = "workspace/didChangeConfiguration"
	MethodWorkspaceDidChangeWorkspaceFolders Method = "workspace/didChangeWorkspaceFolders"
	MethodWorkspaceDidChangeWatchedFiles     Method = "workspace/didChangeWatchedFiles"
	MethodWorkspaceDidCreateFiles            Method = "workspace/didCreateFiles"
	MethodWorkspaceDidRenameFiles            Method = "workspace/didRenameFiles"
	MethodWorkspaceDidDeleteFiles            Method = "workspace/didDeleteFiles"

	// Server to client.
	MethodWorkspaceConfiguration Method = "workspace/configuration"
	MethodWindowLogMessage       Method = "window/logMessage"
	MethodWindowShowMessage      Method = "window/showMessage"
	MethodLogTrace               Method = "$/logTrace"
)

type MethodKind int

const (
	MethodKindUnknown MethodKind = iota
	MethodKindRequest
	MethodKindNotification
)

// clientMethods is every method a client may send, by kind.
var clientMethods = map[Method]MethodKind{
	MethodInitialize:    MethodKindRequest,
	MethodInitialized:   MethodKindNotification,
	MethodShutdown:      MethodKindRequest,
	MethodExit:          MethodKindNotification,
	MethodCancelRequest: MethodKindNotification,
	MethodSetTrace:      MethodKindNotification,
	MethodProgress:      MethodKindNotification,

	MethodTextDocumentDidOpen:           MethodKindNotification,
	MethodTextDocumentDidChange:         MethodKindNotification,
	MethodTextDocumentWillSave:          MethodKindNotification,
	MethodTextDocumentWillSaveWaitUntil: MethodKindRequest,
	MethodTextDocumentDidSave:           MethodKindNotification,
	MethodTextDocumentDidClose:          MethodKindNotification,

	MethodTextDocumentDeclaration:             MethodKindRequest,
	MethodTextDocumentDefinition:              MethodKindRequest,
	MethodTextDocumentTypeDefinition:          MethodKindRequest,
	MethodTextDocumentImplementation:          MethodKindRequest,
	MethodTextDocumentReferences:              MethodKindRequest,
	MethodTextDocumentPrepareCallHierarchy:    MethodKindRequest,
	MethodCallHierarchyIncomingCalls:          MethodKindRequest,
	MethodCallHierarchyOutgoingCalls:          MethodKindRequest,
	MethodTextDocumentPrepareTypeHierarchy:    MethodKindRequest,
	MethodTypeHierarchySupertypes:             MethodKindRequest,
	MethodTypeHierarchySubtypes:               MethodKindRequest,
	MethodTextDocumentDocumentHighlight:       MethodKindRequest,
	MethodTextDocumentDocumentLink:            MethodKindRequest,
	MethodDocumentLinkResolve:                 MethodKindRequest,
	MethodTextDocumentHover:                   MethodKindRequest,
	MethodTextDocumentCodeLens:                MethodKindRequest,
	MethodCodeLensResolve:                     MethodKindRequest,
	MethodTextDocumentFoldingRange:            MethodKindRequest,
	MethodTextDocumentSelectionRange:          MethodKindRequest,
	MethodTextDocumentDocumentSymbol:          MethodKindRequest,
	MethodTextDocumentSemanticTokensFull:      MethodKindRequest,
	MethodTextDocumentSemanticTokensFullDelta: MethodKindRequest,
	MethodTextDocumentSemanticTokensRange:     MethodKindRequest,
	MethodTextDocumentInlineValue:             MethodKindRequest,
	MethodTextDocumentInlayHint:               MethodKindRequest,
	MethodInlayHintResolve:                    MethodKindRequest,
	MethodTextDocumentMoniker:                 MethodKindRequest,
	MethodTextDocumentCompletion:              MethodKindRequest,
	MethodCompletionItemResolve:               MethodKindRequest,
	MethodTextDocumentDiagnostic:              MethodKindRequest,
	MethodWorkspaceDiagnostic:                 MethodKindRequest,
	MethodTextDocumentSignatureHelp:           MethodKindRequest,
	MethodTextDocumentCodeAction:              MethodKindRequest,
	MethodCodeActionResolve:                   MethodKindRequest,
	MethodTextDocumentDocumentColor:           MethodKindRequest,
	MethodTextDocumentColorPresentation:       MethodKindRequest,
	MethodTextDocumentFormatting:              MethodKindRequest,
	MethodTextDocumentRangeFormatting:         MethodKindRequest,
	MethodTextDocumentOnTypeFormatting:        MethodKindRequest,
	MethodTextDocumentRename:                  MethodKindRequest,
	MethodTextDocumentPrepareRename:           MethodKindRequest,
	MethodTextDocumentLinkedEditingRange:      MethodKindRequest,

	MethodWorkspaceSymbol:                    MethodKindRequest,
	MethodWorkspaceSymbolResolve:             MethodKindRequest,
	MethodWorkspaceExecuteCommand:            MethodKindRequest,
	MethodWorkspaceWillCreateFiles:           MethodKindRequest,
	MethodWorkspaceWillRenameFiles:           MethodKindRequest,
	MethodWorkspaceWillDeleteFiles:           MethodKindRequest,
	MethodWorkspaceDidChangeConfiguration:    MethodKindNotification,
	MethodWorkspaceDidChangeWorkspaceFolders: MethodKindNotification,
	MethodWorkspaceDidChangeWatchedFiles:     MethodKindNotification,
	MethodWorkspaceDidCreateFiles:            MethodKindNotification,
	MethodWorkspaceDidRenameFiles:            MethodKindNotification,
	MethodWorkspaceDidDeleteFiles:            MethodKindNotification,
}

// Kind reports whether m is a known client-to-server request or notification.
func (m Method) Kind() MethodKind {
	return clientMethods[m]
}

// ClientMethods returns every method a client may send.
func ClientMethods() []Method {
	methods := make([]Method, 0, len(clientMethods))
	for m := range clientMethods {
		methods = append(methods, m)
	}
	return methods
}

var (
	InitializeInfo    = RequestInfo[*InitializeParams, *InitializeResult]{Method: MethodInitialize}
	InitializedInfo   = NotificationInfo[*InitializedParams]{Method: MethodInitialized}
	ShutdownInfo      = RequestInfo[jsontext.Value, Null]{Method: MethodShutdown}
	ExitInfo          = NotificationInfo[jsontext.Value]{Method: MethodExit}
	CancelRequestInfo = NotificationInfo[*CancelParams]{Method: MethodCancelRequest}
	SetTraceInfo      = NotificationInfo[*SetTraceParams]{Method: MethodSetTrace}

	TextDocumentDidOpenInfo   = NotificationInfo[*DidOpenTextDocumentParams]{Method: MethodTextDocumentDidOpen}
	TextDocumentDidChangeInfo = NotificationInfo[*DidChangeTextDocumentParams]{Method: MethodTextDocumentDidChange}
	TextDocumentWillSaveInfo  = NotificationInfo[*WillSaveTextDocumentParams]{Method: MethodTextDocumentWillSave}
	TextDocumentDidSaveInfo   = NotificationInfo[*DidSaveTextDocumentParams]{Method: MethodTextDocumentDidSave}
	TextDocumentDidCloseInfo  = NotificationInfo[*DidCloseTextDocumentParams]{Method: MethodTextDocumentDidClose}

	TextDocumentHoverInfo        = RequestInfo[*HoverParams, *Hover]{Method: MethodTextDocumentHover}
	TextDocumentFoldingRangeInfo = RequestInfo[*FoldingRangeParams, []FoldingRange]{Method: MethodTextDocumentFoldingRange}

	WorkspaceDidChangeConfigurationInfo    = NotificationInfo[*DidChangeConfigurationParams]{Method: MethodWorkspaceDidChangeConfiguration}
	WorkspaceDidChangeWorkspaceFoldersInfo = NotificationInfo[*DidChangeWorkspaceFoldersParams]{Method: MethodWorkspaceDidChangeWorkspaceFolders}
	WorkspaceDidChangeWatchedFilesInfo     = NotificationInfo[*DidChangeWatchedFilesParams]{Method: MethodWorkspaceDidChangeWatchedFiles}
	WorkspaceDidCreateFilesInfo            = NotificationInfo[*CreateFilesParams]{Method: MethodWorkspaceDidCreateFiles}
	WorkspaceDidRenameFilesInfo            = NotificationInfo[*RenameFilesParams]{Method: MethodWorkspaceDidRenameFiles}
	WorkspaceDidDeleteFilesInfo            = NotificationInfo[*DeleteFilesParams]{Method: MethodWorkspaceDidDeleteFiles}

	WorkspaceConfigurationInfo = RequestInfo[*ConfigurationParams, []jsontext.Value]{Method: MethodWorkspaceConfiguration}
	WindowLogMessageInfo       = NotificationInfo[*LogMessageParams]{Method: MethodWindowLogMessage}
)
