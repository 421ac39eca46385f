package lsp

import (
	"slices"

	"github.com/stubls/stubls/internal/lsp/lsproto"
)

var defaultPositionEncodings = []lsproto.PositionEncodingKind{
	lsproto.PositionEncodingKindUTF8,
	lsproto.PositionEncodingKindUTF16,
}

// negotiatePositionEncoding picks the first server preference the client
// offers. UTF-16 is mandatory for every client.
func negotiatePositionEncoding(preferred []lsproto.PositionEncodingKind, caps *lsproto.ClientCapabilities) lsproto.PositionEncodingKind {
	if len(preferred) == 0 {
		preferred = defaultPositionEncodings
	}
	if caps != nil && caps.General != nil && caps.General.PositionEncodings != nil {
		offered := *caps.General.PositionEncodings
		for _, encoding := range preferred {
			if slices.Contains(offered, encoding) {
				return encoding
			}
		}
	}
	return lsproto.PositionEncodingKindUTF16
}

// providers maps each feature method to the capability that advertises it.
var providers = map[lsproto.Method]func(*lsproto.ServerCapabilities){
	lsproto.MethodTextDocumentCompletion: func(c *lsproto.ServerCapabilities) {
		c.CompletionProvider = ensure(c.CompletionProvider)
	},
	lsproto.MethodCompletionItemResolve: func(c *lsproto.ServerCapabilities) {
		c.CompletionProvider = ensure(c.CompletionProvider)
		c.CompletionProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentHover:          setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.HoverProvider }),
	lsproto.MethodTextDocumentDeclaration:    setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.DeclarationProvider }),
	lsproto.MethodTextDocumentDefinition:     setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.DefinitionProvider }),
	lsproto.MethodTextDocumentTypeDefinition: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.TypeDefinitionProvider }),
	lsproto.MethodTextDocumentImplementation: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.ImplementationProvider }),
	lsproto.MethodTextDocumentReferences:     setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.ReferencesProvider }),
	lsproto.MethodTextDocumentDocumentHighlight: setTrue(func(c *lsproto.ServerCapabilities) **bool {
		return &c.DocumentHighlightProvider
	}),
	lsproto.MethodTextDocumentDocumentSymbol: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.DocumentSymbolProvider }),
	lsproto.MethodTextDocumentCodeAction: func(c *lsproto.ServerCapabilities) {
		c.CodeActionProvider = ensure(c.CodeActionProvider)
	},
	lsproto.MethodCodeActionResolve: func(c *lsproto.ServerCapabilities) {
		c.CodeActionProvider = ensure(c.CodeActionProvider)
		c.CodeActionProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentCodeLens: func(c *lsproto.ServerCapabilities) {
		c.CodeLensProvider = ensure(c.CodeLensProvider)
	},
	lsproto.MethodCodeLensResolve: func(c *lsproto.ServerCapabilities) {
		c.CodeLensProvider = ensure(c.CodeLensProvider)
		c.CodeLensProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentDocumentLink: func(c *lsproto.ServerCapabilities) {
		c.DocumentLinkProvider = ensure(c.DocumentLinkProvider)
	},
	lsproto.MethodDocumentLinkResolve: func(c *lsproto.ServerCapabilities) {
		c.DocumentLinkProvider = ensure(c.DocumentLinkProvider)
		c.DocumentLinkProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentDocumentColor: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.ColorProvider }),
	lsproto.MethodWorkspaceSymbol: func(c *lsproto.ServerCapabilities) {
		c.WorkspaceSymbolProvider = ensure(c.WorkspaceSymbolProvider)
	},
	lsproto.MethodWorkspaceSymbolResolve: func(c *lsproto.ServerCapabilities) {
		c.WorkspaceSymbolProvider = ensure(c.WorkspaceSymbolProvider)
		c.WorkspaceSymbolProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentFormatting: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.DocumentFormattingProvider }),
	lsproto.MethodTextDocumentRangeFormatting: setTrue(func(c *lsproto.ServerCapabilities) **bool {
		return &c.DocumentRangeFormattingProvider
	}),
	lsproto.MethodTextDocumentOnTypeFormatting: func(c *lsproto.ServerCapabilities) {
		c.DocumentOnTypeFormattingProvider = ensure(c.DocumentOnTypeFormattingProvider)
	},
	lsproto.MethodTextDocumentRename: func(c *lsproto.ServerCapabilities) {
		c.RenameProvider = ensure(c.RenameProvider)
	},
	lsproto.MethodTextDocumentPrepareRename: func(c *lsproto.ServerCapabilities) {
		c.RenameProvider = ensure(c.RenameProvider)
		c.RenameProvider.PrepareProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentFoldingRange:         setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.FoldingRangeProvider }),
	lsproto.MethodTextDocumentSelectionRange:       setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.SelectionRangeProvider }),
	lsproto.MethodTextDocumentPrepareCallHierarchy: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.CallHierarchyProvider }),
	lsproto.MethodTextDocumentLinkedEditingRange: setTrue(func(c *lsproto.ServerCapabilities) **bool {
		return &c.LinkedEditingRangeProvider
	}),
	lsproto.MethodTextDocumentSemanticTokensFull: func(c *lsproto.ServerCapabilities) {
		c.SemanticTokensProvider = ensure(c.SemanticTokensProvider)
		c.SemanticTokensProvider.Full = ensure(c.SemanticTokensProvider.Full)
	},
	lsproto.MethodTextDocumentSemanticTokensFullDelta: func(c *lsproto.ServerCapabilities) {
		c.SemanticTokensProvider = ensure(c.SemanticTokensProvider)
		c.SemanticTokensProvider.Full = ensure(c.SemanticTokensProvider.Full)
		c.SemanticTokensProvider.Full.Delta = ptrTo(true)
	},
	lsproto.MethodTextDocumentSemanticTokensRange: func(c *lsproto.ServerCapabilities) {
		c.SemanticTokensProvider = ensure(c.SemanticTokensProvider)
		c.SemanticTokensProvider.Range = ptrTo(true)
	},
	lsproto.MethodTextDocumentMoniker:              setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.MonikerProvider }),
	lsproto.MethodTextDocumentPrepareTypeHierarchy: setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.TypeHierarchyProvider }),
	lsproto.MethodTextDocumentInlineValue:          setTrue(func(c *lsproto.ServerCapabilities) **bool { return &c.InlineValueProvider }),
	lsproto.MethodTextDocumentInlayHint: func(c *lsproto.ServerCapabilities) {
		c.InlayHintProvider = ensure(c.InlayHintProvider)
	},
	lsproto.MethodInlayHintResolve: func(c *lsproto.ServerCapabilities) {
		c.InlayHintProvider = ensure(c.InlayHintProvider)
		c.InlayHintProvider.ResolveProvider = ptrTo(true)
	},
	lsproto.MethodTextDocumentDiagnostic: func(c *lsproto.ServerCapabilities) {
		c.DiagnosticProvider = ensure(c.DiagnosticProvider)
	},
	lsproto.MethodWorkspaceDiagnostic: func(c *lsproto.ServerCapabilities) {
		c.DiagnosticProvider = ensure(c.DiagnosticProvider)
		c.DiagnosticProvider.WorkspaceDiagnostics = true
	},
	lsproto.MethodTextDocumentSignatureHelp: func(c *lsproto.ServerCapabilities) {
		c.SignatureHelpProvider = ensure(c.SignatureHelpProvider)
	},
	lsproto.MethodWorkspaceExecuteCommand: func(c *lsproto.ServerCapabilities) {
		c.ExecuteCommandProvider = ensure(c.ExecuteCommandProvider)
		if c.ExecuteCommandProvider.Commands == nil {
			c.ExecuteCommandProvider.Commands = []string{}
		}
	},
	lsproto.MethodTextDocumentWillSaveWaitUntil: func(c *lsproto.ServerCapabilities) {
		c.TextDocumentSync.WillSaveWaitUntil = ptrTo(true)
	},
	lsproto.MethodWorkspaceWillCreateFiles: func(c *lsproto.ServerCapabilities) {
		c.Workspace.FileOperations.WillCreate = allFiles()
	},
	lsproto.MethodWorkspaceWillRenameFiles: func(c *lsproto.ServerCapabilities) {
		c.Workspace.FileOperations.WillRename = allFiles()
	},
	lsproto.MethodWorkspaceWillDeleteFiles: func(c *lsproto.ServerCapabilities) {
		c.Workspace.FileOperations.WillDelete = allFiles()
	},
}

// allFiles registers interest in operations on every file.
func allFiles() *lsproto.FileOperationRegistrationOptions {
	return &lsproto.FileOperationRegistrationOptions{
		Filters: []lsproto.FileOperationFilter{{Pattern: lsproto.FileOperationPattern{Glob: "**"}}},
	}
}

func setTrue(field func(*lsproto.ServerCapabilities) **bool) func(*lsproto.ServerCapabilities) {
	return func(c *lsproto.ServerCapabilities) {
		*field(c) = ptrTo(true)
	}
}

func ensure[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

// capabilities describes the lifecycle and synchronization support every
// server has plus exactly the registered features.
func (s *Server) capabilities() *lsproto.ServerCapabilities {
	caps := &lsproto.ServerCapabilities{
		PositionEncoding: ptrTo(s.positionEncoding),
		TextDocumentSync: &lsproto.TextDocumentSyncOptions{
			OpenClose: ptrTo(true),
			Change:    ptrTo(s.syncKind),
			WillSave:  ptrTo(true),
			Save: &lsproto.SaveOptions{
				IncludeText: ptrTo(true),
			},
		},
		Workspace: &lsproto.WorkspaceOptions{
			WorkspaceFolders: &lsproto.WorkspaceFoldersServerCapabilities{
				Supported:           ptrTo(true),
				ChangeNotifications: ptrTo(true),
			},
			FileOperations: &lsproto.FileOperationOptions{
				DidCreate: allFiles(),
				DidRename: allFiles(),
				DidDelete: allFiles(),
			},
		},
	}
	for _, method := range s.features.Methods() {
		if provide := providers[method]; provide != nil {
			provide(caps)
		}
	}
	for _, fn := range s.features.capabilities {
		fn(caps)
	}
	return caps
}
