package ls

import (
	"context"
	"fmt"

	"github.com/stubls/stubls/internal/lsp"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
)

// Names of the built-in features accepted by Register.
const (
	FeatureHover        = "hover"
	FeatureFoldingRange = "foldingRange"
)

var featureNames = []string{FeatureHover, FeatureFoldingRange}

// FeatureNames lists the built-in features in registration order.
func FeatureNames() []string {
	return featureNames
}

// Register adds the named built-in features to features.
func Register(features *lsp.Features, names []string, prefs *UserPreferences) error {
	wordPattern, err := prefs.compileWordPattern()
	if err != nil {
		return err
	}
	for _, name := range names {
		switch name {
		case FeatureHover:
			lsp.RegisterRequest(features, lsproto.TextDocumentHoverInfo, func(ctx context.Context, docs project.Reader, params *lsproto.HoverParams) (*lsproto.Hover, error) {
				return NewLanguageService(docs, wordPattern).ProvideHover(ctx, params.TextDocument.Uri, params.Position)
			})
		case FeatureFoldingRange:
			lsp.RegisterRequest(features, lsproto.TextDocumentFoldingRangeInfo, func(ctx context.Context, docs project.Reader, params *lsproto.FoldingRangeParams) ([]lsproto.FoldingRange, error) {
				return NewLanguageService(docs, wordPattern).ProvideFoldingRanges(ctx, params.TextDocument.Uri)
			})
		default:
			return fmt.Errorf("unknown feature %q", name)
		}
	}
	return nil
}
