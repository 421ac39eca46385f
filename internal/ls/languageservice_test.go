package ls_test

import (
	"context"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stubls/stubls/internal/ls"
	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"github.com/stubls/stubls/internal/project"
	"gotest.tools/v3/assert"
)

const uri = lsproto.DocumentUri("file:///a.txt")

func newService(t *testing.T, content string, pattern string) *ls.LanguageService {
	t.Helper()
	store := project.NewDocumentStore(lsconv.NewConverters(lsproto.PositionEncodingKindUTF16))
	_, err := store.Open(uri, "plaintext", 1, content, lsproto.TextDocumentSyncKindIncremental)
	assert.NilError(t, err)
	return ls.NewLanguageService(store, regexp2.MustCompile(pattern, regexp2.ECMAScript))
}

func pos(line, character uint32) lsproto.Position {
	return lsproto.Position{Line: line, Character: character}
}

func TestProvideHover(t *testing.T) {
	t.Parallel()

	service := newService(t, "foo bar  foo\nfoo_1 foo", ls.DefaultWordPattern)

	tests := []struct {
		name      string
		position  lsproto.Position
		wantValue string
		wantRange lsproto.Range
	}{
		{"word start", pos(0, 0), "foo: 3 occurrence(s), version 1", lsproto.Range{Start: pos(0, 0), End: pos(0, 3)}},
		{"word end", pos(0, 3), "foo: 3 occurrence(s), version 1", lsproto.Range{Start: pos(0, 0), End: pos(0, 3)}},
		{"second word", pos(0, 5), "bar: 1 occurrence(s), version 1", lsproto.Range{Start: pos(0, 4), End: pos(0, 7)}},
		{"second line", pos(1, 2), "foo_1: 1 occurrence(s), version 1", lsproto.Range{Start: pos(1, 0), End: pos(1, 5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hover, err := service.ProvideHover(context.Background(), uri, tt.position)
			assert.NilError(t, err)
			assert.Assert(t, hover != nil)
			assert.Equal(t, hover.Contents.Kind, lsproto.MarkupKindPlainText)
			assert.Equal(t, hover.Contents.Value, tt.wantValue)
			assert.DeepEqual(t, *hover.Range, tt.wantRange)
		})
	}
}

func TestProvideHoverOutsideWord(t *testing.T) {
	t.Parallel()

	service := newService(t, "foo  bar", ls.DefaultWordPattern)
	hover, err := service.ProvideHover(context.Background(), uri, pos(0, 4))
	assert.NilError(t, err)
	assert.Assert(t, hover == nil)
}

func TestProvideHoverNonASCII(t *testing.T) {
	t.Parallel()

	service := newService(t, "héllo wörld héllo", `\S+`)

	hover, err := service.ProvideHover(context.Background(), uri, pos(0, 8))
	assert.NilError(t, err)
	assert.Equal(t, hover.Contents.Value, "wörld: 1 occurrence(s), version 1")
	assert.DeepEqual(t, *hover.Range, lsproto.Range{Start: pos(0, 6), End: pos(0, 11)})

	hover, err = service.ProvideHover(context.Background(), uri, pos(0, 1))
	assert.NilError(t, err)
	assert.Equal(t, hover.Contents.Value, "héllo: 2 occurrence(s), version 1")
}

func TestProvideHoverErrors(t *testing.T) {
	t.Parallel()

	service := newService(t, "foo", ls.DefaultWordPattern)

	_, err := service.ProvideHover(context.Background(), uri, pos(3, 0))
	assert.ErrorIs(t, err, lsproto.ErrInvalidParams)

	_, err = service.ProvideHover(context.Background(), "file:///missing.txt", pos(0, 0))
	assert.ErrorIs(t, err, project.ErrUnknownDocument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = service.ProvideHover(ctx, uri, pos(0, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvideFoldingRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []lsproto.FoldingRange
	}{
		{"empty", "", []lsproto.FoldingRange{}},
		{"single line", "a", []lsproto.FoldingRange{}},
		{"paragraphs", "a\nb\n\nc\n \nd\ne\nf", []lsproto.FoldingRange{
			{StartLine: 0, EndLine: 1},
			{StartLine: 5, EndLine: 7},
		}},
		{"trailing newline", "a\r\nb\r\n", []lsproto.FoldingRange{
			{StartLine: 0, EndLine: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			service := newService(t, tt.content, ls.DefaultWordPattern)
			got, err := service.ProvideFoldingRanges(context.Background(), uri)
			assert.NilError(t, err)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	features := lsp.NewFeatures()
	assert.NilError(t, ls.Register(features, ls.FeatureNames(), nil))
	assert.DeepEqual(t, features.Methods(), []lsproto.Method{
		lsproto.MethodTextDocumentFoldingRange,
		lsproto.MethodTextDocumentHover,
	})

	err := ls.Register(lsp.NewFeatures(), []string{"completion"}, nil)
	assert.ErrorContains(t, err, `unknown feature "completion"`)

	err = ls.Register(lsp.NewFeatures(), ls.FeatureNames(), &ls.UserPreferences{WordPattern: "[a-"})
	assert.ErrorContains(t, err, "invalid word pattern")
	assert.ErrorContains(t, ls.ValidateWordPattern("("), "invalid word pattern")
	assert.NilError(t, ls.ValidateWordPattern(`\w+`))
}
