package lsconv_test

import (
	"testing"

	"github.com/stubls/stubls/internal/ls/lsconv"
	"github.com/stubls/stubls/internal/lsp/lsproto"
	"gotest.tools/v3/assert"
)

func TestComputeLineMap(t *testing.T) {
	t.Parallel()

	lm := lsconv.ComputeLineMap("a\nbc\r\nd\re\n")
	assert.DeepEqual(t, lm.LineStarts, []int{0, 2, 6, 8, 10})
	assert.Equal(t, lm.LineContent("a\nbc\r\nd\re\n", 1), "bc")
	assert.Equal(t, lm.LineContent("a\nbc\r\nd\re\n", 4), "")
	assert.Equal(t, lm.ComputeLineOf(3), 1)
	assert.Equal(t, lm.ComputeLineOf(6), 2)
}

func TestPositionToOffset(t *testing.T) {
	t.Parallel()

	// "é" is 2 bytes / 1 UTF-16 unit; "𝄞" is 4 bytes / 2 UTF-16 units.
	text := "aé𝄞b\nxyz"
	lm := lsconv.ComputeLineMap(text)

	tests := []struct {
		encoding  lsproto.PositionEncodingKind
		character uint32
		want      int
		wantErr   bool
	}{
		{lsproto.PositionEncodingKindUTF16, 0, 0, false},
		{lsproto.PositionEncodingKindUTF16, 2, 3, false},
		{lsproto.PositionEncodingKindUTF16, 3, 0, true},
		{lsproto.PositionEncodingKindUTF16, 4, 7, false},
		{lsproto.PositionEncodingKindUTF16, 5, 8, false},
		{lsproto.PositionEncodingKindUTF16, 6, 0, true},
		{lsproto.PositionEncodingKindUTF8, 3, 3, false},
		{lsproto.PositionEncodingKindUTF8, 2, 0, true},
		{lsproto.PositionEncodingKindUTF8, 8, 8, false},
		{lsproto.PositionEncodingKindUTF32, 3, 7, false},
		{lsproto.PositionEncodingKindUTF32, 4, 8, false},
		{lsproto.PositionEncodingKindUTF32, 5, 0, true},
	}
	for _, tt := range tests {
		c := lsconv.NewConverters(tt.encoding)
		got, err := c.PositionToOffset(text, lm, lsproto.Position{Line: 0, Character: tt.character})
		if tt.wantErr {
			assert.ErrorIs(t, err, lsconv.ErrPositionOutOfRange, "%s char %d", tt.encoding, tt.character)
			continue
		}
		assert.NilError(t, err, "%s char %d", tt.encoding, tt.character)
		assert.Equal(t, got, tt.want, "%s char %d", tt.encoding, tt.character)
	}

	c := lsconv.NewConverters("")
	_, err := c.PositionToOffset(text, lm, lsproto.Position{Line: 2, Character: 0})
	assert.ErrorIs(t, err, lsconv.ErrPositionOutOfRange)
	off, err := c.PositionToOffset(text, lm, lsproto.Position{Line: 1, Character: 3})
	assert.NilError(t, err)
	assert.Equal(t, off, len(text))
}

func TestRangeToOffsetsRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	text := "hello"
	c := lsconv.NewConverters(lsproto.PositionEncodingKindUTF16)
	_, _, err := c.RangeToOffsets(text, lsconv.ComputeLineMap(text), lsproto.Range{
		Start: lsproto.Position{Character: 4},
		End:   lsproto.Position{Character: 1},
	})
	assert.ErrorIs(t, err, lsconv.ErrPositionOutOfRange)
}

func TestOffsetToPosition(t *testing.T) {
	t.Parallel()

	text := "aé𝄞b\nxyz"
	lm := lsconv.ComputeLineMap(text)
	assert.Equal(t, lsconv.NewConverters(lsproto.PositionEncodingKindUTF16).OffsetToPosition(text, lm, 7), lsproto.Position{Line: 0, Character: 4})
	assert.Equal(t, lsconv.NewConverters(lsproto.PositionEncodingKindUTF8).OffsetToPosition(text, lm, 7), lsproto.Position{Line: 0, Character: 7})
	assert.Equal(t, lsconv.NewConverters(lsproto.PositionEncodingKindUTF32).OffsetToPosition(text, lm, 7), lsproto.Position{Line: 0, Character: 3})
	assert.Equal(t, lsconv.NewConverters(lsproto.PositionEncodingKindUTF16).OffsetToPosition(text, lm, 10), lsproto.Position{Line: 1, Character: 1})
}
