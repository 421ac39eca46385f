package lsconv

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stubls/stubls/internal/lsp/lsproto"
)

var ErrPositionOutOfRange = errors.New("position out of range")

// Converters translates between LSP positions in the negotiated encoding and
// byte offsets into document text.
type Converters struct {
	encoding lsproto.PositionEncodingKind
}

func NewConverters(encoding lsproto.PositionEncodingKind) *Converters {
	if encoding == "" {
		encoding = lsproto.PositionEncodingKindUTF16
	}
	return &Converters{encoding: encoding}
}

func (c *Converters) Encoding() lsproto.PositionEncodingKind {
	return c.encoding
}

// PositionToOffset fails with ErrPositionOutOfRange for a line past the end of
// the text, a character past the end of its line, or a character that splits
// an encoded code point. Positions are never clamped.
func (c *Converters) PositionToOffset(text string, lm *LineMap, pos lsproto.Position) (int, error) {
	line := int(pos.Line)
	if line >= lm.LineCount() {
		return 0, fmt.Errorf("%w: line %d of %d", ErrPositionOutOfRange, pos.Line, lm.LineCount())
	}
	content := lm.LineContent(text, line)
	n, ok := c.characterToByte(content, int(pos.Character))
	if !ok {
		return 0, fmt.Errorf("%w: character %d on line %d (%d bytes long)", ErrPositionOutOfRange, pos.Character, pos.Line, len(content))
	}
	return lm.LineStarts[line] + n, nil
}

func (c *Converters) RangeToOffsets(text string, lm *LineMap, r lsproto.Range) (start, end int, err error) {
	if start, err = c.PositionToOffset(text, lm, r.Start); err != nil {
		return 0, 0, err
	}
	if end, err = c.PositionToOffset(text, lm, r.End); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("%w: range end %d:%d precedes start %d:%d", ErrPositionOutOfRange, r.End.Line, r.End.Character, r.Start.Line, r.Start.Character)
	}
	return start, end, nil
}

func (c *Converters) OffsetToPosition(text string, lm *LineMap, offset int) lsproto.Position {
	offset = min(max(offset, 0), len(text))
	line := lm.ComputeLineOf(offset)
	return lsproto.Position{
		Line:      uint32(line),
		Character: uint32(c.encodedLen(text[lm.LineStarts[line]:offset])),
	}
}

func (c *Converters) characterToByte(line string, character int) (int, bool) {
	switch c.encoding {
	case lsproto.PositionEncodingKindUTF8:
		if character > len(line) || (character < len(line) && !utf8.RuneStart(line[character])) {
			return 0, false
		}
		return character, true
	case lsproto.PositionEncodingKindUTF32:
		count := 0
		for i := range line {
			if count == character {
				return i, true
			}
			count++
		}
		return len(line), count == character
	default:
		units := 0
		for i, r := range line {
			if units == character {
				return i, true
			}
			units += runeLen16(r)
			if units > character {
				return 0, false
			}
		}
		return len(line), units == character
	}
}

func (c *Converters) encodedLen(s string) int {
	switch c.encoding {
	case lsproto.PositionEncodingKindUTF8:
		return len(s)
	case lsproto.PositionEncodingKindUTF32:
		return utf8.RuneCountInString(s)
	default:
		units := 0
		for _, r := range s {
			units += runeLen16(r)
		}
		return units
	}
}

func runeLen16(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
