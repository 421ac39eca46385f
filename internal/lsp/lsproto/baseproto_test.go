package lsproto_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stubls/stubls/internal/lsp/lsproto"
	"gotest.tools/v3/assert"
)

func TestBaseReader(t *testing.T) {
	t.Parallel()

	t.Run("two frames then clean eof", func(t *testing.T) {
		t.Parallel()
		r := lsproto.NewBaseReader(strings.NewReader(
			"Content-Length: 2\r\n\r\n{}" +
				"Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: 4\r\n\r\nnull",
		))
		data, err := r.Read()
		assert.NilError(t, err)
		assert.Equal(t, string(data), "{}")
		data, err = r.Read()
		assert.NilError(t, err)
		assert.Equal(t, string(data), "null")
		_, err = r.Read()
		assert.Equal(t, err, io.EOF)
	})

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing length", "Content-Type: x\r\n\r\n{}", lsproto.ErrNoContentLength},
		{"bad length", "Content-Length: abc\r\n\r\n{}", lsproto.ErrInvalidContentLength},
		{"zero length", "Content-Length: 0\r\n\r\n", lsproto.ErrInvalidContentLength},
		{"no colon", "garbage\r\n\r\n", lsproto.ErrInvalidHeader},
		{"truncated body", "Content-Length: 10\r\n\r\n{}", io.ErrUnexpectedEOF},
		{"truncated header", "Content-Length: 10", io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := lsproto.NewBaseReader(strings.NewReader(tt.input)).Read()
			assert.Assert(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestBaseWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := lsproto.NewBaseWriter(&buf)
	assert.NilError(t, w.Write([]byte(`{"a":1}`)))
	assert.Equal(t, buf.String(), "Content-Length: 7\r\n\r\n{\"a\":1}")

	data, err := lsproto.NewBaseReader(&buf).Read()
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"a":1}`)
}
