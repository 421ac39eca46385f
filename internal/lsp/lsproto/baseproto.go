package lsproto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrInvalidHeader        = errors.New("lsp: invalid header")
	ErrInvalidContentLength = errors.New("lsp: invalid content length")
	ErrNoContentLength      = errors.New("lsp: no content length")
)

// BaseReader reads Content-Length framed message bodies.
type BaseReader struct {
	r *bufio.Reader
}

func NewBaseReader(r io.Reader) *BaseReader {
	return &BaseReader{r: bufio.NewReader(r)}
}

// Read returns the next message body. It returns io.EOF only when the stream
// ends cleanly between messages; a stream cut inside a frame is io.ErrUnexpectedEOF.
func (r *BaseReader) Read() ([]byte, error) {
	contentLength := int64(-1)
	for first := true; ; first = false {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if first && line == "" {
					return nil, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("lsp: read header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
		}
		// Content-Type and anything else is ignored.
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.ParseInt(strings.TrimSpace(value), 10, 32)
			if err != nil || contentLength <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidContentLength, value)
			}
		}
	}
	if contentLength < 0 {
		return nil, ErrNoContentLength
	}

	data := make([]byte, contentLength)
	if _, err := io.ReadFull(r.r, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("lsp: read content: %w", err)
	}
	return data, nil
}

type BaseWriter struct {
	w io.Writer
}

func NewBaseWriter(w io.Writer) *BaseWriter {
	return &BaseWriter{w: w}
}

func (w *BaseWriter) Write(data []byte) error {
	frame := make([]byte, 0, len(data)+32)
	frame = fmt.Appendf(frame, "Content-Length: %d\r\n\r\n", len(data))
	frame = append(frame, data...)
	_, err := w.w.Write(frame)
	return err
}
