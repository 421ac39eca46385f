package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	release chan struct{}
	mu      sync.Mutex
	buf     bytes.Buffer
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *blockingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newLogger(&buf, 16)
	l.now = func() time.Time { return time.Date(2024, 1, 1, 9, 8, 7, 6_000_000, time.UTC) }
	l.Log("a", 1)
	l.Warn("careful")
	l.Errorf("bad %d", 2)
	l.Write("raw line")
	l.Close()

	assert.Equal(t, buf.String(), strings.Join([]string{
		"[09:08:07.006] [Info] a1",
		"[09:08:07.006] [Warn] careful",
		"[09:08:07.006] [Error] bad 2",
		"raw line",
		"",
	}, "\n"))
}

func TestLoggerVerbose(t *testing.T) {
	t.Parallel()

	l := NewLogCollector()
	defer l.Close()
	assert.Assert(t, l.Verbose() == nil)
	assert.Assert(t, !l.IsVerbose())
	l.SetVerbose(true)
	assert.Assert(t, l.Verbose() != nil)
	l.Verbose().Log("detail")
	assert.Assert(t, strings.Contains(l.String(), "detail"))
}

func TestLoggerDoesNotBlockCallers(t *testing.T) {
	t.Parallel()

	w := &blockingWriter{release: make(chan struct{})}
	l := newLogger(w, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 50 {
			l.Logf("entry %d", i)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logging blocked on a stalled writer")
	}

	close(w.release)
	l.Close()
	assert.Assert(t, strings.Contains(w.String(), "dropped"), w.String())
}

func TestLoggerAfterClose(t *testing.T) {
	t.Parallel()

	l := NewLogCollector()
	l.Log("before")
	out := l.String()
	l.Close()
	l.Log("after")
	l.Flush()
	l.Close()
	assert.Assert(t, strings.Contains(out, "before"))
	assert.Assert(t, !strings.Contains(l.String(), "after"))
}

func TestNilLogger(t *testing.T) {
	t.Parallel()

	var l *logger
	l.Log("ignored")
	l.Flush()
	l.Close()
	assert.Assert(t, l.Verbose() == nil)
}
