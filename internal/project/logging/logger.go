package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Logger interface {
	// Log prints an info line to the output writer with a header.
	Log(msg ...any)
	// Logf prints a formatted info line to the output writer with a header.
	Logf(format string, args ...any)
	Info(msg ...any)
	Warn(msg ...any)
	Error(msg ...any)
	Errorf(format string, args ...any)
	// Write prints the msg string to the output with no additional formatting, followed by a newline
	Write(msg string)
	// Verbose returns the logger instance if verbose logging is enabled, and otherwise returns nil.
	Verbose() Logger
	// IsVerbose returns true if verbose logging is enabled, and false otherwise.
	IsVerbose() bool
	// SetVerbose sets the verbose logging flag.
	SetVerbose(verbose bool)
	// Flush blocks until everything logged so far has reached the output writer.
	Flush()
	// Close flushes and stops the writer goroutine. Later calls are dropped.
	Close()
}

const defaultQueueSize = 1024

type level int

const (
	levelRaw level = iota
	levelInfo
	levelWarn
	levelError
)

func (l level) String() string {
	switch l {
	case levelInfo:
		return "Info"
	case levelWarn:
		return "Warn"
	case levelError:
		return "Error"
	}
	return ""
}

type entry struct {
	time  time.Time
	level level
	msg   string
	flush chan struct{}
}

var _ Logger = (*logger)(nil)

// logger never writes on the caller's goroutine. Entries go through a bounded
// queue drained by one writer goroutine; when the queue is full they are
// dropped and the drop count is reported by the writer.
type logger struct {
	verbose atomic.Bool
	closed  atomic.Bool
	dropped atomic.Int64

	entries   chan entry
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	writer io.Writer
	now    func() time.Time
}

func NewLogger(output io.Writer) Logger {
	return newLogger(output, defaultQueueSize)
}

func newLogger(output io.Writer, queueSize int) *logger {
	l := &logger{
		entries: make(chan entry, queueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		writer:  output,
		now:     time.Now,
	}
	go l.run()
	return l
}

func (l *logger) run() {
	defer close(l.done)
	for {
		select {
		case e := <-l.entries:
			l.write(e)
		case <-l.quit:
			for {
				select {
				case e := <-l.entries:
					l.write(e)
				default:
					return
				}
			}
		}
	}
}

func (l *logger) write(e entry) {
	if n := l.dropped.Swap(0); n > 0 {
		fmt.Fprintf(l.writer, "%s [%s] dropped %d log entries\n", formatTime(l.now()), levelWarn, n)
	}
	if e.flush != nil {
		close(e.flush)
		return
	}
	if e.level == levelRaw {
		fmt.Fprintln(l.writer, e.msg)
		return
	}
	fmt.Fprintf(l.writer, "%s [%s] %s\n", formatTime(e.time), e.level, e.msg)
}

func (l *logger) enqueue(lvl level, msg string) {
	if l == nil || l.closed.Load() {
		return
	}
	select {
	case l.entries <- entry{time: l.now(), level: lvl, msg: msg}:
	default:
		l.dropped.Add(1)
	}
}

func (l *logger) Log(msg ...any) {
	l.enqueue(levelInfo, fmt.Sprint(msg...))
}

func (l *logger) Logf(format string, args ...any) {
	l.enqueue(levelInfo, fmt.Sprintf(format, args...))
}

func (l *logger) Info(msg ...any) {
	l.enqueue(levelInfo, fmt.Sprint(msg...))
}

func (l *logger) Warn(msg ...any) {
	l.enqueue(levelWarn, fmt.Sprint(msg...))
}

func (l *logger) Error(msg ...any) {
	l.enqueue(levelError, fmt.Sprint(msg...))
}

func (l *logger) Errorf(format string, args ...any) {
	l.enqueue(levelError, fmt.Sprintf(format, args...))
}

func (l *logger) Write(msg string) {
	l.enqueue(levelRaw, msg)
}

func (l *logger) Verbose() Logger {
	if l == nil || !l.verbose.Load() {
		return nil
	}
	return l
}

func (l *logger) IsVerbose() bool {
	return l != nil && l.verbose.Load()
}

func (l *logger) SetVerbose(verbose bool) {
	if l == nil {
		return
	}
	l.verbose.Store(verbose)
}

func (l *logger) Flush() {
	if l == nil {
		return
	}
	ack := make(chan struct{})
	select {
	case l.entries <- entry{flush: ack}:
	case <-l.done:
		return
	}
	select {
	case <-ack:
	case <-l.done:
	}
}

func (l *logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.quit)
	})
	<-l.done
}

func formatTime(t time.Time) string {
	return fmt.Sprintf("[%s]", t.Format("15:04:05.000"))
}

type LogCollector interface {
	Logger
	// String flushes and returns everything logged so far.
	String() string
}

type logCollector struct {
	*logger
	mu  sync.Mutex
	buf strings.Builder
}

func (c *logCollector) String() string {
	c.Flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

type lockedWriter struct {
	c *logCollector
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	return w.c.buf.Write(p)
}

func NewLogCollector() LogCollector {
	c := &logCollector{}
	c.logger = newLogger(lockedWriter{c}, defaultQueueSize)
	return c
}
