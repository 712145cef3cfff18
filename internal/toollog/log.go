// Package toollog keeps the append-only diagnostic log of tool invocations.
package toollog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultFileName is the log file created next to the server executable.
const DefaultFileName = "mcp-tool-calls.log"

const timeLayout = "2006-01-02 15:04:05"

// Log serializes invocation records onto a single writer. Each record is
// emitted with one Write call so concurrent invocations never interleave.
type Log struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer

	now   func() time.Time
	newID func() string
}

// New returns a Log writing to w.
func New(w io.Writer) *Log {
	return &Log{
		w:     w,
		now:   time.Now,
		newID: func() string { return gonanoid.Must(8) },
	}
}

// Discard returns a Log that drops every record.
func Discard() *Log {
	return New(io.Discard)
}

// Open appends to the file at path, creating it and its directory if needed.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening tool call log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// DefaultPath returns DefaultFileName in the directory holding the running
// executable, falling back to the working directory.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Close closes the underlying file, if any.
func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Log) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

// Begin starts the record of one invocation.
func (l *Log) Begin(query string) *Record {
	r := &Record{log: l, ID: l.newID()}
	fmt.Fprintf(&r.buf, "=== MCP Tool Called at %s (id %s) ===\n", l.now().Format(timeLayout), r.ID)
	fmt.Fprintf(&r.buf, "Query: %s\n", query)
	return r
}

// Record buffers the lines of a single invocation until Commit. A Record is
// owned by one goroutine.
type Record struct {
	ID string

	log       *Log
	buf       bytes.Buffer
	committed bool
}

// CardsFound notes the number of cards the search returned.
func (r *Record) CardsFound(n int) {
	fmt.Fprintf(&r.buf, "Cards found: %d\n", n)
}

// NoMatch notes an empty search result.
func (r *Record) NoMatch() {
	r.buf.WriteString("No cards matched\n")
}

// Success notes a generated summary.
func (r *Record) Success() {
	r.buf.WriteString("SUCCESS: Response generated\n")
}

// ParseFailure notes a structured-data parse failure.
func (r *Record) ParseFailure(err error) {
	fmt.Fprintf(&r.buf, "JSON ERROR: %v\n", err)
}

// Failure notes any other error.
func (r *Record) Failure(err error) {
	fmt.Fprintf(&r.buf, "ERROR: %v\n", err)
}

// Commit appends the record to the log. Later calls are no-ops.
func (r *Record) Commit() error {
	if r.committed {
		return nil
	}
	r.committed = true
	r.buf.WriteByte('\n')
	return r.log.write(r.buf.Bytes())
}
