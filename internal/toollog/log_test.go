package toollog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkWriter records every Write call separately.
type chunkWriter struct {
	mu     sync.Mutex
	chunks []string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

func newTestLog(w *chunkWriter) *Log {
	l := New(w)
	l.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	l.newID = func() string { return "abc123" }
	return l
}

func TestRecord_Outcomes(t *testing.T) {
	tests := []struct {
		name  string
		build func(r *Record)
		want  string
	}{
		{
			name: "success",
			build: func(r *Record) {
				r.CardsFound(3)
				r.Success()
			},
			want: "=== MCP Tool Called at 2025-03-01 12:30:00 (id abc123) ===\n" +
				"Query: blue control\n" +
				"Cards found: 3\n" +
				"SUCCESS: Response generated\n\n",
		},
		{
			name: "no match",
			build: func(r *Record) {
				r.CardsFound(0)
				r.NoMatch()
			},
			want: "=== MCP Tool Called at 2025-03-01 12:30:00 (id abc123) ===\n" +
				"Query: blue control\n" +
				"Cards found: 0\n" +
				"No cards matched\n\n",
		},
		{
			name:  "parse failure",
			build: func(r *Record) { r.ParseFailure(errors.New("bad colors")) },
			want: "=== MCP Tool Called at 2025-03-01 12:30:00 (id abc123) ===\n" +
				"Query: blue control\n" +
				"JSON ERROR: bad colors\n\n",
		},
		{
			name:  "failure",
			build: func(r *Record) { r.Failure(errors.New("timeout")) },
			want: "=== MCP Tool Called at 2025-03-01 12:30:00 (id abc123) ===\n" +
				"Query: blue control\n" +
				"ERROR: timeout\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &chunkWriter{}
			l := newTestLog(w)

			r := l.Begin("blue control")
			tt.build(r)
			require.NoError(t, r.Commit())
			require.NoError(t, r.Commit())

			require.Len(t, w.chunks, 1)
			assert.Equal(t, tt.want, w.chunks[0])
		})
	}
}

func TestLog_ConcurrentRecordsDoNotInterleave(t *testing.T) {
	w := &chunkWriter{}
	l := New(w)

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := l.Begin(fmt.Sprintf("query %d", i))
			r.CardsFound(i)
			r.Success()
			assert.NoError(t, r.Commit())
		}()
	}
	wg.Wait()

	require.Len(t, w.chunks, n)
	for _, chunk := range w.chunks {
		lines := strings.Split(strings.TrimSuffix(chunk, "\n\n"), "\n")
		require.Len(t, lines, 4, chunk)
		assert.True(t, strings.HasPrefix(lines[0], "=== MCP Tool Called at "))
		var q, c int
		_, err := fmt.Sscanf(lines[1], "Query: query %d", &q)
		require.NoError(t, err)
		_, err = fmt.Sscanf(lines[2], "Cards found: %d", &c)
		require.NoError(t, err)
		assert.Equal(t, q, c)
		assert.Equal(t, "SUCCESS: Response generated", lines[3])
	}
}

func TestOpen_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", DefaultFileName)

	for _, q := range []string{"first", "second"} {
		l, err := Open(path)
		require.NoError(t, err)
		r := l.Begin(q)
		r.NoMatch()
		require.NoError(t, r.Commit())
		require.NoError(t, l.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "=== MCP Tool Called at "))
	assert.Less(t, strings.Index(string(data), "Query: first"), strings.Index(string(data), "Query: second"))
}

func TestBegin_UniqueIDs(t *testing.T) {
	l := Discard()
	a := l.Begin("a")
	b := l.Begin("b")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
