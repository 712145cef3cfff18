// Package chat implements the interactive console that forwards each line of
// user input to the card search tool and prints the answer.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Invoker calls a tool on a connected host and returns its text blocks.
type Invoker interface {
	Call(ctx context.Context, name string, args map[string]any) ([]string, error)
}

// Session is one interactive console session. At most one tool call is in
// flight at any time.
type Session struct {
	Invoker  Invoker
	ToolName string

	In  io.Reader
	Out io.Writer

	// Renderer defaults to plain text.
	Renderer Renderer
	// Progress is optional; nil disables the status animation.
	Progress *Progress
	// LogPath is mentioned in diagnostics when set.
	LogPath string

	now func() time.Time
}

// IsQuit reports whether line asks to end the session.
func IsQuit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "quit")
}

// Run reads lines until quit, end of input or context cancellation. Tool
// errors are printed and do not end the session.
func (s *Session) Run(ctx context.Context) error {
	if s.Renderer == nil {
		s.Renderer = &PlainTextRenderer{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(s.In, done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.Out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.Out)
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				fmt.Fprintln(s.Out)
				return nil
			}
			line = l
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if IsQuit(line) {
			return nil
		}
		s.dispatch(ctx, line)
	}
}

// readLines scans r in its own goroutine so a blocked read never delays
// cancellation. lines is closed at end of input, after the scan error (nil
// at EOF) is sent on errc. The goroutine stops once done is closed.
func readLines(r io.Reader, done <-chan struct{}) (lines <-chan string, errc <-chan error) {
	out := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-done:
				return
			}
		}
		errs <- scanner.Err()
	}()
	return out, errs
}

func (s *Session) dispatch(ctx context.Context, line string) {
	fmt.Fprintf(s.Out, "\n[Client] Calling MCP tool at %s...\n", s.now().Format(time.TimeOnly))
	if s.LogPath != "" {
		fmt.Fprintf(s.Out, "[Client] 💡 Watch '%s' to verify server-side execution\n", s.LogPath)
	}

	stop := s.Progress.Start(ctx)
	texts, err := s.Invoker.Call(ctx, s.ToolName, map[string]any{"query": line})
	stop()

	if err != nil {
		fmt.Fprintf(s.Out, "\n[Client] Error: %v\n\n", err)
		return
	}

	fmt.Fprintf(s.Out, "[Client] Response received at %s\n\n", s.now().Format(time.TimeOnly))
	for _, text := range texts {
		rendered, err := s.Renderer.Render(text)
		if err != nil {
			rendered = text
		}
		fmt.Fprintln(s.Out, strings.TrimRight(rendered, "\n"))
	}
	fmt.Fprintln(s.Out)
}
