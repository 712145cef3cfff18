package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/mtgmcp/internal/chat"
	"github.com/spachava753/mtgmcp/internal/mcp"
	"github.com/spachava753/mtgmcp/internal/toollog"
)

// ToolClient is a connected tool host session
type ToolClient interface {
	chat.Invoker
	Tools(ctx context.Context) ([]*gomcp.Tool, error)
	Close() error
}

// ChatOptions contains parameters for the interactive console
type ChatOptions struct {
	// ServerPath is the tool host executable. Empty means next to the
	// running executable.
	ServerPath string

	Stdin  io.Reader
	Stdout io.Writer

	// Interactive enables markdown rendering and the progress animation.
	Interactive bool

	// Connect starts the tool host. Defaults to launching ServerPath as a
	// subprocess.
	Connect func(ctx context.Context, serverPath string) (ToolClient, error)

	now func() time.Time
}

func startSubprocess(ctx context.Context, serverPath string) (ToolClient, error) {
	return mcp.Start(ctx, serverPath)
}

// ExecuteChat runs the interactive console until the user quits.
func ExecuteChat(ctx context.Context, opts ChatOptions) error {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	connect := opts.Connect
	if connect == nil {
		connect = startSubprocess
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}

	fmt.Fprintln(out, "=== MTG Card Search Console ===")
	fmt.Fprintf(out, "[Client] Starting at %s\n\n", now().Format(time.DateTime))

	serverPath := opts.ServerPath
	if serverPath == "" {
		p, err := mcp.ServerPath()
		if err != nil {
			return err
		}
		serverPath = p
	}
	logPath := filepath.Join(filepath.Dir(serverPath), toollog.DefaultFileName)

	fmt.Fprintf(out, "[Client] Server path: %s\n", serverPath)
	fmt.Fprintf(out, "[Client] Server logs: %s\n", logPath)
	fmt.Fprintln(out, "[Client] Connecting to MCP server...")

	client, err := connect(ctx, serverPath)
	if errors.Is(err, mcp.ErrServerNotFound) {
		fmt.Fprintf(out, "Error: Could not find MCP server at %s\n", serverPath)
		fmt.Fprintln(out, "Please build mtgserver into the same directory first, e.g. 'go build -o bin/ ./cmd/...'")
		return nil
	}
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintln(out, "[Client] Connected successfully!")
	fmt.Fprintf(out, "[Client] 💡 Check '%s' for detailed server logs\n\n", logPath)

	tools, err := client.Tools(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "[Client] Available tools:")
	for _, tool := range tools {
		fmt.Fprintf(out, "  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Enter your messages (or 'quit' to exit):")
	fmt.Fprintln(out, "Example: 'Find me some blue control cards'")
	fmt.Fprintln(out)

	session := &chat.Session{
		Invoker:  client,
		ToolName: mcp.ToolName,
		In:       stdin,
		Out:      out,
		Renderer: chat.NewRenderer(opts.Interactive),
		LogPath:  logPath,
	}
	if opts.Interactive {
		session.Progress = chat.NewProgress(out, chat.SearchFrames)
	}
	runErr := session.Run(ctx)

	fmt.Fprintln(out, "\n[Client] Shutting down...")
	fmt.Fprintf(out, "[Client] Final server log available at: %s\n", logPath)
	return runErr
}
