// Package mcp connects the chat console to the card search tool host and
// hosts that tool over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/mtgmcp/internal/version"
)

// ServerBinary is the file name of the tool host executable.
const ServerBinary = "mtgserver"

// ErrServerNotFound is returned when the tool host executable does not exist.
var ErrServerNotFound = errors.New("could not find MCP server")

// ServerPath returns the expected location of the tool host: next to the
// running executable.
func ServerPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating current executable: %w", err)
	}
	name := ServerBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(exe), name), nil
}

// Client is a connected session with a tool host.
type Client struct {
	session *mcp.ClientSession
}

// Start launches the tool host at serverPath as a subprocess and performs the
// MCP handshake over its stdio.
func Start(ctx context.Context, serverPath string, args ...string) (*Client, error) {
	info, err := os.Stat(serverPath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w at %s", ErrServerNotFound, serverPath)
	}
	return Connect(ctx, &mcp.CommandTransport{
		Command: exec.Command(serverPath, args...),
	})
}

// Connect performs the MCP handshake over transport.
func Connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "mtgchat",
		Version: version.Get(),
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server: %w", err)
	}
	return &Client{session: session}, nil
}

// Tools lists the tools advertised by the host.
func (c *Client) Tools(ctx context.Context) ([]*mcp.Tool, error) {
	var tools []*mcp.Tool
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("listing tools: %w", err)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

// Call invokes a tool and returns the text of every text block in the result.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) ([]string, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("calling tool %s: %w", name, err)
	}

	var texts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			texts = append(texts, text.Text)
		}
	}
	if res.IsError {
		return nil, fmt.Errorf("tool %s failed: %s", name, strings.Join(texts, "\n"))
	}
	return texts, nil
}

// Close ends the session, which also stops a subprocess host.
func (c *Client) Close() error {
	return c.session.Close()
}
