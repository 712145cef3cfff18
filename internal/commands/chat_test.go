package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/mtgmcp/internal/mcp"
)

type fakeToolClient struct {
	calls  []string
	closed bool
}

func (f *fakeToolClient) Call(_ context.Context, name string, args map[string]any) ([]string, error) {
	q, _ := args["query"].(string)
	f.calls = append(f.calls, q)
	if q == "explode" {
		return nil, errors.New("broken pipe")
	}
	return []string{"answer to " + q}, nil
}

func (f *fakeToolClient) Tools(context.Context) ([]*gomcp.Tool, error) {
	return []*gomcp.Tool{{Name: mcp.ToolName, Description: mcp.ToolDescription}}, nil
}

func (f *fakeToolClient) Close() error {
	f.closed = true
	return nil
}

func fixedNow() time.Time { return time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC) }

func TestExecuteChat_Session(t *testing.T) {
	client := &fakeToolClient{}
	var out bytes.Buffer
	serverPath := filepath.Join("/opt", "mtg", "mtgserver")

	err := ExecuteChat(context.Background(), ChatOptions{
		ServerPath: serverPath,
		Stdin:      strings.NewReader("\nFind me some blue control cards\nexplode\nQUIT\n"),
		Stdout:     &out,
		Connect: func(_ context.Context, path string) (ToolClient, error) {
			assert.Equal(t, serverPath, path)
			return client, nil
		},
		now: fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Find me some blue control cards", "explode"}, client.calls)
	assert.True(t, client.closed)

	got := out.String()
	logPath := filepath.Join("/opt", "mtg", "mcp-tool-calls.log")
	for _, want := range []string{
		"=== MTG Card Search Console ===\n",
		"[Client] Starting at 2025-05-06 07:08:09\n",
		"[Client] Server path: " + serverPath + "\n",
		"[Client] Server logs: " + logPath + "\n",
		"[Client] Connected successfully!\n",
		fmt.Sprintf("  - %s: %s\n", mcp.ToolName, mcp.ToolDescription),
		"Example: 'Find me some blue control cards'\n",
		"answer to Find me some blue control cards\n",
		"[Client] Error: broken pipe\n",
		"[Client] Shutting down...\n",
		"[Client] Final server log available at: " + logPath + "\n",
	} {
		assert.Contains(t, got, want)
	}
}

func TestExecuteChat_ServerNotFound(t *testing.T) {
	var out bytes.Buffer
	missing := filepath.Join(t.TempDir(), "mtgserver")

	err := ExecuteChat(context.Background(), ChatOptions{
		ServerPath: missing,
		Stdin:      strings.NewReader("this is never read\n"),
		Stdout:     &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Error: Could not find MCP server at "+missing+"\n")
	assert.NotContains(t, out.String(), "Connected successfully")
}

func TestExecuteChat_ConnectFailure(t *testing.T) {
	var out bytes.Buffer
	err := ExecuteChat(context.Background(), ChatOptions{
		ServerPath: "/x/mtgserver",
		Stdin:      strings.NewReader(""),
		Stdout:     &out,
		Connect: func(context.Context, string) (ToolClient, error) {
			return nil, errors.New("handshake failed")
		},
	})
	assert.EqualError(t, err, "handshake failed")
}

func TestExecuteChat_OverInMemoryServer(t *testing.T) {
	server, err := mcp.NewServer(runnerFunc(func(_ context.Context, q string) string {
		return "summary: " + q
	}), nil)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ExecuteChat(context.Background(), ChatOptions{
		ServerPath: "/x/mtgserver",
		Stdin:      strings.NewReader("elves\n"),
		Stdout:     &out,
		Connect: func(ctx context.Context, _ string) (ToolClient, error) {
			serverTransport, clientTransport := gomcp.NewInMemoryTransports()
			if _, err := server.Connect(ctx, serverTransport); err != nil {
				return nil, err
			}
			return mcp.Connect(ctx, clientTransport)
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "summary: elves\n")
	assert.Contains(t, out.String(), "  - search_mtg_cards: ")
}

type runnerFunc func(ctx context.Context, q string) string

func (f runnerFunc) Run(ctx context.Context, q string) string { return f(ctx, q) }
