package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spachava753/mtgmcp/internal/version"
)

// Tool name and description exposed by the server.
const (
	ToolName        = "search_mtg_cards"
	ToolDescription = "Search for Magic: The Gathering cards by description and provide a natural language summary"
)

// SearchInput defines the input schema for the card search tool
type SearchInput struct {
	Query string `json:"query" jsonschema:"Natural language description of the cards to find"`
}

// Runner answers a card search request with text. Run must not fail; errors
// are reported in the returned text.
type Runner interface {
	Run(ctx context.Context, query string) string
}

// Server wraps an MCP server that exposes card search as a tool
type Server struct {
	mcpServer *mcp.Server
	runner    Runner
	logger    *slog.Logger
}

// NewServer creates the MCP server and registers the card search tool.
func NewServer(runner Runner, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("tool runner is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mtgserver",
			Title:   "MTG Card Search MCP Server",
			Version: version.Get(),
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		runner:    runner,
		logger:    logger,
	}
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        ToolName,
		Description: ToolDescription,
	}, s.handleSearch)

	return s, nil
}

// handleSearch always answers with text. Business errors are already folded
// into the text by the runner, so the protocol error is always nil.
func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	text := s.runner.Run(ctx, input.Query)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// Serve runs the server over stdio and blocks until the context is cancelled
// or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio", "tool", ToolName)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over transport.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

// HTTPHandler returns a router serving the streamable HTTP transport at /mcp
// and a health check at /health.
func (s *Server) HTTPHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	r.Handle("/mcp", streamable)
	r.Handle("/mcp/*", streamable)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": version.Get()})
}
