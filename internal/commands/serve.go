package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spachava753/mtgmcp/internal/cardapi"
	"github.com/spachava753/mtgmcp/internal/cardsearch"
	"github.com/spachava753/mtgmcp/internal/config"
	"github.com/spachava753/mtgmcp/internal/deckai"
	"github.com/spachava753/mtgmcp/internal/llm"
	"github.com/spachava753/mtgmcp/internal/mcp"
	"github.com/spachava753/mtgmcp/internal/toollog"
)

// ServeOptions contains parameters for running the tool host
type ServeOptions struct {
	// Config is the resolved effective configuration (required)
	Config *config.Config
	// HTTPAddr serves streamable HTTP on this address instead of stdio
	HTTPAddr string
	// LogFile overrides the tool call log location
	LogFile string
	// Logger receives diagnostics. It must not write to stdout in stdio mode.
	Logger *slog.Logger
}

// ToolDeps overrides the external services used by the tool
type ToolDeps struct {
	Summarizer llm.Completer
	DeckAI     llm.Completer
}

// BuildTool wires the card search tool from cfg. Completers missing from
// deps are created from the configuration.
func BuildTool(ctx context.Context, cfg *config.Config, deps ToolDeps, log *toollog.Log, logger *slog.Logger) (*cardsearch.Tool, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	summarizer := deps.Summarizer
	if summarizer == nil {
		c, err := llm.New(ctx, cfg.Summarizer)
		if err != nil {
			return nil, fmt.Errorf("creating summarizer: %w", err)
		}
		summarizer = c
	}
	deckCompleter := deps.DeckAI
	if deckCompleter == nil {
		c, err := llm.New(ctx, cfg.DeckAI)
		if err != nil {
			return nil, fmt.Errorf("creating deck-AI model: %w", err)
		}
		deckCompleter = c
	}

	cards := cardapi.New(cfg.CardAPIURL, cfg.PageSize, nil, cfg.SearchTimeout)
	deck, err := deckai.New(deckCompleter, cards, logger)
	if err != nil {
		return nil, err
	}

	prompts, err := cardsearch.ParsePrompts(cfg.SystemPrompt, cfg.UserPrompt)
	if err != nil {
		return nil, err
	}

	return cardsearch.New(cardsearch.Options{
		Searcher:         deck,
		Summarizer:       summarizer,
		Prompts:          prompts,
		Log:              log,
		Logger:           logger,
		SearchTimeout:    cfg.SearchTimeout,
		SummarizeTimeout: cfg.SummarizeTimeout,
		SummaryMaxTokens: cfg.SummaryMaxTokens,
	})
}

// ExecuteServe runs the tool host until ctx is cancelled or the client
// disconnects.
func ExecuteServe(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logPath := opts.LogFile
	if logPath == "" && opts.Config != nil {
		logPath = opts.Config.LogPath
	}
	if logPath == "" {
		logPath = toollog.DefaultPath()
	}
	toolLog, err := toollog.Open(logPath)
	if err != nil {
		return err
	}
	defer toolLog.Close()
	logger.Info("tool call log", "path", logPath)

	tool, err := BuildTool(ctx, opts.Config, ToolDeps{}, toolLog, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(tool, logger)
	if err != nil {
		return err
	}

	if opts.HTTPAddr == "" {
		return server.Serve(ctx)
	}
	return serveHTTP(ctx, opts.HTTPAddr, server.HTTPHandler(), logger)
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over streamable HTTP", "addr", ln.Addr().String(), "path", "/mcp")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		return nil
	}
}
