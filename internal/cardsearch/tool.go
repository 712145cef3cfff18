// Package cardsearch implements the search_mtg_cards tool: find cards for a
// natural language request and summarize them with a chat model.
package cardsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spachava753/mtgmcp/internal/cardapi"
	"github.com/spachava753/mtgmcp/internal/deckai"
	"github.com/spachava753/mtgmcp/internal/llm"
	"github.com/spachava753/mtgmcp/internal/mtg"
	"github.com/spachava753/mtgmcp/internal/stringlist"
	"github.com/spachava753/mtgmcp/internal/toollog"
)

// Texts returned to the caller in place of a summary.
const (
	NoMatchText = "I couldn't find any cards matching that description. " +
		"Try rephrasing your query or being more specific about what you're looking for."
	ParseErrorText = "I encountered an error while processing your search. " +
		"The issue appears to be with how the card data is formatted. " +
		"This is a known issue with certain search queries. " +
		"Please try rephrasing your search or being more specific about the card attributes you're looking for."
	genericErrorPrefix = "I encountered an error: "
)

// SummaryTemperature is the sampling temperature used for summaries.
const SummaryTemperature = 1.0

// DefaultTimeout bounds each external call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Searcher finds the cards that match a natural language request.
type Searcher interface {
	Search(ctx context.Context, query string) ([]mtg.Card, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]mtg.Card, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]mtg.Card, error) {
	return f(ctx, query)
}

// Options configures a Tool.
type Options struct {
	Searcher   Searcher
	Summarizer llm.Completer
	// Prompts defaults to the built-in prompts.
	Prompts *Prompts
	// Log defaults to a discarding log.
	Log    *toollog.Log
	Logger *slog.Logger

	SearchTimeout    time.Duration
	SummarizeTimeout time.Duration
	// SummaryMaxTokens caps the summary length when positive.
	SummaryMaxTokens int
}

// Tool answers card search requests. It is safe for concurrent use.
type Tool struct {
	searcher         Searcher
	summarizer       llm.Completer
	prompts          *Prompts
	log              *toollog.Log
	logger           *slog.Logger
	searchTimeout    time.Duration
	summarizeTimeout time.Duration
	maxTokens        int
}

// New returns a Tool.
func New(opts Options) (*Tool, error) {
	if opts.Searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if opts.Summarizer == nil {
		return nil, errors.New("summarizer is required")
	}

	t := &Tool{
		searcher:         opts.Searcher,
		summarizer:       opts.Summarizer,
		prompts:          opts.Prompts,
		log:              opts.Log,
		logger:           opts.Logger,
		searchTimeout:    opts.SearchTimeout,
		summarizeTimeout: opts.SummarizeTimeout,
		maxTokens:        opts.SummaryMaxTokens,
	}
	if t.prompts == nil {
		t.prompts = DefaultPrompts()
	}
	if t.log == nil {
		t.log = toollog.Discard()
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.searchTimeout <= 0 {
		t.searchTimeout = DefaultTimeout
	}
	if t.summarizeTimeout <= 0 {
		t.summarizeTimeout = DefaultTimeout
	}
	return t, nil
}

// Run answers query with a summary or one of the fixed reply texts. It never
// fails; every error is turned into text for the caller.
func (t *Tool) Run(ctx context.Context, query string) string {
	rec := t.log.Begin(query)
	defer func() {
		if err := rec.Commit(); err != nil {
			t.logger.Warn("failed to write tool call log", "error", err)
		}
	}()
	logger := t.logger.With("invocation", rec.ID)
	logger.Info("search_mtg_cards called", "query", query)

	cards, err := t.search(ctx, query)
	if err != nil {
		return t.fail(logger, rec, err)
	}
	rec.CardsFound(len(cards))

	if len(cards) == 0 {
		rec.NoMatch()
		logger.Info("no cards matched")
		return NoMatchText
	}

	summary, err := t.summarize(ctx, query, cards)
	if err != nil {
		return t.fail(logger, rec, err)
	}
	rec.Success()
	logger.Info("summary generated", "cards", len(cards))
	return summary
}

func (t *Tool) search(ctx context.Context, query string) ([]mtg.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, t.searchTimeout)
	defer cancel()

	cards, err := t.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("card search failed: %w", err)
	}
	return cards, nil
}

func (t *Tool) summarize(ctx context.Context, query string, cards []mtg.Card) (string, error) {
	system, user, err := t.prompts.Render(query, cards)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, t.summarizeTimeout)
	defer cancel()

	text, err := t.summarizer.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.System(system), llm.User(user)},
		Temperature: SummaryTemperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("summary failed: %w", llm.ErrEmptyCompletion)
	}
	return text, nil
}

func (t *Tool) fail(logger *slog.Logger, rec *toollog.Record, err error) string {
	if IsParseError(err) {
		rec.ParseFailure(err)
		logger.Error("structured data parse failure", "error", err)
		return ParseErrorText
	}
	rec.Failure(err)
	logger.Error("tool invocation failed", "error", err)
	return genericErrorPrefix + err.Error()
}

// IsParseError reports whether err comes from structured data that could not
// be decoded.
func IsParseError(err error) bool {
	var (
		queryErr  *deckai.ParseError
		decodeErr *cardapi.DecodeError
		shapeErr  *stringlist.ShapeError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	return errors.As(err, &queryErr) ||
		errors.As(err, &decodeErr) ||
		errors.As(err, &shapeErr) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr)
}
