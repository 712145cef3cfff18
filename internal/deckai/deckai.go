// Package deckai turns a natural language card request into a structured
// card query with a chat model and runs it against the card API.
package deckai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/spachava753/mtgmcp/internal/llm"
	"github.com/spachava753/mtgmcp/internal/mtg"
	"github.com/spachava753/mtgmcp/internal/stringlist"
)

// ParseError reports a model response that could not be read as a card query.
type ParseError struct {
	// Path is the JSON path of the offending field when known.
	Path string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse search query at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to parse search query: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CardSearcher runs a structured query against a card catalogue.
type CardSearcher interface {
	Search(ctx context.Context, q mtg.Query) ([]mtg.Card, error)
}

// Service is the deck-AI search delegate.
type Service struct {
	completer llm.Completer
	cards     CardSearcher
	logger    *slog.Logger
	prompt    string
}

// New returns a Service. A nil logger discards logs.
func New(completer llm.Completer, cards CardSearcher, logger *slog.Logger) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if cards == nil {
		return nil, errors.New("card searcher is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	prompt, err := queryPrompt()
	if err != nil {
		return nil, err
	}

	return &Service{
		completer: completer,
		cards:     cards,
		logger:    logger,
		prompt:    prompt,
	}, nil
}

// Search translates message into a query and returns the matching cards.
func (s *Service) Search(ctx context.Context, message string) ([]mtg.Card, error) {
	s.logger.Info("translating card request", "message", message)

	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(s.prompt),
			llm.User(message),
		},
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("translating request into a card query: %w", err)
	}

	q, err := ParseQuery(raw)
	if err != nil {
		s.logger.Error("model returned an unexpected query shape", "error", err)
		return nil, err
	}
	s.logger.Info("searching cards", "query", q)

	cards, err := s.cards.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	s.logger.Info("card search complete", "cards", len(cards))
	return cards, nil
}

// ParseQuery decodes a model completion into a query. Markdown code fences
// around the JSON object are tolerated.
func ParseQuery(raw string) (mtg.Query, error) {
	body := stripCodeFence(raw)
	if !gjson.Valid(body) {
		return mtg.Query{}, &ParseError{Raw: raw, Err: errors.New("response is not valid JSON")}
	}

	root := gjson.Parse(body)
	// some models nest the object under a "query" key
	if q := root.Get("query"); q.IsObject() {
		root = q
	}
	if !root.IsObject() {
		return mtg.Query{}, &ParseError{Raw: raw, Err: fmt.Errorf("expected JSON object, got %s", root.Type)}
	}

	var q mtg.Query
	if err := json.Unmarshal([]byte(root.Raw), &q); err != nil {
		return mtg.Query{}, &ParseError{Path: errorPath(err, root), Raw: raw, Err: err}
	}
	if q.IsEmpty() {
		return mtg.Query{}, &ParseError{Raw: raw, Err: errors.New("query has no search filters")}
	}
	return q, nil
}

// errorPath finds the field responsible for a decode failure.
func errorPath(err error, root gjson.Result) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "$." + typeErr.Field
	}

	var shapeErr *stringlist.ShapeError
	if errors.As(err, &shapeErr) {
		for _, field := range []string{"colors", "types", "subtypes", "supertypes"} {
			v := root.Get(field)
			if v.Exists() && !v.IsArray() && v.Type != gjson.String && v.Type != gjson.Null {
				return "$." + field
			}
		}
	}
	return ""
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func queryPrompt() (string, error) {
	schema, err := jsonschema.For[mtg.Query](nil)
	if err != nil {
		return "", fmt.Errorf("building query schema: %w", err)
	}
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling query schema: %w", err)
	}

	return fmt.Sprintf(`You translate requests for Magic: The Gathering cards into a search query for the magicthegathering.io card API.
Respond with a single JSON object and nothing else. The object must match this JSON schema:

%s

Rules:
- Only include fields the request implies.
- colors, types, subtypes and supertypes may be a single string or an array of strings.
- Use capitalized English names, e.g. "Blue", "Creature", "Legendary".
- Describe mechanics with a short rules text phrase in "text", e.g. "counter target spell" for control.`, schemaJSON), nil
}
