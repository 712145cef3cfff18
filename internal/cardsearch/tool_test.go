package cardsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/mtgmcp/internal/cardapi"
	"github.com/spachava753/mtgmcp/internal/deckai"
	"github.com/spachava753/mtgmcp/internal/llm"
	"github.com/spachava753/mtgmcp/internal/mtg"
	"github.com/spachava753/mtgmcp/internal/stringlist"
	"github.com/spachava753/mtgmcp/internal/toollog"
)

var blueCards = []mtg.Card{
	{Name: "Counterspell", ManaCost: "{U}{U}", Type: "Instant", Colors: []string{"Blue"}},
	{Name: "Mana Leak", ManaCost: "{1}{U}", Type: "Instant", Colors: []string{"Blue"}},
	{Name: "Cryptic Command", ManaCost: "{1}{U}{U}{U}", Type: "Instant", Colors: []string{"Blue"}},
}

type countingCompleter struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req llm.Request) (string, error)
	last  llm.Request
}

func (c *countingCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.calls.Add(1)
	c.last = req
	return c.fn(ctx, req)
}

func fixedSearcher(cards []mtg.Card, err error) Searcher {
	return SearcherFunc(func(context.Context, string) ([]mtg.Card, error) { return cards, err })
}

func newTool(t *testing.T, s Searcher, c llm.Completer, mods ...func(*Options)) (*Tool, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts := Options{Searcher: s, Summarizer: c, Log: toollog.New(&buf)}
	for _, m := range mods {
		m(&opts)
	}
	tool, err := New(opts)
	require.NoError(t, err)
	return tool, &buf
}

func TestRun_Summary(t *testing.T) {
	summarizer := &countingCompleter{fn: func(context.Context, llm.Request) (string, error) {
		return "Here are three great blue control cards...", nil
	}}
	tool, logBuf := newTool(t, fixedSearcher(blueCards, nil), summarizer)

	got := tool.Run(context.Background(), "Find me some blue control cards")
	assert.Equal(t, "Here are three great blue control cards...", got)
	assert.EqualValues(t, 1, summarizer.calls.Load())

	req := summarizer.last
	assert.Equal(t, SummaryTemperature, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.System(DefaultSystemPrompt), req.Messages[0])

	cardsJSON, err := json.MarshalIndent(blueCards, "", "  ")
	require.NoError(t, err)
	wantUser := "The user asked: 'Find me some blue control cards'\n\nI found these cards:\n" +
		string(cardsJSON) + "\n\nPlease provide a natural language summary of these cards for the user."
	assert.Equal(t, llm.User(wantUser), req.Messages[1])

	log := logBuf.String()
	assert.Contains(t, log, "Query: Find me some blue control cards\n")
	assert.Contains(t, log, "Cards found: 3\n")
	assert.Contains(t, log, "SUCCESS: Response generated\n")
}

func TestRun_NoMatchSkipsSummarizer(t *testing.T) {
	for _, cards := range [][]mtg.Card{nil, {}} {
		summarizer := &countingCompleter{fn: func(context.Context, llm.Request) (string, error) {
			return "should not be used", nil
		}}
		tool, logBuf := newTool(t, fixedSearcher(cards, nil), summarizer)

		got := tool.Run(context.Background(), "a card that does not exist")
		assert.Equal(t, NoMatchText, got)
		assert.Zero(t, summarizer.calls.Load())
		assert.Contains(t, logBuf.String(), "No cards matched\n")
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		searchErr error
		summary   func(context.Context, llm.Request) (string, error)
		want      string
		wantLog   string
	}{
		{
			name:      "query parse failure",
			searchErr: &deckai.ParseError{Path: "$.colors", Err: errors.New("bad shape")},
			want:      ParseErrorText,
			wantLog:   "JSON ERROR: ",
		},
		{
			name:      "card decode failure",
			searchErr: fmt.Errorf("wrapped: %w", &cardapi.DecodeError{Err: errors.New("eof")}),
			want:      ParseErrorText,
			wantLog:   "JSON ERROR: ",
		},
		{
			name:      "search failure",
			searchErr: errors.New("card API status 503: Service Unavailable"),
			want:      "I encountered an error: card search failed: card API status 503: Service Unavailable",
			wantLog:   "ERROR: card search failed",
		},
		{
			name: "summarizer failure",
			summary: func(context.Context, llm.Request) (string, error) {
				return "", errors.New("rate limited")
			},
			want:    "I encountered an error: summary failed: rate limited",
			wantLog: "ERROR: summary failed: rate limited",
		},
		{
			name: "empty summary",
			summary: func(context.Context, llm.Request) (string, error) {
				return "  ", nil
			},
			want:    "I encountered an error: summary failed: " + llm.ErrEmptyCompletion.Error(),
			wantLog: "ERROR: summary failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := tt.summary
			if summary == nil {
				summary = func(context.Context, llm.Request) (string, error) { return "ok", nil }
			}
			var cards []mtg.Card
			if tt.searchErr == nil {
				cards = blueCards
			}
			tool, logBuf := newTool(t, fixedSearcher(cards, tt.searchErr), &countingCompleter{fn: summary})

			got := tool.Run(context.Background(), "q")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, logBuf.String(), tt.wantLog)
		})
	}
}

func TestRun_ParseTextDiffersFromGeneric(t *testing.T) {
	assert.False(t, strings.HasPrefix(ParseErrorText, genericErrorPrefix))
}

func TestRun_SearchDeadline(t *testing.T) {
	searcher := SearcherFunc(func(ctx context.Context, _ string) ([]mtg.Card, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	summarizer := &countingCompleter{fn: func(context.Context, llm.Request) (string, error) { return "x", nil }}
	tool, _ := newTool(t, searcher, summarizer, func(o *Options) { o.SearchTimeout = 20 * time.Millisecond })

	got := tool.Run(context.Background(), "slow")
	assert.Equal(t, "I encountered an error: card search failed: "+context.DeadlineExceeded.Error(), got)
	assert.Zero(t, summarizer.calls.Load())
}

func TestRun_SummarizeDeadline(t *testing.T) {
	summarizer := &countingCompleter{fn: func(ctx context.Context, _ llm.Request) (string, error) {
		_, ok := ctx.Deadline()
		if !ok {
			return "", errors.New("no deadline")
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	tool, _ := newTool(t, fixedSearcher(blueCards, nil), summarizer, func(o *Options) { o.SummarizeTimeout = 20 * time.Millisecond })

	got := tool.Run(context.Background(), "slow")
	assert.Equal(t, "I encountered an error: summary failed: "+context.DeadlineExceeded.Error(), got)
}

func TestRun_CustomPrompts(t *testing.T) {
	prompts, err := ParsePrompts("You love {{ .Count }} cards.", "{{ .Query | upper }}: {{ range .Cards }}{{ .Name }};{{ end }}")
	require.NoError(t, err)

	summarizer := &countingCompleter{fn: func(context.Context, llm.Request) (string, error) { return "ok", nil }}
	tool, _ := newTool(t, fixedSearcher(blueCards[:2], nil), summarizer, func(o *Options) { o.Prompts = prompts })

	assert.Equal(t, "ok", tool.Run(context.Background(), "blue"))
	assert.Equal(t, llm.System("You love 2 cards."), summarizer.last.Messages[0])
	assert.Equal(t, llm.User("BLUE: Counterspell;Mana Leak;"), summarizer.last.Messages[1])
}

func TestParsePrompts_Invalid(t *testing.T) {
	_, err := ParsePrompts("{{ .Query", "")
	assert.ErrorContains(t, err, "system prompt template")
}

func TestIsParseError(t *testing.T) {
	var syntaxErr *json.SyntaxError
	require.ErrorAs(t, json.Unmarshal([]byte("{"), &struct{}{}), &syntaxErr)

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, json.Unmarshal([]byte(`{"cmc":"x"}`), &mtg.Card{}), &typeErr)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"query", &deckai.ParseError{Err: errors.New("x")}, true},
		{"decode", &cardapi.DecodeError{Err: errors.New("x")}, true},
		{"shape", fmt.Errorf("wrap: %w", &stringlist.ShapeError{Kind: "number"}), true},
		{"syntax", syntaxErr, true},
		{"type", typeErr, true},
		{"deadline", context.DeadlineExceeded, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsParseError(tt.err))
		})
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{Summarizer: &countingCompleter{}})
	assert.Error(t, err)
	_, err = New(Options{Searcher: fixedSearcher(nil, nil)})
	assert.Error(t, err)
}
