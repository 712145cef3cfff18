package cardsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/spachava753/mtgmcp/internal/mtg"
)

// DefaultSystemPrompt instructs the summarizer.
const DefaultSystemPrompt = "You are a helpful Magic: The Gathering assistant. When given card data in JSON format, " +
	"provide a natural, conversational summary of the cards. Highlight the most interesting or relevant cards " +
	"for the user's query. Be friendly and enthusiastic about the cards you're describing."

// DefaultUserPrompt embeds the query and the card data.
const DefaultUserPrompt = "The user asked: '{{ .Query }}'\n\nI found these cards:\n{{ .CardsJSON }}\n\n" +
	"Please provide a natural language summary of these cards for the user."

// PromptData is the data available to prompt templates.
type PromptData struct {
	Query     string
	Cards     []mtg.Card
	CardsJSON string
	Count     int
}

// Prompts holds the parsed summarizer prompt templates.
type Prompts struct {
	system *template.Template
	user   *template.Template
}

// ParsePrompts parses the system and user templates. Empty strings select
// the defaults.
func ParsePrompts(system, user string) (*Prompts, error) {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if user == "" {
		user = DefaultUserPrompt
	}

	sys, err := template.New("system").Funcs(sprig.TxtFuncMap()).Parse(system)
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt template: %w", err)
	}
	usr, err := template.New("user").Funcs(sprig.TxtFuncMap()).Parse(user)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}
	return &Prompts{system: sys, user: usr}, nil
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() *Prompts {
	p, err := ParsePrompts("", "")
	if err != nil {
		panic(err)
	}
	return p
}

// Render returns the system and user messages for query and cards.
func (p *Prompts) Render(query string, cards []mtg.Card) (string, string, error) {
	cardsJSON, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("serializing cards: %w", err)
	}
	data := PromptData{
		Query:     query,
		Cards:     cards,
		CardsJSON: string(cardsJSON),
		Count:     len(cards),
	}

	system, err := execute(p.system, data)
	if err != nil {
		return "", "", err
	}
	user, err := execute(p.user, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func execute(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
