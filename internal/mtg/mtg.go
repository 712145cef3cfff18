// Package mtg holds the Magic: The Gathering records exchanged between the
// deck-AI search delegate, the card API client and the summarizing tool.
package mtg

import (
	"github.com/spachava753/mtgmcp/internal/stringlist"
)

// Card is a single card record as returned by the magicthegathering.io API.
// Only the fields useful for summarization are kept.
type Card struct {
	Name          string   `json:"name"`
	ManaCost      string   `json:"manaCost,omitempty"`
	CMC           float64  `json:"cmc,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	ColorIdentity []string `json:"colorIdentity,omitempty"`
	Type          string   `json:"type,omitempty"`
	Supertypes    []string `json:"supertypes,omitempty"`
	Types         []string `json:"types,omitempty"`
	Subtypes      []string `json:"subtypes,omitempty"`
	Rarity        string   `json:"rarity,omitempty"`
	Set           string   `json:"set,omitempty"`
	SetName       string   `json:"setName,omitempty"`
	Text          string   `json:"text,omitempty"`
	Flavor        string   `json:"flavor,omitempty"`
	Power         string   `json:"power,omitempty"`
	Toughness     string   `json:"toughness,omitempty"`
	Loyalty       string   `json:"loyalty,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	MultiverseID  string   `json:"multiverseid,omitempty"`
}

// Query is the structured search produced from a natural language request.
// The list fields accept either a single string or an array from the model.
type Query struct {
	Name       string          `json:"name,omitempty" jsonschema:"Exact or partial card name"`
	Colors     stringlist.List `json:"colors,omitempty" jsonschema:"Card colors: White, Blue, Black, Red or Green"`
	Types      stringlist.List `json:"types,omitempty" jsonschema:"Card types such as Creature, Instant, Sorcery, Enchantment, Artifact, Planeswalker, Land"`
	Subtypes   stringlist.List `json:"subtypes,omitempty" jsonschema:"Card subtypes such as Wizard, Dragon, Aura, Equipment"`
	Supertypes stringlist.List `json:"supertypes,omitempty" jsonschema:"Card supertypes such as Legendary, Basic, Snow"`
	Rarity     string          `json:"rarity,omitempty" jsonschema:"Common, Uncommon, Rare, Mythic Rare"`
	Text       string          `json:"text,omitempty" jsonschema:"A phrase that must appear in the rules text, e.g. counter target spell"`
	Set        string          `json:"set,omitempty" jsonschema:"Three letter set code"`
	CMC        *float64        `json:"cmc,omitempty" jsonschema:"Converted mana cost"`
	PageSize   int             `json:"pageSize,omitempty" jsonschema:"Maximum number of cards to return"`
}

// IsEmpty reports whether the query carries no filter at all.
func (q Query) IsEmpty() bool {
	return q.Name == "" &&
		q.Colors.Compact().IsEmpty() &&
		q.Types.Compact().IsEmpty() &&
		q.Subtypes.Compact().IsEmpty() &&
		q.Supertypes.Compact().IsEmpty() &&
		q.Rarity == "" &&
		q.Text == "" &&
		q.Set == "" &&
		q.CMC == nil
}
