package poker

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists every suit in deck-building order.
var Suits = [...]Suit{Clubs, Diamonds, Hearts, Spades}

// String returns the lowercase suit name used in persisted records.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Symbol returns the unicode suit glyph.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed reports whether the suit prints red.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) letter() byte {
	return "cdhs"[s]
}

// Rank is a card rank whose numeric value is its poker value: 2-10, J=11,
// Q=12, K=13, A=14.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Value returns the numeric value of the rank (A=14).
func (r Rank) Value() int {
	return int(r)
}

// String returns the single character form of the rank ("T" for ten).
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string("23456789TJQKA"[r-Two])
}

// Label returns the rank as a player would read it ("10" for ten).
func (r Rank) Label() string {
	if r == Ten {
		return "10"
	}
	return r.String()
}

// Card is an immutable playing card. Two cards are equal when rank and suit
// match.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Spades
}

// String returns the compact form of the card, e.g. "As", "Td", "2c".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank.String() + string(c.Suit.letter())
}

// Pretty returns the card with a suit glyph, e.g. "A♠", "10♦".
func (c Card) Pretty() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank.Label() + c.Suit.Symbol()
}

// MarshalText encodes the card in its compact form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card: rank %d suit %d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its compact form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a card such as "As", "td", "10h" or "Q♠".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}

	var rankPart, suitPart string
	switch {
	case strings.HasPrefix(s, "10"):
		rankPart, suitPart = "T", s[2:]
	default:
		rankPart, suitPart = s[:1], s[1:]
	}

	rank, err := parseRank(rankPart)
	if err != nil {
		return Card{}, fmt.Errorf("invalid card string %q: %w", s, err)
	}
	suit, err := parseSuit(suitPart)
	if err != nil {
		return Card{}, fmt.Errorf("invalid card string %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

func parseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid rank: %s", s)
}

func parseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "c", "♣", "clubs":
		return Clubs, nil
	case "d", "♦", "diamonds":
		return Diamonds, nil
	case "h", "♥", "hearts":
		return Hearts, nil
	case "s", "♠", "spades":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit: %s", s)
}

// ParseCards parses each string with ParseCard.
func ParseCards(strs ...string) ([]Card, error) {
	cards := make([]Card, 0, len(strs))
	for _, s := range strs {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals; it panics on bad input.
func MustParseCards(strs ...string) []Card {
	cards, err := ParseCards(strs...)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards in compact form separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
