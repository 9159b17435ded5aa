package poker

import (
	"encoding/json"
	"testing"

	"github.com/lox/holdem-rooms/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Card
	}{
		{"As", NewCard(Ace, Spades)},
		{"2h", NewCard(Two, Hearts)},
		{"Kd", NewCard(King, Diamonds)},
		{"Tc", NewCard(Ten, Clubs)},
		{"10c", NewCard(Ten, Clubs)},
		{"qs", NewCard(Queen, Spades)},
		{"J♥", NewCard(Jack, Hearts)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCardErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "A", "1s", "Ax", "Zs", "10"} {
		_, err := ParseCard(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCardStrings(t *testing.T) {
	t.Parallel()

	c := NewCard(Ten, Diamonds)
	assert.Equal(t, "Td", c.String())
	assert.Equal(t, "10♦", c.Pretty())
	assert.Equal(t, 10, c.Rank.Value())
	assert.Equal(t, "diamonds", c.Suit.String())
	assert.True(t, c.Suit.IsRed())
	assert.Equal(t, "As Kh", FormatCards(MustParseCards("As", "Kh")))
}

func TestCardJSON(t *testing.T) {
	t.Parallel()

	cards := MustParseCards("As", "Td", "2c")
	data, err := json.Marshal(cards)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Td","2c"]`, string(data))

	var back []Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cards, back)
}

func TestNewDeckHasAllCards(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(42))
	require.Equal(t, DeckSize, d.Remaining())

	seen := make(map[Card]bool, DeckSize)
	for _, c := range d.Cards() {
		require.True(t, c.Valid())
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestDeckShuffleIsSeeded(t *testing.T) {
	t.Parallel()

	a := NewDeck(randutil.New(7)).Cards()
	b := NewDeck(randutil.New(7)).Cards()
	c := NewDeck(randutil.New(8)).Cards()
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDeckDrawsFromTop(t *testing.T) {
	t.Parallel()

	d := DeckOf(MustParseCards("As", "Kd", "Qh", "Jc")...)

	c, ok := d.Draw()
	require.True(t, ok)
	assert.Equal(t, "As", c.String())

	cards, err := d.DrawN(2)
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("Kd", "Qh"), cards)
	assert.Equal(t, 1, d.Remaining())

	_, err = d.DrawN(2)
	require.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 1, d.Remaining(), "failed draw must not consume cards")
}

func TestDeckJSONRoundTrip(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(1))
	_, err := d.DrawN(5)
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back Deck
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.Cards(), back.Cards())
	assert.Equal(t, DeckSize-5, back.Remaining())
}
