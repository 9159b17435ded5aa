package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/poker"
)

type roomOption func(*Room)

func withMaxPlayers(n int) roomOption {
	return func(r *Room) { r.MaxPlayers = n }
}

// withChips overrides the stack of seat i.
func withChips(i, chips int) roomOption {
	return func(r *Room) { r.Seats[i].Chips = chips }
}

// newTestRoom seats players p1..pN with 1000 chips each.
func newTestRoom(players int, opts ...roomOption) *Room {
	r := &Room{ID: "room1", Name: "test", MaxPlayers: 6, Seats: []Seat{}}
	for i := 1; i <= players; i++ {
		r.Seats = append(r.Seats, Seat{
			PlayerID: fmt.Sprintf("p%d", i),
			Name:     fmt.Sprintf("player%d", i),
			Chips:    DefaultStartingChips,
		})
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newTestGame() *Game {
	return &Game{ID: "game1", Phase: PreFlop, CurrentTurn: 1, CommunityCards: []poker.Card{}}
}

// startedHand deals a hand from deck, which may be nil for an ordered deck.
func startedHand(t *testing.T, room *Room, deck *poker.Deck) *transition {
	t.Helper()
	if deck == nil {
		deck = poker.NewOrderedDeck()
	}
	tr := &transition{room: room}
	require.NoError(t, tr.start(newTestGame(), deck))
	tr.events = nil
	return tr
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, kind, te.Kind, "unexpected error: %v", err)
	return te
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.EventType()
	}
	return out
}
