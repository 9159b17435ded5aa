package table

import (
	"fmt"
	"time"

	"github.com/lox/holdem-rooms/poker"
)

// Phase is a betting round of a hand.
type Phase string

const (
	PreFlop Phase = "pre-flop"
	Flop    Phase = "flop"
	Turn    Phase = "turn"
	River   Phase = "river"
)

func (p Phase) String() string { return string(p) }

// Action is a move a seated player can make on their turn.
type Action string

const (
	Check Action = "check"
	Call  Action = "call"
	Raise Action = "raise"
	Fold  Action = "fold"
)

func (a Action) String() string { return string(a) }

// ParseAction validates a wire action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Check, Call, Raise, Fold:
		return a, nil
	}
	return "", &Error{
		Kind:    KindInvalidAction,
		Message: fmt.Sprintf("Unknown action %q", s),
		Details: map[string]any{"player_action": s},
	}
}

// DefaultStartingChips is the bank a new player receives.
const DefaultStartingChips = 1000

// Player is a registered participant with a chip bank. Joining a room copies
// the bank onto the seat.
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Chips     int       `json:"chips" db:"chips"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Seat is a player's place at a room, holding their table stack and the
// state of the current hand.
type Seat struct {
	PlayerID   string       `json:"id"`
	Name       string       `json:"name"`
	Chips      int          `json:"chips"`
	CurrentBet int          `json:"current_bet"`
	Hand       []poker.Card `json:"hand,omitempty"`
	Folded     bool         `json:"folded"`
	Finished   bool         `json:"finished"`
}

// Clone returns a copy of the seat that shares no slices.
func (s Seat) Clone() Seat {
	if s.Hand != nil {
		s.Hand = append([]poker.Card(nil), s.Hand...)
	}
	return s
}

// resetForHand clears everything tied to the previous hand.
func (s *Seat) resetForHand() {
	s.CurrentBet = 0
	s.Hand = nil
	s.Folded = false
	s.Finished = false
}

// Room is a table that seats players and hosts one hand at a time.
type Room struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	MaxPlayers        int         `json:"max_players"`
	Seats             []Seat      `json:"current_players"`
	ActiveGame        bool        `json:"active_game"`
	CurrentPlayerTurn string      `json:"current_player_turn,omitempty"`
	Deck              *poker.Deck `json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Seats = cloneSeats(r.Seats)
	out.Deck = r.Deck.Clone()
	return &out
}

func (r *Room) seatIndex(playerID string) int {
	for i := range r.Seats {
		if r.Seats[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Seat returns the seat held by playerID.
func (r *Room) Seat(playerID string) (Seat, bool) {
	if i := r.seatIndex(playerID); i >= 0 {
		return r.Seats[i], true
	}
	return Seat{}, false
}

func (r *Room) highestBet() int {
	highest := 0
	for _, s := range r.Seats {
		if s.CurrentBet > highest {
			highest = s.CurrentBet
		}
	}
	return highest
}

func (r *Room) activeCount() int {
	n := 0
	for _, s := range r.Seats {
		if !s.Folded {
			n++
		}
	}
	return n
}

// allFinished reports whether every seat still in the hand has acted.
func (r *Room) allFinished() bool {
	for _, s := range r.Seats {
		if !s.Folded && !s.Finished {
			return false
		}
	}
	return true
}

func (r *Room) resetFinished() {
	for i := range r.Seats {
		r.Seats[i].Finished = false
	}
}

// nextActiveAfter returns the index of the first non-folded seat after idx
// in seat order, wrapping around. It returns -1 when every seat has folded.
func (r *Room) nextActiveAfter(idx int) int {
	n := len(r.Seats)
	for step := 1; step <= n; step++ {
		j := (idx + step) % n
		if !r.Seats[j].Folded {
			return j
		}
	}
	return -1
}

// Game is the record of one hand. After showdown the pot and community
// cards are cleared and the winner fields are set.
type Game struct {
	ID             string       `json:"id"`
	RoomID         string       `json:"room_id"`
	Phase          Phase        `json:"current_phase"`
	CurrentTurn    int          `json:"current_turn"`
	CommunityCards []poker.Card `json:"community_cards"`
	Pot            int          `json:"pot"`
	Winner         *Seat        `json:"winner_player,omitempty"`
	WinnerHand     string       `json:"winner_hand,omitempty"`
	PotAwarded     int          `json:"pot_awarded"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.CommunityCards = append([]poker.Card{}, g.CommunityCards...)
	if g.Winner != nil {
		w := g.Winner.Clone()
		out.Winner = &w
	}
	return &out
}

// Finished reports whether the hand was resolved.
func (g *Game) Finished() bool {
	return g.Winner != nil
}

// State is a room together with the game it is bound to, if any.
type State struct {
	Room *Room `json:"room"`
	Game *Game `json:"game,omitempty"`
}

func cloneSeats(seats []Seat) []Seat {
	if seats == nil {
		return nil
	}
	out := make([]Seat, len(seats))
	for i, s := range seats {
		out[i] = s.Clone()
	}
	return out
}
