package table

import (
	"fmt"

	"github.com/lox/holdem-rooms/poker"
)

// MaxSeats is the most seats a room can have and still deal a full board.
const MaxSeats = (poker.DeckSize - 5) / 2

// transition applies one engine operation to working copies of a room and
// its game, collecting the events to publish once the result is saved.
type transition struct {
	room   *Room
	game   *Game
	events []Event
}

func (t *transition) emit(e Event) {
	t.events = append(t.events, e)
}

func (t *transition) state() *State {
	return &State{Room: t.room.Clone(), Game: t.game.Clone()}
}

func (t *transition) join(p *Player) error {
	r := t.room
	if r.ActiveGame {
		return ruleError(KindHandInProgress, "Players cannot join while a hand is in progress",
			map[string]any{"room_id": r.ID})
	}
	if r.seatIndex(p.ID) >= 0 {
		return ruleError(KindAlreadySeated, "Player is already seated in this room",
			map[string]any{"player_id": p.ID})
	}
	if len(r.Seats) >= r.MaxPlayers {
		return ruleError(KindRoomFull, "This room is full",
			map[string]any{"max_players": r.MaxPlayers})
	}

	r.Seats = append(r.Seats, Seat{PlayerID: p.ID, Name: p.Name, Chips: p.Chips})
	t.emit(NewUpdatePlayersEvent(r.Seats))
	return nil
}

func (t *transition) leave(playerID string) error {
	r := t.room
	idx := r.seatIndex(playerID)
	if idx >= 0 && r.ActiveGame {
		return ruleError(KindHandInProgress, "Players cannot leave while a hand is in progress",
			map[string]any{"room_id": r.ID})
	}
	if idx >= 0 {
		r.Seats = append(r.Seats[:idx], r.Seats[idx+1:]...)
	}
	t.emit(NewUpdatePlayersEvent(r.Seats))
	return nil
}

func (t *transition) start(game *Game, deck *poker.Deck) error {
	r := t.room
	if r.ActiveGame {
		return ruleError(KindAlreadyActive, "There is already a game for this room",
			map[string]any{"game": t.game})
	}
	if len(r.Seats) < 2 {
		return ruleError(KindNotEnoughPlayers, "At least two players are needed to start a hand",
			map[string]any{"players": len(r.Seats)})
	}

	game.RoomID = r.ID
	for i := range r.Seats {
		seat := &r.Seats[i]
		seat.resetForHand()
		hole, err := deck.DrawN(2)
		if err != nil {
			return fmt.Errorf("deal hole cards: %w", err)
		}
		seat.Hand = hole
	}

	r.Deck = deck
	r.ActiveGame = true
	r.CurrentPlayerTurn = r.Seats[0].PlayerID
	t.game = game

	t.emit(NewGameStartedEvent(r.Seats, game.Pot, r.CurrentPlayerTurn))
	return nil
}

func (t *transition) act(playerID string, action Action, amount int) error {
	r, g := t.room, t.game
	if playerID != r.CurrentPlayerTurn {
		return ruleError(KindNotYourTurn, "It's not your turn",
			map[string]any{"current_player_id": r.CurrentPlayerTurn})
	}
	if !r.ActiveGame || g == nil {
		return ruleError(KindNoActiveGame, "This room has not an active game",
			map[string]any{"room_id": r.ID})
	}
	idx := r.seatIndex(playerID)
	if idx < 0 {
		return ruleError(KindSeatNotFound, "Player is not seated in this room",
			map[string]any{"player_id": playerID})
	}
	seat := &r.Seats[idx]

	switch action {
	case Check:
		seat.Finished = true
	case Call:
		diff := r.highestBet() - seat.CurrentBet
		if seat.Chips < diff {
			return insufficientChips(seat)
		}
		seat.Chips -= diff
		seat.CurrentBet += diff
		g.Pot += diff
		seat.Finished = true
	case Raise:
		if amount <= 0 {
			return ruleError(KindInvalidAction, "Raise amount must be positive",
				map[string]any{"amount": amount})
		}
		if seat.Chips < amount {
			return insufficientChips(seat)
		}
		seat.Chips -= amount
		seat.CurrentBet += amount
		g.Pot += amount
		r.resetFinished()
		seat.Finished = true
	case Fold:
		seat.Folded = true
		if r.activeCount() == 1 {
			return t.showdown()
		}
	default:
		return ruleError(KindInvalidAction, fmt.Sprintf("Unknown action %q", action),
			map[string]any{"player_action": string(action)})
	}

	next := r.nextActiveAfter(idx)
	r.CurrentPlayerTurn = r.Seats[next].PlayerID
	g.CurrentTurn++

	if r.allFinished() {
		if err := t.advancePhase(); err != nil {
			return err
		}
	}

	t.emit(NewPlayerActionEvent(r.Seats, g.Pot, r.CurrentPlayerTurn, g.Phase))
	return nil
}

func insufficientChips(seat *Seat) error {
	return ruleError(KindInsufficientChips, "You do not have enough chips",
		map[string]any{"remaining_chips": seat.Chips})
}

func (t *transition) advancePhase() error {
	r, g := t.room, t.game
	if !r.ActiveGame || g == nil {
		return ruleError(KindNoActiveGame, "This room has not an active game",
			map[string]any{"room_id": r.ID})
	}

	var (
		next Phase
		deal int
	)
	switch g.Phase {
	case PreFlop:
		next, deal = Flop, 3
	case Flop:
		next, deal = Turn, 1
	case Turn:
		next, deal = River, 1
	case River:
		return t.showdown()
	default:
		return ruleError(KindUnmappedPhase, "The current phase is not mapped in the game",
			map[string]any{"current_phase": string(g.Phase)})
	}

	if r.Deck == nil {
		return fmt.Errorf("room %s has an active hand but no deck", r.ID)
	}
	cards, err := r.Deck.DrawN(deal)
	if err != nil {
		return fmt.Errorf("deal %s: %w", next, err)
	}
	g.Phase = next
	g.CommunityCards = append(g.CommunityCards, cards...)
	r.resetFinished()

	t.emit(NewPhaseChangedEvent(g.CommunityCards, g.Phase, r.CurrentPlayerTurn))
	return nil
}

// showdown ranks every seat still in the hand. The strictly best category
// wins; equal categories go to the earlier seat.
func (t *transition) showdown() error {
	r, g := t.room, t.game
	if !r.ActiveGame || g == nil {
		return ruleError(KindNoActiveGame, "This room has not an active game",
			map[string]any{"room_id": r.ID})
	}

	winner := -1
	var best poker.Category
	for i, s := range r.Seats {
		if s.Folded {
			continue
		}
		cards := make([]poker.Card, 0, len(s.Hand)+len(g.CommunityCards))
		cards = append(cards, s.Hand...)
		cards = append(cards, g.CommunityCards...)
		if c := poker.Evaluate(cards); winner < 0 || c > best {
			winner, best = i, c
		}
	}
	if winner < 0 {
		return ruleError(KindNoWinnerDeterminable, "A winner could not be determined",
			map[string]any{"game": g.ID})
	}

	seat := &r.Seats[winner]
	seat.Chips += g.Pot
	g.PotAwarded = g.Pot

	snapshot := seat.Clone()
	g.Winner = &snapshot
	g.WinnerHand = best.String()
	g.CommunityCards = []poker.Card{}
	g.Pot = 0
	r.ActiveGame = false
	r.Deck = nil

	t.emit(NewShowdownEvent(snapshot, g.WinnerHand))
	return nil
}
