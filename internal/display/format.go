// Package display renders cards, hand categories and room events for the
// terminal.
package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lox/holdem-rooms/internal/table"
	"github.com/lox/holdem-rooms/poker"
)

// Card renders a card with its suit glyph, red for hearts and diamonds.
func Card(c poker.Card) string {
	if c.Suit.IsRed() {
		return RedCardStyle.Render(c.Pretty())
	}
	return BlackCardStyle.Render(c.Pretty())
}

// Cards renders cards separated by spaces, or a dash when there are none.
func Cards(cards []poker.Card) string {
	if len(cards) == 0 {
		return MutedStyle.Render("-")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = Card(c)
	}
	return strings.Join(parts, " ")
}

// Category renders a hand category with its rank.
func Category(c poker.Category) string {
	return fmt.Sprintf("%s %s", WinnerStyle.Render(c.Title()), MutedStyle.Render(fmt.Sprintf("(rank %d)", c.Rank())))
}

// Seats renders one line per seat.
func Seats(seats []table.Seat, turn string) string {
	var b strings.Builder
	for _, s := range seats {
		marker := " "
		if s.PlayerID == turn {
			marker = "▶"
		}
		status := ""
		switch {
		case s.Folded:
			status = MutedStyle.Render(" folded")
		case s.Finished:
			status = MutedStyle.Render(" done")
		}
		fmt.Fprintf(&b, "  %s %s chips=%d bet=%d %s%s\n",
			marker, PlayerStyle.Render(s.Name), s.Chips, s.CurrentBet, Cards(s.Hand), status)
	}
	return b.String()
}

// Event renders an encoded room event as published by the hub. Unknown
// event types are shown raw.
func Event(data []byte) (string, error) {
	var envelope struct {
		Type table.EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("decode event: %w", err)
	}

	header := HeaderStyle.Render(envelope.Type.String())
	switch envelope.Type {
	case table.EventTypeUpdatePlayers:
		var ev table.UpdatePlayersEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return fmt.Sprintf("%s %d seated\n%s", header, len(ev.Players), Seats(ev.Players, "")), nil

	case table.EventTypeGameStarted:
		var ev table.GameStartedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return fmt.Sprintf("%s pot %s\n%s", header, PotStyle.Render(fmt.Sprint(ev.Pot)), Seats(ev.Players, ev.CurrentTurn)), nil

	case table.EventTypePlayerAction:
		var ev table.PlayerActionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return fmt.Sprintf("%s %s pot %s\n%s", header, ev.CurrentPhase,
			PotStyle.Render(fmt.Sprint(ev.Pot)), Seats(ev.Players, ev.CurrentTurn)), nil

	case table.EventTypePhaseChanged:
		var ev table.PhaseChangedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return fmt.Sprintf("%s %s board %s\n", header, ev.CurrentPhase, Cards(ev.CommunityCards)), nil

	case table.EventTypeShowdown:
		var ev table.ShowdownEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return "", fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		hand := ev.Hand
		if c, ok := poker.ParseCategory(ev.Hand); ok {
			hand = c.Title()
		}
		return fmt.Sprintf("%s %s wins with %s, chips=%d\n", header,
			WinnerStyle.Render(ev.Winner.Name), hand, ev.Winner.Chips), nil
	}
	return fmt.Sprintf("%s %s\n", header, MutedStyle.Render(string(data))), nil
}
