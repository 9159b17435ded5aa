package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lox/holdem-rooms/internal/display"
	"github.com/lox/holdem-rooms/poker"
)

const maxEvalCards = 7

// EvalCmd ranks between one and seven cards.
type EvalCmd struct {
	Cards   []string `arg:"" help:"Cards to rank, e.g. As Kd 10h"`
	JSON    bool     `help:"Print the result as JSON"`
	NoColor bool     `help:"Disable colored output"`
}

func (c *EvalCmd) Run() error {
	display.SetColor(!c.NoColor)
	return c.run(os.Stdout)
}

func (c *EvalCmd) run(w io.Writer) error {
	if len(c.Cards) > maxEvalCards {
		return fmt.Errorf("at most %d cards can be ranked, got %d", maxEvalCards, len(c.Cards))
	}
	cards, err := poker.ParseCards(c.Cards...)
	if err != nil {
		return err
	}
	seen := make(map[poker.Card]bool, len(cards))
	for _, card := range cards {
		if seen[card] {
			return fmt.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}

	cat := poker.Evaluate(cards)
	if c.JSON {
		return json.NewEncoder(w).Encode(struct {
			Cards []poker.Card `json:"cards"`
			poker.Result
		}{cards, poker.Rank(cards)})
	}
	_, err = fmt.Fprintf(w, "%s  %s\n", display.Cards(cards), display.Category(cat))
	return err
}
