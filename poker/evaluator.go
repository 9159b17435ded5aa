package poker

import (
	"math/bits"
)

// Category is the class of a poker hand. Higher values are stronger.
type Category uint8

const (
	HighCard Category = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// Rank returns the numeric strength of the category, 1 (high card) to 10
// (royal flush).
func (c Category) Rank() int {
	return int(c)
}

// String returns the snake_case label stored on a finished game.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "high_card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two_pair"
	case ThreeOfAKind:
		return "three_of_a_kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full_house"
	case FourOfAKind:
		return "four_of_a_kind"
	case StraightFlush:
		return "straight_flush"
	case RoyalFlush:
		return "royal_flush"
	default:
		return "unknown"
	}
}

// Title returns a human-readable hand description.
func (c Category) Title() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// ParseCategory maps a label produced by String back to its category.
func ParseCategory(label string) (Category, bool) {
	for c := HighCard; c <= RoyalFlush; c++ {
		if c.String() == label {
			return c, true
		}
	}
	return 0, false
}

// Result is the outcome of ranking a set of cards.
type Result struct {
	Rank int    `json:"rank"`
	Hand string `json:"hand"`
}

// Rank evaluates cards and returns the rank and label pair.
func Rank(cards []Card) Result {
	c := Evaluate(cards)
	return Result{Rank: c.Rank(), Hand: c.String()}
}

// aceLow is the bit that stands in for an ace when looking for the wheel.
const aceLow = 1

// Evaluate returns the best category reachable with cards. It is meant for
// 5 to 7 cards; fewer cards are accepted and can only reach the categories
// they contain. Duplicate cards are counted once per occurrence.
func Evaluate(cards []Card) Category {
	var suitMasks [4]uint16
	var suitCounts [4]int
	var rankCounts [Ace + 1]int
	var rankMask uint16

	for _, c := range cards {
		if !c.Valid() {
			continue
		}
		bit := rankBit(c.Rank)
		suitMasks[c.Suit] |= bit
		suitCounts[c.Suit]++
		rankCounts[c.Rank]++
		rankMask |= bit
	}

	// Straight flushes must be made from a single suit's cards.
	hasFlush := false
	best := Category(0)
	for suit, mask := range suitMasks {
		if suitCounts[suit] < 5 {
			continue
		}
		hasFlush = true
		switch top := straightTop(mask); {
		case top == int(Ace):
			return RoyalFlush
		case top > 0:
			best = StraightFlush
		}
	}
	if best == StraightFlush {
		return StraightFlush
	}

	var quads, trips, pairs int
	for r := Two; r <= Ace; r++ {
		switch n := rankCounts[r]; {
		case n >= 4:
			quads++
		case n == 3:
			trips++
		case n == 2:
			pairs++
		}
	}

	switch {
	case quads > 0:
		return FourOfAKind
	case trips > 0 && (trips+quads > 1 || pairs > 0):
		return FullHouse
	case hasFlush:
		return Flush
	case straightTop(rankMask) > 0:
		return Straight
	case trips > 0:
		return ThreeOfAKind
	case pairs >= 2:
		return TwoPair
	case pairs == 1:
		return Pair
	default:
		return HighCard
	}
}

// rankBit maps a rank to its bit, setting the low ace bit alongside the high
// one so that A-2-3-4-5 reads as a run.
func rankBit(r Rank) uint16 {
	bit := uint16(1) << r
	if r == Ace {
		bit |= 1 << aceLow
	}
	return bit
}

// straightTop returns the top value of the highest five-card run in mask, or
// 0 when there is none. The wheel reports 5.
func straightTop(mask uint16) int {
	if bits.OnesCount16(mask) < 5 {
		return 0
	}
	const run = 0b11111
	for top := int(Ace); top >= int(Five); top-- {
		if (mask>>(top-4))&run == run {
			return top
		}
	}
	return 0
}

// StraightHigh returns the top card value of the best straight in cards, or 0.
// The wheel (A-2-3-4-5) reports 5.
func StraightHigh(cards []Card) int {
	var mask uint16
	for _, c := range cards {
		if c.Valid() {
			mask |= rankBit(c.Rank)
		}
	}
	return straightTop(mask)
}
