// Package cards models a standard 52-card deck.
package cards

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCard = errors.New("invalid card")

type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return "?"
}

func (s Suit) code() byte {
	return "shdc"[s]
}

// Rank values run Two=2 through Ace=14, so arithmetic on them follows the
// 2 < 3 < ... < K < A order.
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

var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (r Rank) String() string {
	switch r {
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Nine {
		return string(rune('0' + r))
	}
	return "?"
}

// Card is an immutable suit/rank pair.
type Card struct {
	Suit Suit
	Rank Rank
}

// String renders the card for display, e.g. "10♥".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code is the two-character form used on the wire, e.g. "Th", "As".
func (c Card) Code() string {
	r := c.Rank.String()
	if c.Rank == Ten {
		r = "T"
	}
	return r + string(c.Suit.code())
}

func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse reads a card code such as "Ah", "Td" or "10d".
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rankPart, suitPart := strings.ToUpper(s[:len(s)-1]), strings.ToLower(s[len(s)-1:])

	var rank Rank
	switch rankPart {
	case "A":
		rank = Ace
	case "K":
		rank = King
	case "Q":
		rank = Queen
	case "J":
		rank = Jack
	case "T", "10":
		rank = Ten
	default:
		if len(rankPart) != 1 || rankPart[0] < '2' || rankPart[0] > '9' {
			return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
		}
		rank = Rank(rankPart[0] - '0')
	}

	idx := strings.Index("shdc", suitPart)
	if idx < 0 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	return Card{Suit: Suit(idx), Rank: rank}, nil
}

// ParseHand reads space separated card codes.
func ParseHand(s string) ([]Card, error) {
	fields := strings.Fields(s)
	hand := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		hand = append(hand, c)
	}
	return hand, nil
}

// MustParseHand is ParseHand for fixed literals; it panics on bad input.
func MustParseHand(s string) []Card {
	hand, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return hand
}
