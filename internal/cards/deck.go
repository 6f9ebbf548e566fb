package cards

import (
	"errors"
	"fmt"

	"github.com/alexbotov/casino/internal/rng"
)

var ErrDeckExhausted = errors.New("deck exhausted")

// Deck deals from the front of an ordered sequence of cards. A deck never
// hands out the same position twice.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck returns all 52 cards in suit then rank order.
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, Card{Suit: s, Rank: r})
		}
	}
	return d
}

// NewShuffledDeck returns a uniformly permuted 52-card deck.
func NewShuffledDeck(src rng.Source) *Deck {
	d := NewDeck()
	rng.Shuffle(src, len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// NewStackedDeck deals the given cards in order. Used to replay or force a
// specific deal.
func NewStackedDeck(cs ...Card) *Deck {
	stacked := make([]Card, len(cs))
	copy(stacked, cs)
	return &Deck{cards: stacked}
}

// Deal removes n cards from the front of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, d.Remaining())
	}
	hand := make([]Card, n)
	copy(hand, d.cards[d.next:d.next+n])
	d.next += n
	return hand, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
