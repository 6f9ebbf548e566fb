package poker

import (
	"fmt"

	ph "github.com/paulhankin/poker"

	"github.com/alexbotov/casino/internal/cards"
)

var suitMap = map[cards.Suit]ph.Suit{
	cards.Spades:   ph.Spade,
	cards.Hearts:   ph.Heart,
	cards.Diamonds: ph.Diamond,
	cards.Clubs:    ph.Club,
}

func convert(c cards.Card) (ph.Card, error) {
	r := ph.Rank(c.Rank)
	if c.Rank == cards.Ace {
		r = 1
	}
	pc, err := ph.MakeCard(suitMap[c.Suit], r)
	if err != nil {
		return pc, fmt.Errorf("convert %s: %w", c, err)
	}
	return pc, nil
}

func makeSeven(hole, board []cards.Card) (*[7]ph.Card, error) {
	if len(hole)+len(board) != 7 {
		return nil, fmt.Errorf("need 7 cards, got %d", len(hole)+len(board))
	}
	var seven [7]ph.Card
	for i, c := range append(append([]cards.Card(nil), hole...), board...) {
		pc, err := convert(c)
		if err != nil {
			return nil, err
		}
		seven[i] = pc
	}
	return &seven, nil
}

// StrictCompare scores both pools with best-five-of-seven rules including
// kickers. It returns 1 if the player wins, -1 if the dealer wins and 0 on
// an exact tie, along with a description of each hand.
func StrictCompare(player, dealer, board []cards.Card) (int, string, string, error) {
	p, err := makeSeven(player, board)
	if err != nil {
		return 0, "", "", fmt.Errorf("player pool: %w", err)
	}
	d, err := makeSeven(dealer, board)
	if err != nil {
		return 0, "", "", fmt.Errorf("dealer pool: %w", err)
	}

	ps, ds := ph.Eval7(p), ph.Eval7(d)

	pDesc, err := ph.Describe(p[:])
	if err != nil {
		return 0, "", "", err
	}
	dDesc, err := ph.Describe(d[:])
	if err != nil {
		return 0, "", "", err
	}

	switch {
	case ps > ds:
		return 1, pDesc, dDesc, nil
	case ps < ds:
		return -1, pDesc, dDesc, nil
	}
	return 0, pDesc, dDesc, nil
}
