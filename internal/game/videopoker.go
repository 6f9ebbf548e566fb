package game

import (
	"fmt"

	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/poker"
)

// VideoPokerPaytable is the Jacks or Better table in multiples of the wager.
var VideoPokerPaytable = map[poker.HandRank]int64{
	poker.RoyalFlush:    800,
	poker.StraightFlush: 50,
	poker.FourOfAKind:   25,
	poker.FullHouse:     9,
	poker.Flush:         6,
	poker.Straight:      4,
	poker.ThreeOfAKind:  3,
	poker.TwoPair:       2,
	poker.Pair:          1, // jacks or better only
}

type VideoPokerOutcome struct {
	Initial    []cards.Card `json:"initial"`
	Held       [5]bool      `json:"held"`
	Final      []cards.Card `json:"final"`
	Hand       poker.Hand   `json:"hand"`
	Multiplier int64        `json:"multiplier"`
}

type VideoPokerView struct {
	Hand []cards.Card `json:"hand"`
}

// VideoPokerRound holds a dealt hand until the player chooses what to keep.
type VideoPokerRound struct {
	wager   domain.Money
	deck    *cards.Deck
	hand    []cards.Card
	settled bool
}

// DealVideoPoker deals five cards from deck.
func DealVideoPoker(wager domain.Money, deck *cards.Deck) (*VideoPokerRound, error) {
	hand, err := deck.Deal(5)
	if err != nil {
		return nil, fmt.Errorf("deal video poker: %w", err)
	}
	return &VideoPokerRound{wager: wager, deck: deck, hand: hand}, nil
}

func (r *VideoPokerRound) Game() domain.GameID { return domain.GameVideoPoker }
func (r *VideoPokerRound) Ante() domain.Money  { return r.wager }

func (r *VideoPokerRound) Hand() []cards.Card {
	return append([]cards.Card(nil), r.hand...)
}

func (r *VideoPokerRound) View() interface{} {
	return VideoPokerView{Hand: r.Hand()}
}

func (r *VideoPokerRound) ExtraStake(d Decision) (domain.Money, error) {
	if d.Action != ActionDraw && d.Action != "" {
		return domain.Zero, fmt.Errorf("%w: %s", ErrInvalidDecision, d.Action)
	}
	return domain.Zero, nil
}

// Settle replaces every unheld card from the same deck, in order, and pays
// the final hand from the paytable.
func (r *VideoPokerRound) Settle(d Decision) (domain.RoundResult, error) {
	if r.settled {
		return domain.RoundResult{}, ErrRoundSettled
	}
	if _, err := r.ExtraStake(d); err != nil {
		return domain.RoundResult{}, err
	}

	final := r.Hand()
	for i := range final {
		if d.Holds[i] {
			continue
		}
		drawn, err := r.deck.Deal(1)
		if err != nil {
			return domain.RoundResult{}, fmt.Errorf("redraw: %w", err)
		}
		final[i] = drawn[0]
	}
	r.settled = true

	hand := poker.EvaluateJacksOrBetter(final)
	mult := int64(0)
	if hand.Label != poker.LabelNoWin {
		mult = VideoPokerPaytable[hand.Rank]
	}

	return domain.RoundResult{
		Game:        domain.GameVideoPoker,
		WagerAmount: r.wager,
		WinAmount:   r.wager.Times(mult),
		Label:       hand.Label,
		Outcome: VideoPokerOutcome{
			Initial:    r.Hand(),
			Held:       d.Holds,
			Final:      final,
			Hand:       hand,
			Multiplier: mult,
		},
	}, nil
}
