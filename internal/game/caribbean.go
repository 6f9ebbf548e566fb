package game

import (
	"fmt"

	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/poker"
)

// CaribbeanBonus is paid on top of the raise when the player beats a
// qualifying dealer. Anything not listed pays 1.
var CaribbeanBonus = map[poker.HandRank]int64{
	poker.RoyalFlush:    100,
	poker.StraightFlush: 50,
	poker.FourOfAKind:   20,
	poker.FullHouse:     7,
	poker.Flush:         5,
	poker.Straight:      4,
	poker.ThreeOfAKind:  3,
	poker.TwoPair:       2,
	poker.Pair:          1,
}

type CaribbeanOutcome struct {
	Player         []cards.Card `json:"player"`
	Dealer         []cards.Card `json:"dealer"`
	PlayerHand     poker.Hand   `json:"player_hand"`
	DealerHand     poker.Hand   `json:"dealer_hand"`
	DealerQualified bool         `json:"dealer_qualified"`
	Action         Action       `json:"action"`
	Result         string       `json:"result"`
}

type CaribbeanView struct {
	Player   []cards.Card `json:"player"`
	DealerUp cards.Card   `json:"dealer_up"`
	Hand     poker.Hand   `json:"hand"`
}

// CaribbeanRound is five cards each for player and dealer. The player folds
// or raises twice the ante.
type CaribbeanRound struct {
	ante    domain.Money
	player  []cards.Card
	dealer  []cards.Card
	settled bool
}

func DealCaribbean(ante domain.Money, deck *cards.Deck) (*CaribbeanRound, error) {
	dealt, err := deck.Deal(10)
	if err != nil {
		return nil, fmt.Errorf("deal caribbean stud: %w", err)
	}
	return &CaribbeanRound{ante: ante, player: dealt[0:5], dealer: dealt[5:10]}, nil
}

func (r *CaribbeanRound) Game() domain.GameID { return domain.GameCaribbeanStud }
func (r *CaribbeanRound) Ante() domain.Money  { return r.ante }

func (r *CaribbeanRound) PlayerHand() poker.Hand {
	return poker.EvaluateFive(r.player)
}

func (r *CaribbeanRound) View() interface{} {
	return CaribbeanView{
		Player:   append([]cards.Card(nil), r.player...),
		DealerUp: r.dealer[0],
		Hand:     r.PlayerHand(),
	}
}

func (r *CaribbeanRound) ExtraStake(d Decision) (domain.Money, error) {
	switch d.Action {
	case ActionRaise:
		return r.ante.Times(2), nil
	case ActionFold:
		return domain.Zero, nil
	}
	return domain.Zero, fmt.Errorf("%w: %q", ErrInvalidDecision, d.Action)
}

// DealerQualifies is true with a pair or better, or ace-king high.
func DealerQualifies(dealer []cards.Card) bool {
	return poker.EvaluateFive(dealer).Rank >= poker.Pair || poker.HasAceKing(dealer)
}

// Settle applies the qualification rule and then compares categories.
func (r *CaribbeanRound) Settle(d Decision) (domain.RoundResult, error) {
	if r.settled {
		return domain.RoundResult{}, ErrRoundSettled
	}
	extra, err := r.ExtraStake(d)
	if err != nil {
		return domain.RoundResult{}, err
	}
	r.settled = true

	player, dealer := poker.EvaluateFive(r.player), poker.EvaluateFive(r.dealer)
	out := CaribbeanOutcome{
		Player:     r.player,
		Dealer:     r.dealer,
		PlayerHand: player,
		DealerHand: dealer,
		Action:     d.Action,
	}
	result := domain.RoundResult{
		Game:        domain.GameCaribbeanStud,
		WagerAmount: r.ante.Add(extra),
		WinAmount:   domain.Zero,
	}

	if d.Action == ActionFold {
		out.Result = "fold"
		result.Label = "Folded"
		result.Outcome = out
		return result, nil
	}

	out.DealerQualified = DealerQualifies(r.dealer)
	switch {
	case !out.DealerQualified:
		out.Result = "dealer-not-qualified"
		result.WinAmount = r.ante.Times(4)
		result.Label = "Dealer does not qualify"
	case player.Beats(dealer):
		bonus, ok := CaribbeanBonus[player.Rank]
		if !ok {
			bonus = 1
		}
		out.Result = "win"
		result.WinAmount = r.ante.Times(3 + bonus)
		result.Label = "Player wins with " + player.Label
	case dealer.Beats(player):
		out.Result = "lose"
		result.Label = "Dealer wins with " + dealer.Label
	default:
		out.Result = "push"
		result.WinAmount = r.ante.Times(3)
		result.Label = "Push with " + player.Label
	}
	result.Outcome = out
	return result, nil
}
