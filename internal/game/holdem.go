package game

import (
	"fmt"

	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/poker"
)

// HoldemEvaluation picks how showdown hands are compared.
type HoldemEvaluation string

const (
	// HoldemSimple compares category only, over the whole 7-card pool.
	HoldemSimple HoldemEvaluation = "simple"
	// HoldemStrict uses best-five-of-seven scoring with kickers.
	HoldemStrict HoldemEvaluation = "strict"
)

type HoldemOutcome struct {
	Player     []cards.Card `json:"player"`
	Dealer     []cards.Card `json:"dealer"`
	Community  []cards.Card `json:"community"`
	PlayerHand string       `json:"player_hand"`
	DealerHand string       `json:"dealer_hand"`
	Action     Action       `json:"action"`
	Result     string       `json:"result"` // win, push, lose, fold
}

type HoldemView struct {
	Player []cards.Card `json:"player"`
	Flop   []cards.Card `json:"flop"`
}

// HoldemRound is a heads-up hand against the dealer. Everything is dealt up
// front; the player sees their hole cards and the flop before deciding.
type HoldemRound struct {
	ante      domain.Money
	player    []cards.Card
	dealer    []cards.Card
	community []cards.Card
	eval      HoldemEvaluation
	settled   bool
}

// DealHoldem deals 2 player, 2 dealer and 5 community cards.
func DealHoldem(ante domain.Money, deck *cards.Deck, eval HoldemEvaluation) (*HoldemRound, error) {
	dealt, err := deck.Deal(9)
	if err != nil {
		return nil, fmt.Errorf("deal hold'em: %w", err)
	}
	if eval == "" {
		eval = HoldemSimple
	}
	return &HoldemRound{
		ante:      ante,
		player:    dealt[0:2],
		dealer:    dealt[2:4],
		community: dealt[4:9],
		eval:      eval,
	}, nil
}

func (r *HoldemRound) Game() domain.GameID { return domain.GameTexasHoldem }
func (r *HoldemRound) Ante() domain.Money  { return r.ante }

func (r *HoldemRound) View() interface{} {
	return HoldemView{
		Player: append([]cards.Card(nil), r.player...),
		Flop:   append([]cards.Card(nil), r.community[:3]...),
	}
}

// ExtraStake is one more wager for a call, nothing for a fold.
func (r *HoldemRound) ExtraStake(d Decision) (domain.Money, error) {
	switch d.Action {
	case ActionCall:
		return r.ante, nil
	case ActionFold:
		return domain.Zero, nil
	}
	return domain.Zero, fmt.Errorf("%w: %q", ErrInvalidDecision, d.Action)
}

// Settle pays 2x the total stake on a win and returns it on a push.
func (r *HoldemRound) Settle(d Decision) (domain.RoundResult, error) {
	if r.settled {
		return domain.RoundResult{}, ErrRoundSettled
	}
	extra, err := r.ExtraStake(d)
	if err != nil {
		return domain.RoundResult{}, err
	}
	r.settled = true

	out := HoldemOutcome{
		Player:    r.player,
		Dealer:    r.dealer,
		Community: r.community,
		Action:    d.Action,
	}
	result := domain.RoundResult{
		Game:        domain.GameTexasHoldem,
		WagerAmount: r.ante.Add(extra),
		WinAmount:   domain.Zero,
	}

	if d.Action == ActionFold {
		out.Result = "fold"
		result.Label = "Folded"
		result.Outcome = out
		return result, nil
	}

	cmp, pDesc, dDesc, err := r.showdown()
	if err != nil {
		return domain.RoundResult{}, err
	}
	out.PlayerHand, out.DealerHand = pDesc, dDesc

	total := result.WagerAmount
	switch {
	case cmp > 0:
		out.Result = "win"
		result.WinAmount = total.Times(2)
		result.Label = "Player wins with " + pDesc
	case cmp < 0:
		out.Result = "lose"
		result.Label = "Dealer wins with " + dDesc
	default:
		out.Result = "push"
		result.WinAmount = total
		result.Label = "Push with " + pDesc
	}
	result.Outcome = out
	return result, nil
}

func (r *HoldemRound) showdown() (int, string, string, error) {
	if r.eval == HoldemStrict {
		return poker.StrictCompare(r.player, r.dealer, r.community)
	}

	p := poker.EvaluatePool(append(append([]cards.Card(nil), r.player...), r.community...))
	d := poker.EvaluatePool(append(append([]cards.Card(nil), r.dealer...), r.community...))
	switch {
	case p.Beats(d):
		return 1, p.Label, d.Label, nil
	case d.Beats(p):
		return -1, p.Label, d.Label, nil
	}
	return 0, p.Label, d.Label, nil
}
