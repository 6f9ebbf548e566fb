package game

import (
	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/poker"
)

// BasicStrategy is the unattended player: hold jacks and better plus any
// paired card, always call in Hold'em, raise Caribbean Stud with a pair or
// better, bet the pass line and red.
type BasicStrategy struct{}

func (BasicStrategy) Bet(id domain.GameID) string {
	switch id {
	case domain.GameCraps:
		return string(BetPass)
	case domain.GameRoulette:
		return string(BetRed)
	}
	return ""
}

func (BasicStrategy) Decide(round PendingRound) Decision {
	switch r := round.(type) {
	case *VideoPokerRound:
		return Decision{Action: ActionDraw, Holds: HoldPairsAndHighCards(r.Hand())}
	case *HoldemRound:
		return Decision{Action: ActionCall}
	case *CaribbeanRound:
		if r.PlayerHand().Rank >= poker.Pair {
			return Decision{Action: ActionRaise}
		}
		return Decision{Action: ActionFold}
	}
	return Decision{}
}

// HoldPairsAndHighCards keeps every card that is Jack or higher or shares
// its rank with another card in the hand.
func HoldPairsAndHighCards(hand []cards.Card) [5]bool {
	var holds [5]bool
	counts := make(map[cards.Rank]int, len(hand))
	for _, c := range hand {
		counts[c.Rank]++
	}
	for i, c := range hand {
		if i >= len(holds) {
			break
		}
		holds[i] = c.Rank >= cards.Jack || counts[c.Rank] > 1
	}
	return holds
}
