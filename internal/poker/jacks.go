package poker

import "github.com/alexbotov/casino/internal/cards"

const (
	LabelJacksOrBetter = "Jacks or Better"
	LabelNoWin         = "No Win"
)

// EvaluateJacksOrBetter classifies a video poker hand. A single pair only
// counts when it is jacks or higher; lower pairs and high-card hands come
// back as HighCard labelled "No Win".
func EvaluateJacksOrBetter(cs []cards.Card) Hand {
	h := EvaluateFive(cs)
	switch h.Rank {
	case Pair:
		for r, n := range countRanks(cs) {
			if n == 2 && r >= cards.Jack {
				return Hand{Rank: Pair, Label: LabelJacksOrBetter}
			}
		}
		return Hand{Rank: HighCard, Label: LabelNoWin}
	case HighCard:
		return Hand{Rank: HighCard, Label: LabelNoWin}
	}
	return h
}
