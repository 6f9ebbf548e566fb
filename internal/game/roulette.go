package game

import (
	"fmt"
	"strings"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/rng"
)

type RouletteBet string

const (
	BetRed   RouletteBet = "red"
	BetBlack RouletteBet = "black"
	BetEven  RouletteBet = "even"
	BetOdd   RouletteBet = "odd"
	BetLow   RouletteBet = "low"  // 1-18
	BetHigh  RouletteBet = "high" // 19-36
)

var RouletteBets = []RouletteBet{BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh}

var redPockets = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func ParseRouletteBet(s string) (RouletteBet, error) {
	b := RouletteBet(strings.ToLower(strings.TrimSpace(s)))
	if b == "" {
		return BetRed, nil
	}
	for _, known := range RouletteBets {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: roulette %q", ErrInvalidBet, s)
}

// PocketColor returns "green", "red" or "black".
func PocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case redPockets[n]:
		return "red"
	}
	return "black"
}

// Covers reports whether bet wins on pocket n. Zero loses every bet.
func (b RouletteBet) Covers(n int) bool {
	if n == 0 {
		return false
	}
	switch b {
	case BetRed:
		return redPockets[n]
	case BetBlack:
		return !redPockets[n]
	case BetEven:
		return n%2 == 0
	case BetOdd:
		return n%2 == 1
	case BetLow:
		return n <= 18
	case BetHigh:
		return n >= 19
	}
	return false
}

type RouletteOutcome struct {
	Bet    RouletteBet `json:"bet"`
	Pocket int         `json:"pocket"`
	Color  string      `json:"color"`
}

// ResolveRoulette spins a single-zero wheel. Matching bets pay 2x.
func ResolveRoulette(wager domain.Money, bet RouletteBet, src rng.Source) domain.RoundResult {
	pocket := rng.Intn(src, 37)
	out := RouletteOutcome{Bet: bet, Pocket: pocket, Color: PocketColor(pocket)}

	result := domain.RoundResult{
		Game:        domain.GameRoulette,
		WagerAmount: wager,
		WinAmount:   domain.Zero,
		Outcome:     out,
	}
	switch {
	case pocket == 0:
		result.Label = "Zero: house wins"
	case bet.Covers(pocket):
		result.WinAmount = wager.Times(2)
		result.Label = fmt.Sprintf("%d %s: %s wins", pocket, out.Color, bet)
	default:
		result.Label = fmt.Sprintf("%d %s: %s loses", pocket, out.Color, bet)
	}
	return result
}
