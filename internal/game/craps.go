package game

import (
	"fmt"
	"strings"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/rng"
)

type CrapsBet string

const (
	BetPass     CrapsBet = "pass"
	BetDontPass CrapsBet = "dont-pass"
)

func ParseCrapsBet(s string) (CrapsBet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "":
		return BetPass, nil
	case "dont-pass", "dontpass", "don't pass", "dont_pass":
		return BetDontPass, nil
	}
	return "", fmt.Errorf("%w: craps %q", ErrInvalidBet, s)
}

// Roll is one throw of two dice.
type Roll [2]int

func (r Roll) Total() int { return r[0] + r[1] }

type CrapsOutcome struct {
	Bet    CrapsBet `json:"bet"`
	Rolls  []Roll   `json:"rolls"`
	Point  int      `json:"point,omitempty"`
	Result string   `json:"result"` // win, lose, push
}

func rollDice(src rng.Source) Roll {
	return Roll{rng.Intn(src, 6) + 1, rng.Intn(src, 6) + 1}
}

// ResolveCraps plays a come-out roll and, when a point is set, keeps
// rolling until the point or a seven. Wins pay 2x; a don't-pass bet pushes
// on a come-out 12.
func ResolveCraps(wager domain.Money, bet CrapsBet, src rng.Source) domain.RoundResult {
	out := CrapsOutcome{Bet: bet}

	first := rollDice(src)
	out.Rolls = append(out.Rolls, first)

	passWins := false
	switch total := first.Total(); total {
	case 7, 11:
		passWins = true
	case 2, 3:
		passWins = false
	case 12:
		if bet == BetDontPass {
			out.Result = "push"
			return crapsResult(wager, wager, "Twelve: don't pass pushes", out)
		}
		passWins = false
	default:
		out.Point = total
		for {
			roll := rollDice(src)
			out.Rolls = append(out.Rolls, roll)
			if roll.Total() == out.Point {
				passWins = true
				break
			}
			if roll.Total() == 7 {
				passWins = false
				break
			}
		}
	}

	won := passWins == (bet == BetPass)
	last := out.Rolls[len(out.Rolls)-1].Total()
	if won {
		out.Result = "win"
		return crapsResult(wager, wager.Times(2), fmt.Sprintf("Rolled %d: %s wins", last, bet), out)
	}
	out.Result = "lose"
	return crapsResult(wager, domain.Zero, fmt.Sprintf("Rolled %d: %s loses", last, bet), out)
}

func crapsResult(wager, win domain.Money, label string, out CrapsOutcome) domain.RoundResult {
	return domain.RoundResult{
		Game:        domain.GameCraps,
		WagerAmount: wager,
		WinAmount:   win,
		Label:       label,
		Outcome:     out,
	}
}
