package simulator

import (
	"context"
	"fmt"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/game"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
)

// RTPResult is the measured payout rate of one game.
type RTPResult struct {
	Game    domain.GameID `json:"game"`
	Rounds  int           `json:"rounds"`
	Wagered domain.Money  `json:"wagered"`
	Won     domain.Money  `json:"won"`
}

// Rate is total won over total wagered.
func (r RTPResult) Rate() float64 {
	w := r.Wagered.Float64()
	if w == 0 {
		return 0
	}
	return r.Won.Float64() / w
}

// MeasureRTP plays every game rounds times at a stake of 1 with the basic
// strategy and reports what each paid back. The bankroll is large enough
// that no round is ever refused.
func MeasureRTP(ctx context.Context, src rng.Source, rounds int) ([]RTPResult, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("rtp: rounds must be positive, got %d", rounds)
	}

	unit := domain.NewMoney(1)
	engine := game.NewEngine(src)
	results := make([]RTPResult, 0, len(domain.AllGames))

	for _, id := range domain.AllGames {
		sess := session.New("rtp-"+string(id), session.Config{
			StartingBalance: domain.NewMoney(float64(rounds) * 10),
			WagerLevels:     []domain.Money{unit},
			Goal:            domain.NewMoney(float64(rounds) * 1000),
		})

		res := RTPResult{Game: id}
		for i := 0; i < rounds; i++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			r, err := engine.PlayWith(ctx, sess, id, unit, game.BasicStrategy{})
			if err != nil {
				return results, fmt.Errorf("%s round %d: %w", id, i+1, err)
			}
			res.Rounds++
			res.Wagered = res.Wagered.Add(r.Result.WagerAmount)
			res.Won = res.Won.Add(r.Result.WinAmount)
		}
		results = append(results, res)
	}
	return results, nil
}
