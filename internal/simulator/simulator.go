// Package simulator plays the casino unattended: it picks a game and a
// stake each round, lets a fixed strategy make the decisions and collects
// the statistics the balance report is built from.
package simulator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/game"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameWeights is how often each game is picked relative to the others.
var GameWeights = map[domain.GameID]float64{
	domain.GameVideoPoker:    2,
	domain.GameTexasHoldem:   1.5,
	domain.GameCaribbeanStud: 1.5,
	domain.GameCraps:         1,
	domain.GameRoulette:      1,
	domain.GameLucky7:        1.5,
	domain.GameFortune:       2,
}

// ReportMilestones are the balances whose first crossing round is reported.
var ReportMilestones = []int{500, 1000, 1500, 2000}

// Outcome says why a run stopped.
type Outcome string

const (
	OutcomeGoal      Outcome = "goal"
	OutcomeBusted    Outcome = "busted"
	OutcomeMaxRounds Outcome = "max-rounds"
	OutcomeStopped   Outcome = "stopped"
)

// Config is the shape of one run.
type Config struct {
	StartingBalance domain.Money        `json:"startingBalance"`
	Goal            domain.Money        `json:"goalBalance"`
	MaxRounds       int                 `json:"maxRounds"`
	WagerLevels     []domain.Money      `json:"wagerLevels"`
	Milestones      []session.Milestone `json:"bonusMilestones,omitempty"`
	ReportInterval  int                 `json:"reportInterval"`
	Seed            string              `json:"seed,omitempty"`
}

// DefaultConfig mirrors the stock table: 200 to 2000 over at most 10000
// rounds.
func DefaultConfig() Config {
	return Config{
		StartingBalance: domain.NewMoney(200),
		Goal:            domain.NewMoney(2000),
		MaxRounds:       10000,
		WagerLevels: []domain.Money{
			domain.NewMoney(0.2), domain.NewMoney(1), domain.NewMoney(2), domain.NewMoney(5),
		},
		ReportInterval: 100,
	}
}

// Simulator runs one session to completion.
type Simulator struct {
	cfg      Config
	src      rng.Source
	engine   *game.Engine
	sess     *session.Session
	history  *history.Store
	log      *zap.Logger
	progress func(round int, balance domain.Money)
	games    []domain.GameID
	weights  []float64
}

// Option configures a Simulator
type Option func(*Simulator)

// WithSource replaces the random source. Without it the run draws from
// rng.NewStream(cfg.Seed) when a seed is set and from crypto/rand otherwise.
func WithSource(src rng.Source) Option { return func(s *Simulator) { s.src = src } }

// WithHistory records every round and the finished run.
func WithHistory(h *history.Store) Option { return func(s *Simulator) { s.history = h } }

func WithLogger(l *zap.Logger) Option { return func(s *Simulator) { s.log = l } }

// WithProgress is called every ReportInterval rounds.
func WithProgress(fn func(round int, balance domain.Money)) Option {
	return func(s *Simulator) { s.progress = fn }
}

// New creates a simulator with a fresh session.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if len(cfg.WagerLevels) == 0 {
		return nil, fmt.Errorf("simulator: no wager levels")
	}
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("simulator: max rounds must be positive, got %d", cfg.MaxRounds)
	}

	s := &Simulator{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		if cfg.Seed != "" {
			s.src = rng.NewStream(cfg.Seed)
		} else {
			s.src = rng.New()
		}
	}

	engineOpts := []game.Option{game.WithLogger(s.log)}
	if s.history != nil {
		engineOpts = append(engineOpts, game.WithHistory(s.history))
	}
	s.engine = game.NewEngine(s.src, engineOpts...)
	s.sess = session.New("sim-"+uuid.New().String(), session.Config{
		PlayerName:      "Simulator",
		StartingBalance: cfg.StartingBalance,
		WagerLevels:     cfg.WagerLevels,
		Milestones:      cfg.Milestones,
		Goal:            cfg.Goal,
	})

	for _, id := range domain.AllGames {
		s.games = append(s.games, id)
		s.weights = append(s.weights, GameWeights[id])
	}
	return s, nil
}

// Session is the session the run plays on.
func (s *Simulator) Session() *session.Session { return s.sess }

// WagerFor picks the stake for a balance: the top level from 1000, the
// third from 500, the second from 200 and the lowest below that. A stake
// the balance cannot cover drops to the lowest level.
func WagerFor(balance domain.Money, levels []domain.Money) domain.Money {
	idx := 0
	switch {
	case balance.GreaterThanOrEqual(domain.NewMoney(1000)):
		idx = 3
	case balance.GreaterThanOrEqual(domain.NewMoney(500)):
		idx = 2
	case balance.GreaterThanOrEqual(domain.NewMoney(200)):
		idx = 1
	}
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	if balance.LessThan(levels[idx]) {
		return levels[0]
	}
	return levels[idx]
}

func (s *Simulator) pickGame() (domain.GameID, error) {
	i, err := rng.SelectWeighted(s.src, s.weights)
	if err != nil {
		return "", err
	}
	return s.games[i], nil
}

// Run plays until the goal, a bust or the round limit and returns the
// report. Cancelling ctx stops the run early with the rounds played so far.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := s.cfg.StartingBalance
	st := newStats(start)
	outcome := OutcomeMaxRounds
	began := time.Now()

	for round := 1; round <= s.cfg.MaxRounds; round++ {
		if ctx.Err() != nil {
			outcome = OutcomeStopped
			break
		}

		balance := s.sess.Balance()
		if balance.LessThan(s.cfg.WagerLevels[0]) {
			outcome = OutcomeBusted
			break
		}

		id, err := s.pickGame()
		if err != nil {
			return nil, err
		}
		res, err := s.engine.PlayWith(ctx, s.sess, id, WagerFor(balance, s.cfg.WagerLevels), game.BasicStrategy{})
		if err != nil {
			return nil, fmt.Errorf("round %d (%s): %w", round, id, err)
		}
		st.record(*res.Result, res.Balance)

		if s.progress != nil && s.cfg.ReportInterval > 0 && round%s.cfg.ReportInterval == 0 {
			s.progress(round, res.Balance)
		}
		if res.Balance.GreaterThanOrEqual(s.cfg.Goal) {
			outcome = OutcomeGoal
			break
		}
	}

	report := st.report(s.cfg, s.sess.Balance(), outcome)
	report.Duration = time.Since(began).Seconds()

	s.log.Info("simulation finished",
		zap.String("outcome", string(outcome)),
		zap.Int("rounds", report.Summary.TotalRounds),
		zap.String("final_balance", report.Summary.FinalBalance.String()))

	if s.history != nil {
		if err := s.saveRun(context.WithoutCancel(ctx), report); err != nil {
			s.log.Error("failed to save run", zap.Error(err))
		}
	}
	return report, nil
}

func (s *Simulator) saveRun(ctx context.Context, report *Report) error {
	raw, err := report.JSON()
	if err != nil {
		return err
	}
	return s.history.SaveRun(ctx, &history.Run{
		ID:              s.sess.ID,
		Seed:            s.cfg.Seed,
		TotalRounds:     report.Summary.TotalRounds,
		StartingBalance: report.Summary.StartingBalance,
		FinalBalance:    report.Summary.FinalBalance,
		PeakBalance:     report.Summary.PeakBalance,
		LowestBalance:   report.Summary.LowestBalance,
		GoalReached:     report.Summary.GoalReached,
		Report:          raw,
	})
}

// stats accumulates a run.
type stats struct {
	totalRounds    int
	peak, lowest   domain.Money
	biggestWin     domain.Money
	biggestLoss    domain.Money
	milestones     map[string]*int
	gameStats      map[domain.GameID]*GameStats
	balanceHistory []domain.Money
}

func newStats(start domain.Money) *stats {
	st := &stats{
		peak:           start,
		lowest:         start,
		milestones:     make(map[string]*int, len(ReportMilestones)),
		gameStats:      make(map[domain.GameID]*GameStats, len(domain.AllGames)),
		balanceHistory: []domain.Money{start},
	}
	for _, m := range ReportMilestones {
		st.milestones[strconv.Itoa(m)] = nil
	}
	for _, id := range domain.AllGames {
		st.gameStats[id] = &GameStats{}
	}
	return st
}

func (st *stats) record(r domain.RoundResult, balance domain.Money) {
	st.totalRounds++
	st.balanceHistory = append(st.balanceHistory, balance)

	gs := st.gameStats[r.Game]
	gs.Played++
	gs.TotalWagered = gs.TotalWagered.Add(r.WagerAmount)
	gs.TotalWon = gs.TotalWon.Add(r.WinAmount)

	net := r.Net()
	switch {
	case net.IsPositive():
		gs.Won++
		st.biggestWin = domain.Max(st.biggestWin, net)
	case net.IsNegative():
		gs.Lost++
		st.biggestLoss = domain.Max(st.biggestLoss, domain.Zero.Sub(net))
	}

	st.peak = domain.Max(st.peak, balance)
	st.lowest = domain.Min(st.lowest, balance)

	for _, m := range ReportMilestones {
		key := strconv.Itoa(m)
		if st.milestones[key] == nil && balance.GreaterThanOrEqual(domain.NewMoney(float64(m))) {
			round := st.totalRounds
			st.milestones[key] = &round
		}
	}
}

func (st *stats) report(cfg Config, final domain.Money, outcome Outcome) *Report {
	return &Report{
		Timestamp: time.Now().UTC(),
		Config:    cfg,
		Outcome:   outcome,
		Summary: Summary{
			TotalRounds:     st.totalRounds,
			StartingBalance: cfg.StartingBalance,
			FinalBalance:    final,
			NetChange:       final.Sub(cfg.StartingBalance),
			PeakBalance:     st.peak,
			LowestBalance:   st.lowest,
			BiggestWin:      st.biggestWin,
			BiggestLoss:     st.biggestLoss,
			GoalReached:     final.GreaterThanOrEqual(cfg.Goal),
		},
		Milestones:     st.milestones,
		GameStats:      st.gameStats,
		BalanceHistory: st.balanceHistory,
	}
}
