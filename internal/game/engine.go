package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexbotov/casino/internal/audit"
	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/control"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/metrics"
	"github.com/alexbotov/casino/internal/rng"
	"github.com/alexbotov/casino/internal/session"
	"github.com/alexbotov/casino/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs rounds against a session: it takes the stake, resolves the
// game, pays out, advances progression and records what happened.
type Engine struct {
	src        rng.Source
	games      map[domain.GameID]*domain.Game
	control    *control.Service
	history    *history.Store
	audit      *audit.Service
	metrics    *metrics.Metrics
	log        *zap.Logger
	holdemEval HoldemEvaluation
	largeWin   domain.Money
}

// Option configures an Engine
type Option func(*Engine)

func WithControl(c *control.Service) Option { return func(e *Engine) { e.control = c } }
func WithHistory(h *history.Store) Option   { return func(e *Engine) { e.history = h } }
func WithAudit(a *audit.Service) Option     { return func(e *Engine) { e.audit = a } }
func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(e *Engine) { e.log = l } }

// WithHoldemEvaluation picks the Hold'em showdown rules.
func WithHoldemEvaluation(h HoldemEvaluation) Option {
	return func(e *Engine) { e.holdemEval = h }
}

// WithLargeWin sets the payout at which a win is audited.
func WithLargeWin(m domain.Money) Option { return func(e *Engine) { e.largeWin = m } }

// NewEngine creates an engine drawing from src.
func NewEngine(src rng.Source, opts ...Option) *Engine {
	e := &Engine{
		src:        src,
		games:      make(map[domain.GameID]*domain.Game),
		log:        zap.NewNop(),
		holdemEval: HoldemSimple,
		largeWin:   domain.NewMoney(100),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerGames()
	return e
}

func (e *Engine) registerGames() {
	e.games[domain.GameVideoPoker] = &domain.Game{
		ID:          domain.GameVideoPoker,
		Name:        "Video Poker",
		Type:        domain.GameTypeCard,
		Decision:    domain.DecisionHold,
		Actions:     []string{string(ActionDraw)},
		Description: "Jacks or Better. Hold any of five cards and draw once.",
	}
	e.games[domain.GameTexasHoldem] = &domain.Game{
		ID:          domain.GameTexasHoldem,
		Name:        "Texas Hold'em",
		Type:        domain.GameTypeCard,
		Decision:    domain.DecisionFoldCall,
		Actions:     []string{string(ActionFold), string(ActionCall)},
		Description: "Heads up against the dealer. Calling costs one more ante; a win pays double the stake.",
	}
	e.games[domain.GameCaribbeanStud] = &domain.Game{
		ID:          domain.GameCaribbeanStud,
		Name:        "Caribbean Stud",
		Type:        domain.GameTypeCard,
		Decision:    domain.DecisionFoldCall,
		Actions:     []string{string(ActionFold), string(ActionRaise)},
		Description: "Five-card stud against a dealer who needs a pair or Ace-King to qualify. Raising costs two antes.",
	}
	e.games[domain.GameCraps] = &domain.Game{
		ID:          domain.GameCraps,
		Name:        "Craps",
		Type:        domain.GameTypeTable,
		Decision:    domain.DecisionBet,
		Bets:        []string{string(BetPass), string(BetDontPass)},
		Description: "Pass or Don't Pass line, settled in one call.",
	}
	bets := make([]string, len(RouletteBets))
	for i, b := range RouletteBets {
		bets[i] = string(b)
	}
	e.games[domain.GameRoulette] = &domain.Game{
		ID:          domain.GameRoulette,
		Name:        "Roulette",
		Type:        domain.GameTypeTable,
		Decision:    domain.DecisionBet,
		Bets:        bets,
		Description: "Single-zero wheel. Even-money outside bets; zero loses them all.",
	}
	e.games[domain.GameLucky7] = &domain.Game{
		ID:          domain.GameLucky7,
		Name:        "Lucky 7",
		Type:        domain.GameTypeSlots,
		Decision:    domain.DecisionNone,
		Description: "Three reels. Triple sevens pay 100x.",
	}
	e.games[domain.GameFortune] = &domain.Game{
		ID:          domain.GameFortune,
		Name:        "Fortune Wheel",
		Type:        domain.GameTypeSlots,
		Decision:    domain.DecisionNone,
		Description: "Three reels with a birthday cake jackpot.",
	}
}

// Games returns the registry in menu order with live enabled flags.
func (e *Engine) Games() []domain.Game {
	games := make([]domain.Game, 0, len(domain.AllGames))
	for _, id := range domain.AllGames {
		g, _ := e.Game(id)
		games = append(games, g)
	}
	return games
}

// Game returns a game definition by ID
func (e *Engine) Game(id domain.GameID) (domain.Game, error) {
	g, ok := e.games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	out := *g
	out.Enabled = e.control == nil || e.control.IsGameEnabled(id)
	return out, nil
}

func (e *Engine) checkEnabled(id domain.GameID) error {
	if e.control == nil {
		return nil
	}
	if err := e.control.CheckGame(id); err != nil {
		return fmt.Errorf("%w: %v", ErrGameDisabled, err)
	}
	return nil
}

// PlayRequest starts a round. A zero Wager plays the session's selected
// stake. Bet is only read by craps and roulette.
type PlayRequest struct {
	Wager domain.Money `json:"wager"`
	Bet   string       `json:"bet,omitempty"`
}

// PlayResult reports a round. While Pending is set only View is
// meaningful; Result is filled in once the round settles.
type PlayResult struct {
	RoundID  string              `json:"round_id"`
	Game     domain.GameID       `json:"game"`
	Pending  bool                `json:"pending"`
	View     interface{}         `json:"view,omitempty"`
	Result   *domain.RoundResult `json:"result,omitempty"`
	Balance  domain.Money        `json:"balance"`
	Progress session.Progress    `json:"progress"`
}

type pendingRound struct {
	id            string
	round         PendingRound
	startedAt     time.Time
	balanceBefore domain.Money
}

// Play takes the stake and either settles the round or, for a decision
// game, deals and parks it on the session until Act is called.
func (e *Engine) Play(ctx context.Context, sess *session.Session, id domain.GameID, req PlayRequest) (*PlayResult, error) {
	sess.BeginRound()
	defer sess.EndRound()

	if _, ok := e.games[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	if err := e.checkEnabled(id); err != nil {
		return nil, err
	}
	if sess.Pending() != nil {
		return nil, ErrRoundPending
	}

	wager := req.Wager
	if wager.IsZero() {
		wager = sess.Wager()
	} else if err := sess.ValidateWager(wager); err != nil {
		return nil, err
	}
	if err := validateBet(id, req.Bet); err != nil {
		return nil, err
	}

	p := &pendingRound{
		id:            uuid.New().String(),
		startedAt:     time.Now().UTC(),
		balanceBefore: sess.Balance(),
	}
	if _, err := sess.Wallet().PlaceWager(wager, p.id); err != nil {
		return nil, err
	}

	if IsDecisionGame(id) {
		round, err := Deal(id, wager, cards.NewShuffledDeck(e.src), e.holdemEval)
		if err != nil {
			e.refund(sess, wager, p.id)
			return nil, err
		}
		p.round = round
		sess.SetPending(p)
		e.log.Debug("round dealt",
			zap.String("session_id", sess.ID),
			zap.String("round_id", p.id),
			zap.String("game", string(id)),
			zap.String("ante", wager.String()))
		return &PlayResult{
			RoundID: p.id,
			Game:    id,
			Pending: true,
			View:    round.View(),
			Balance: sess.Balance(),
		}, nil
	}

	result, err := ResolveInstant(id, wager, req.Bet, e.src)
	if err != nil {
		e.refund(sess, wager, p.id)
		return nil, err
	}
	return e.finish(ctx, sess, p, result)
}

// Act applies the player's decision to the session's pending round. If the
// extra stake cannot be paid the round stays pending.
func (e *Engine) Act(ctx context.Context, sess *session.Session, d Decision) (*PlayResult, error) {
	sess.BeginRound()
	defer sess.EndRound()

	p, ok := sess.Pending().(*pendingRound)
	if !ok || p == nil {
		return nil, ErrNoPendingRound
	}

	extra, err := p.round.ExtraStake(d)
	if err != nil {
		return nil, err
	}
	if extra.IsPositive() {
		if _, err := sess.Wallet().PlaceWager(extra, p.id); err != nil {
			return nil, err
		}
	}

	result, err := p.round.Settle(d)
	if err != nil {
		e.refund(sess, extra, p.id)
		return nil, err
	}
	sess.ClearPending()
	return e.finish(ctx, sess, p, result)
}

// Current returns the view of the session's pending round.
func (e *Engine) Current(sess *session.Session) (*PlayResult, error) {
	p, ok := sess.Pending().(*pendingRound)
	if !ok || p == nil {
		return nil, ErrNoPendingRound
	}
	return &PlayResult{
		RoundID: p.id,
		Game:    p.round.Game(),
		Pending: true,
		View:    p.round.View(),
		Balance: sess.Balance(),
	}, nil
}

// PlayWith plays a whole round with st choosing the bet and the decision.
// A call or raise the wallet cannot cover becomes a fold.
func (e *Engine) PlayWith(ctx context.Context, sess *session.Session, id domain.GameID, wager domain.Money, st Strategy) (*PlayResult, error) {
	res, err := e.Play(ctx, sess, id, PlayRequest{Wager: wager, Bet: st.Bet(id)})
	if err != nil || !res.Pending {
		return res, err
	}

	p := sess.Pending().(*pendingRound)
	res, err = e.Act(ctx, sess, st.Decide(p.round))
	if errors.Is(err, wallet.ErrInsufficientFunds) {
		return e.Act(ctx, sess, Decision{Action: ActionFold})
	}
	return res, err
}

func (e *Engine) refund(sess *session.Session, amount domain.Money, ref string) {
	if !amount.IsPositive() {
		return
	}
	if _, err := sess.Wallet().Refund(amount, ref); err != nil {
		e.log.Error("refund failed", zap.String("round_id", ref), zap.Error(err))
	}
}

func (e *Engine) finish(ctx context.Context, sess *session.Session, p *pendingRound, result domain.RoundResult) (*PlayResult, error) {
	if _, err := sess.Wallet().CreditWin(result.WinAmount, p.id); err != nil {
		return nil, fmt.Errorf("credit win: %w", err)
	}
	progress, err := sess.RecordRoundEnd()
	if err != nil {
		return nil, err
	}
	balance := sess.Balance()

	if e.history != nil {
		outcome, _ := json.Marshal(result.Outcome)
		completed := time.Now().UTC()
		err := e.history.RecordRound(ctx, &domain.GameRound{
			ID:            p.id,
			SessionID:     sess.ID,
			GameID:        result.Game,
			WagerAmount:   result.WagerAmount,
			WinAmount:     result.WinAmount,
			BalanceBefore: p.balanceBefore,
			BalanceAfter:  balance,
			Label:         result.Label,
			Outcome:       outcome,
			Status:        domain.RoundCompleted,
			StartedAt:     p.startedAt,
			CompletedAt:   &completed,
		})
		if err != nil {
			e.log.Error("failed to record round", zap.String("round_id", p.id), zap.Error(err))
		}
	}

	e.metrics.ObserveRound(result)
	for _, m := range progress.Milestones {
		e.metrics.ObserveBonus(m.Bonus)
	}
	e.auditRound(ctx, sess, p.id, result, progress, balance)

	e.log.Debug("round settled",
		zap.String("session_id", sess.ID),
		zap.String("round_id", p.id),
		zap.String("game", string(result.Game)),
		zap.String("wager", result.WagerAmount.String()),
		zap.String("win", result.WinAmount.String()),
		zap.String("balance", balance.String()))

	return &PlayResult{
		RoundID:  p.id,
		Game:     result.Game,
		Result:   &result,
		Balance:  balance,
		Progress: progress,
	}, nil
}

func (e *Engine) auditRound(ctx context.Context, sess *session.Session, roundID string, result domain.RoundResult, progress session.Progress, balance domain.Money) {
	if e.audit == nil {
		return
	}
	if result.WinAmount.GreaterThanOrEqual(e.largeWin) {
		e.logEvent(ctx, audit.EventLargeWin,
			fmt.Sprintf("Large win: %s on %s", result.WinAmount, result.Game),
			map[string]interface{}{
				"round_id": roundID,
				"win":      result.WinAmount,
				"wager":    result.WagerAmount,
			},
			audit.WithSession(sess.ID), audit.WithGame(result.Game))
	}
	for _, m := range progress.Milestones {
		e.logEvent(ctx, audit.EventMilestoneReached,
			fmt.Sprintf("Milestone %s reached, bonus %s", m.Threshold, m.Bonus),
			map[string]interface{}{"threshold": m.Threshold, "bonus": m.Bonus},
			audit.WithSession(sess.ID))
	}
	if progress.GoalJustReached {
		e.logEvent(ctx, audit.EventGoalReached,
			fmt.Sprintf("Goal reached with balance %s", balance),
			map[string]interface{}{"balance": balance},
			audit.WithSession(sess.ID))
	}
}

func (e *Engine) logEvent(ctx context.Context, eventType, desc string, data interface{}, opts ...audit.EventOption) {
	if err := e.audit.Log(ctx, eventType, domain.SeverityInfo, desc, data, opts...); err != nil {
		e.log.Warn("audit event failed", zap.String("event", eventType), zap.Error(err))
	}
}

func validateBet(id domain.GameID, bet string) error {
	switch id {
	case domain.GameCraps:
		_, err := ParseCrapsBet(bet)
		return err
	case domain.GameRoulette:
		_, err := ParseRouletteBet(bet)
		return err
	}
	return nil
}
