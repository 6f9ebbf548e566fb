// Package game resolves the casino's seven games and runs rounds against a
// session's wallet.
//
// Resolvers are pure: they take a wager, a random source and the player's
// choices and report a win amount. Debits and credits happen in the Engine.
package game

import (
	"errors"
	"fmt"

	"github.com/alexbotov/casino/internal/cards"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/rng"
)

var (
	ErrUnknownGame      = errors.New("unknown game")
	ErrGameDisabled     = errors.New("game is disabled")
	ErrInvalidDecision  = errors.New("invalid decision for this round")
	ErrInvalidBet       = errors.New("invalid bet type")
	ErrRoundPending     = errors.New("a round is awaiting a decision")
	ErrNoPendingRound   = errors.New("no round is awaiting a decision")
	ErrRoundSettled     = errors.New("round already settled")
	ErrNotDecisionRound = errors.New("game resolves without a decision")
)

// Action is a player's decision in a two-phase round.
type Action string

const (
	ActionDraw  Action = "draw"
	ActionFold  Action = "fold"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
)

// Decision finishes a pending round. Holds is only read for video poker.
type Decision struct {
	Action Action  `json:"action"`
	Holds  [5]bool `json:"holds"`
}

// PendingRound is a round whose ante has been taken and whose outcome waits
// on the player.
type PendingRound interface {
	Game() domain.GameID
	Ante() domain.Money
	// ExtraStake is the second wager the decision costs, if any.
	ExtraStake(d Decision) (domain.Money, error)
	// Settle resolves the round. It may be called once.
	Settle(d Decision) (domain.RoundResult, error)
	// View is what the player is allowed to see before deciding.
	View() interface{}
}

// Strategy makes the player's choices when nobody is at the table.
type Strategy interface {
	Bet(game domain.GameID) string
	Decide(round PendingRound) Decision
}

// Deal opens a two-phase round for a decision game.
func Deal(id domain.GameID, wager domain.Money, deck *cards.Deck, eval HoldemEvaluation) (PendingRound, error) {
	switch id {
	case domain.GameVideoPoker:
		return DealVideoPoker(wager, deck)
	case domain.GameTexasHoldem:
		return DealHoldem(wager, deck, eval)
	case domain.GameCaribbeanStud:
		return DealCaribbean(wager, deck)
	case domain.GameCraps, domain.GameRoulette, domain.GameLucky7, domain.GameFortune:
		return nil, fmt.Errorf("%w: %s", ErrNotDecisionRound, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
}

// ResolveInstant plays a game that needs no decision after the stake. bet
// is only read by craps and roulette.
func ResolveInstant(id domain.GameID, wager domain.Money, bet string, src rng.Source) (domain.RoundResult, error) {
	switch id {
	case domain.GameCraps:
		b, err := ParseCrapsBet(bet)
		if err != nil {
			return domain.RoundResult{}, err
		}
		return ResolveCraps(wager, b, src), nil
	case domain.GameRoulette:
		b, err := ParseRouletteBet(bet)
		if err != nil {
			return domain.RoundResult{}, err
		}
		return ResolveRoulette(wager, b, src), nil
	case domain.GameLucky7:
		return Lucky7.Resolve(wager, src), nil
	case domain.GameFortune:
		return Fortune.Resolve(wager, src), nil
	case domain.GameVideoPoker, domain.GameTexasHoldem, domain.GameCaribbeanStud:
		return domain.RoundResult{}, fmt.Errorf("%w: %s needs a decision", ErrInvalidDecision, id)
	}
	return domain.RoundResult{}, fmt.Errorf("%w: %s", ErrUnknownGame, id)
}

// IsDecisionGame reports whether id is played in two phases.
func IsDecisionGame(id domain.GameID) bool {
	switch id {
	case domain.GameVideoPoker, domain.GameTexasHoldem, domain.GameCaribbeanStud:
		return true
	}
	return false
}

// Resolve plays one complete round of any game with st making the choices.
// The wager is the ante; a call or raise is added to the result's wager.
func Resolve(id domain.GameID, wager domain.Money, src rng.Source, st Strategy) (domain.RoundResult, error) {
	if !IsDecisionGame(id) {
		return ResolveInstant(id, wager, st.Bet(id), src)
	}

	round, err := Deal(id, wager, cards.NewShuffledDeck(src), HoldemSimple)
	if err != nil {
		return domain.RoundResult{}, err
	}
	return round.Settle(st.Decide(round))
}
