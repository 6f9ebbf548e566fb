// Package domain contains the shared casino models: money, game
// definitions, round results and the records kept about them.
package domain

import (
	"encoding/json"
	"time"
)

// GameID identifies one of the casino's games.
type GameID string

const (
	GameVideoPoker    GameID = "video-poker"
	GameTexasHoldem   GameID = "texas-holdem"
	GameCaribbeanStud GameID = "caribbean-stud"
	GameCraps         GameID = "craps"
	GameRoulette      GameID = "roulette"
	GameLucky7        GameID = "slots-lucky7"
	GameFortune       GameID = "slots-fortune"
)

// AllGames lists every game in menu order.
var AllGames = []GameID{
	GameVideoPoker,
	GameTexasHoldem,
	GameCaribbeanStud,
	GameCraps,
	GameRoulette,
	GameLucky7,
	GameFortune,
}

// GameType groups games for display.
type GameType string

const (
	GameTypeCard  GameType = "card"
	GameTypeTable GameType = "table"
	GameTypeSlots GameType = "slots"
)

// Decision says what the player chooses during a round, if anything.
type Decision string

const (
	DecisionNone     Decision = "none"      // resolves immediately
	DecisionBet      Decision = "bet"       // bet chosen up front
	DecisionHold     Decision = "hold"      // pick cards to keep
	DecisionFoldCall Decision = "fold-call" // second wager or fold
)

// Game is a game definition as exposed by the registry.
type Game struct {
	ID          GameID   `json:"id"`
	Name        string   `json:"name"`
	Type        GameType `json:"type"`
	Decision    Decision `json:"decision"`
	Bets        []string `json:"bets,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
}

// RoundResult is what a resolver reports for one finished round. The wager
// includes any second stake such as a raise or call.
type RoundResult struct {
	Game        GameID      `json:"game"`
	WagerAmount Money       `json:"wager_amount"`
	WinAmount   Money       `json:"win_amount"`
	Label       string      `json:"label"`
	Outcome     interface{} `json:"outcome,omitempty"`
}

// Net is the win minus the total staked.
func (r RoundResult) Net() Money {
	return r.WinAmount.Sub(r.WagerAmount)
}

// RoundStatus tracks a round from first stake to settlement.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundCompleted RoundStatus = "completed"
)

// GameRound is the stored record of a round.
type GameRound struct {
	ID            string          `json:"id" db:"id"`
	SessionID     string          `json:"session_id" db:"session_id"`
	GameID        GameID          `json:"game_id" db:"game_id"`
	WagerAmount   Money           `json:"wager_amount" db:"wager_amount"`
	WinAmount     Money           `json:"win_amount" db:"win_amount"`
	BalanceBefore Money           `json:"balance_before" db:"balance_before"`
	BalanceAfter  Money           `json:"balance_after" db:"balance_after"`
	Label         string          `json:"label" db:"label"`
	Outcome       json.RawMessage `json:"outcome" db:"outcome"`
	Status        RoundStatus     `json:"status" db:"status"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// TransactionType names the wallet movement.
type TransactionType string

const (
	TxTypeWager  TransactionType = "wager"
	TxTypeWin    TransactionType = "win"
	TxTypeBonus  TransactionType = "bonus"
	TxTypeRefund TransactionType = "refund"
)

// Transaction is one wallet movement.
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        Money           `json:"amount"`
	BalanceBefore Money           `json:"balance_before"`
	BalanceAfter  Money           `json:"balance_after"`
	Reference     string          `json:"reference,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EventSeverity represents audit event severity
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// AuditEvent records something notable: a milestone bonus, the goal being
// reached, a large win, an operator switching a game off.
type AuditEvent struct {
	ID          string          `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	Severity    EventSeverity   `json:"severity" db:"severity"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	SessionID   *string         `json:"session_id,omitempty" db:"session_id"`
	GameID      *string         `json:"game_id,omitempty" db:"game_id"`
	Description string          `json:"description" db:"description"`
	Data        json.RawMessage `json:"data,omitempty" db:"data"`
	Component   string          `json:"component" db:"component"`
}
