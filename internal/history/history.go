// Package history stores settled rounds and simulator runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/google/uuid"
)

// Store persists round history
type Store struct {
	db *sql.DB
}

// New creates a history store over an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordRound stores a round. Missing IDs and timestamps are filled in.
func (s *Store) RecordRound(ctx context.Context, r *domain.GameRound) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = domain.RoundCompleted
	}

	var outcome sql.NullString
	if len(r.Outcome) > 0 {
		outcome = sql.NullString{String: string(r.Outcome), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_rounds (id, session_id, game_id, wager_amount, win_amount,
			balance_before, balance_after, label, outcome, status, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.SessionID, r.GameID, r.WagerAmount, r.WinAmount,
		r.BalanceBefore, r.BalanceAfter, r.Label, outcome, r.Status, r.StartedAt, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// Recent returns a session's rounds, newest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]*domain.GameRound, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, game_id, wager_amount, win_amount, balance_before, balance_after,
			label, outcome, status, started_at, completed_at
		FROM game_rounds WHERE session_id = $1
		ORDER BY started_at DESC LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*domain.GameRound
	for rows.Next() {
		var r domain.GameRound
		var outcome sql.NullString
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.SessionID, &r.GameID, &r.WagerAmount, &r.WinAmount,
			&r.BalanceBefore, &r.BalanceAfter, &r.Label, &outcome, &r.Status, &r.StartedAt, &completed); err != nil {
			return nil, err
		}
		if outcome.Valid {
			r.Outcome = json.RawMessage(outcome.String)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		rounds = append(rounds, &r)
	}
	return rounds, rows.Err()
}

// GameTotals is one game's aggregate for a session.
type GameTotals struct {
	GameID  domain.GameID `json:"game_id"`
	Rounds  int           `json:"rounds"`
	Wagered domain.Money  `json:"wagered"`
	Won     domain.Money  `json:"won"`
}

// Totals aggregates a session's rounds per game.
func (s *Store) Totals(ctx context.Context, sessionID string) ([]GameTotals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, COUNT(*), SUM(wager_amount), SUM(win_amount)
		FROM game_rounds WHERE session_id = $1
		GROUP BY game_id ORDER BY game_id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameTotals
	for rows.Next() {
		var t GameTotals
		if err := rows.Scan(&t.GameID, &t.Rounds, &t.Wagered, &t.Won); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Run summarises one simulator run.
type Run struct {
	ID              string          `json:"id"`
	Seed            string          `json:"seed,omitempty"`
	TotalRounds     int             `json:"total_rounds"`
	StartingBalance domain.Money    `json:"starting_balance"`
	FinalBalance    domain.Money    `json:"final_balance"`
	PeakBalance     domain.Money    `json:"peak_balance"`
	LowestBalance   domain.Money    `json:"lowest_balance"`
	GoalReached     bool            `json:"goal_reached"`
	Report          json.RawMessage `json:"report"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SaveRun stores a simulator run
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simulation_runs (id, seed, total_rounds, starting_balance, final_balance,
			peak_balance, lowest_balance, goal_reached, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Seed, run.TotalRounds, run.StartingBalance, run.FinalBalance,
		run.PeakBalance, run.LowestBalance, run.GoalReached, string(run.Report), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// Runs lists stored simulator runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, total_rounds, starting_balance, final_balance, peak_balance,
			lowest_balance, goal_reached, report, created_at
		FROM simulation_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var seed sql.NullString
		var report string
		if err := rows.Scan(&r.ID, &seed, &r.TotalRounds, &r.StartingBalance, &r.FinalBalance,
			&r.PeakBalance, &r.LowestBalance, &r.GoalReached, &report, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Seed = seed.String
		r.Report = json.RawMessage(report)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
