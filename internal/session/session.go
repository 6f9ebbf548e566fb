// Package session owns a player's wallet, wager selection and progression.
// Nothing here is global: every session is created explicitly and handed to
// whatever drives its rounds.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/wallet"
)

var (
	ErrInvalidWager    = errors.New("wager is not a permitted stake")
	ErrSessionNotFound = errors.New("session not found")
)

// Config is the shape of a new session.
type Config struct {
	PlayerName      string
	StartingBalance domain.Money
	WagerLevels     []domain.Money
	Milestones      []Milestone
	Goal            domain.Money
}

// Session is one player's table. Round-level serialisation is done with
// BeginRound/EndRound; the other accessors are individually safe.
type Session struct {
	ID         string
	PlayerName string
	CreatedAt  time.Time

	round sync.Mutex

	mu           sync.Mutex
	wallet       *wallet.Wallet
	progression  *Progression
	levels       []domain.Money
	wagerIdx     int
	pending      interface{}
	lastActivity time.Time
}

// New creates a session with the lowest permitted wager selected.
func New(id string, cfg Config) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		PlayerName:   cfg.PlayerName,
		CreatedAt:    now,
		wallet:       wallet.New(cfg.StartingBalance),
		progression:  NewProgression(cfg.Milestones, cfg.Goal),
		levels:       append([]domain.Money(nil), cfg.WagerLevels...),
		lastActivity: now,
	}
}

// BeginRound blocks until no other round is running on this session.
func (s *Session) BeginRound() {
	s.round.Lock()
	s.touch()
}

func (s *Session) EndRound() {
	s.round.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) Wallet() *wallet.Wallet {
	return s.wallet
}

func (s *Session) Balance() domain.Money {
	return s.wallet.Balance()
}

// WagerLevels returns the permitted stakes, lowest first.
func (s *Session) WagerLevels() []domain.Money {
	return append([]domain.Money(nil), s.levels...)
}

func (s *Session) MinWager() domain.Money {
	return s.levels[0]
}

func (s *Session) Wager() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[s.wagerIdx]
}

// ValidateWager checks membership in the permitted stake list.
func (s *Session) ValidateWager(amount domain.Money) error {
	if s.levelIndex(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidWager, amount)
	}
	return nil
}

func (s *Session) levelIndex(amount domain.Money) int {
	for i, l := range s.levels {
		if l.Equal(amount) {
			return i
		}
	}
	return -1
}

func (s *Session) SetWager(amount domain.Money) error {
	i := s.levelIndex(amount)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidWager, amount)
	}
	s.mu.Lock()
	s.wagerIdx = i
	s.mu.Unlock()
	return nil
}

// StepUp moves to the next higher stake, staying put at the top.
func (s *Session) StepUp() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wagerIdx < len(s.levels)-1 {
		s.wagerIdx++
	}
	return s.levels[s.wagerIdx]
}

// StepDown moves to the next lower stake, staying put at the bottom.
func (s *Session) StepDown() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wagerIdx > 0 {
		s.wagerIdx--
	}
	return s.levels[s.wagerIdx]
}

// SetPending parks an undecided round on the session.
func (s *Session) SetPending(round interface{}) {
	s.mu.Lock()
	s.pending = round
	s.mu.Unlock()
}

func (s *Session) Pending() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) ClearPending() {
	s.SetPending(nil)
}

// RecordRoundEnd observes the balance after a round, credits any milestone
// bonuses that fired and reports the goal flag.
func (s *Session) RecordRoundEnd() (Progress, error) {
	s.mu.Lock()
	progress := s.progression.Observe(s.wallet.Balance())
	s.mu.Unlock()

	for _, m := range progress.Milestones {
		desc := fmt.Sprintf("Milestone %s bonus", m.Threshold)
		if _, err := s.wallet.CreditBonus(m.Bonus, desc); err != nil {
			return progress, fmt.Errorf("credit milestone bonus: %w", err)
		}
	}
	return progress, nil
}

// State is a point-in-time view of the session.
type State struct {
	ID          string            `json:"id"`
	PlayerName  string            `json:"player_name"`
	Balance     domain.Money      `json:"balance"`
	Wager       domain.Money      `json:"wager"`
	WagerLevels []domain.Money    `json:"wager_levels"`
	Goal        domain.Money      `json:"goal"`
	GoalReached bool              `json:"goal_reached"`
	Milestones  []MilestoneStatus `json:"milestones"`
	Pending     bool              `json:"round_pending"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:          s.ID,
		PlayerName:  s.PlayerName,
		Balance:     s.wallet.Balance(),
		Wager:       s.levels[s.wagerIdx],
		WagerLevels: append([]domain.Money(nil), s.levels...),
		Goal:        s.progression.Goal(),
		GoalReached: s.progression.GoalReached(),
		Milestones:  s.progression.Status(),
		Pending:     s.pending != nil,
		CreatedAt:   s.CreatedAt,
	}
}
