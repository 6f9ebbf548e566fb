// Package control lets an operator switch the casino, or a single game,
// off and on again. State is held in memory and, when a database is
// configured, persisted to system_state so it survives a restart.
package control

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexbotov/casino/internal/audit"
	"github.com/alexbotov/casino/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrGamingDisabled = errors.New("gaming is currently disabled")
	ErrGameDisabled   = errors.New("game is currently disabled")
)

const (
	keyGamingEnabled = "gaming_enabled"
	gameKeyPrefix    = "game_disabled:"
)

// Status is the operator view of the switches.
type Status struct {
	GamingEnabled  bool            `json:"gaming_enabled"`
	DisabledAt     *time.Time      `json:"disabled_at,omitempty"`
	DisabledBy     string          `json:"disabled_by,omitempty"`
	DisabledReason string          `json:"disabled_reason,omitempty"`
	DisabledGames  []domain.GameID `json:"disabled_games"`
}

// Service holds the gaming switches
type Service struct {
	db     *sql.DB
	audit  *audit.Service
	logger *zap.Logger

	mu             sync.RWMutex
	gamingEnabled  bool
	disabledGames  map[domain.GameID]bool
	disabledAt     *time.Time
	disabledBy     string
	disabledReason string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets where failed audit writes are reported.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

// New creates a control service. Either argument may be nil.
func New(db *sql.DB, auditSvc *audit.Service, opts ...Option) *Service {
	s := &Service{
		db:            db,
		audit:         auditSvc,
		logger:        zap.NewNop(),
		gamingEnabled: true,
		disabledGames: make(map[domain.GameID]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DisableAllGaming stops every game until EnableAllGaming is called.
func (s *Service) DisableAllGaming(ctx context.Context, reason, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if err := s.persist(ctx, keyGamingEnabled, "false", now, authorizedBy); err != nil {
		return err
	}
	s.gamingEnabled = false
	s.disabledAt = &now
	s.disabledBy = authorizedBy
	s.disabledReason = reason

	s.log(ctx, audit.EventGamingDisabled, domain.SeverityCritical,
		fmt.Sprintf("All gaming disabled: %s", reason),
		map[string]interface{}{"authorized_by": authorizedBy, "reason": reason})
	return nil
}

// EnableAllGaming resumes gaming
func (s *Service) EnableAllGaming(ctx context.Context, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if err := s.persist(ctx, keyGamingEnabled, "true", now, authorizedBy); err != nil {
		return err
	}
	s.gamingEnabled = true
	s.disabledAt = nil
	s.disabledBy = ""
	s.disabledReason = ""

	s.log(ctx, audit.EventGamingEnabled, domain.SeverityInfo, "All gaming enabled",
		map[string]interface{}{"authorized_by": authorizedBy})
	return nil
}

// DisableGame disables a specific game
func (s *Service) DisableGame(ctx context.Context, id domain.GameID, reason, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if err := s.persist(ctx, gameKeyPrefix+string(id), reason, now, authorizedBy); err != nil {
		return err
	}
	s.disabledGames[id] = true

	s.log(ctx, audit.EventGameDisabled, domain.SeverityWarning,
		fmt.Sprintf("Game disabled: %s - %s", id, reason),
		map[string]interface{}{"reason": reason, "authorized_by": authorizedBy},
		audit.WithGame(id))
	return nil
}

// EnableGame enables a specific game
func (s *Service) EnableGame(ctx context.Context, id domain.GameID, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM system_state WHERE key = $1`, gameKeyPrefix+string(id)); err != nil {
			return fmt.Errorf("failed to persist game state: %w", err)
		}
	}
	delete(s.disabledGames, id)

	s.log(ctx, audit.EventGameEnabled, domain.SeverityInfo,
		fmt.Sprintf("Game enabled: %s", id),
		map[string]interface{}{"authorized_by": authorizedBy},
		audit.WithGame(id))
	return nil
}

// IsGamingEnabled reports the casino-wide switch
func (s *Service) IsGamingEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamingEnabled
}

// IsGameEnabled reports whether a game may be played right now.
func (s *Service) IsGameEnabled(id domain.GameID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamingEnabled && !s.disabledGames[id]
}

// CheckGame returns the reason a game may not be played, or nil.
func (s *Service) CheckGame(id domain.GameID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.gamingEnabled {
		return ErrGamingDisabled
	}
	if s.disabledGames[id] {
		return ErrGameDisabled
	}
	return nil
}

// Status returns the current switches
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]domain.GameID, 0, len(s.disabledGames))
	for id := range s.disabledGames {
		games = append(games, id)
	}
	sort.Slice(games, func(i, j int) bool { return games[i] < games[j] })

	return Status{
		GamingEnabled:  s.gamingEnabled,
		DisabledAt:     s.disabledAt,
		DisabledBy:     s.disabledBy,
		DisabledReason: s.disabledReason,
		DisabledGames:  games,
	}
}

// LoadState loads persisted state from the database on startup
func (s *Service) LoadState(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_by FROM system_state`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value, by string
		if err := rows.Scan(&key, &value, &by); err != nil {
			return err
		}
		switch {
		case key == keyGamingEnabled:
			s.gamingEnabled = value != "false"
			if !s.gamingEnabled {
				s.disabledBy = by
			}
		case strings.HasPrefix(key, gameKeyPrefix):
			s.disabledGames[domain.GameID(strings.TrimPrefix(key, gameKeyPrefix))] = true
		}
	}
	return rows.Err()
}

func (s *Service) persist(ctx context.Context, key, value string, at time.Time, by string) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_state (key, value, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3, updated_by = $4
	`, key, value, at, by)
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Service) log(ctx context.Context, eventType string, sev domain.EventSeverity, desc string, data interface{}, opts ...audit.EventOption) {
	if s.audit == nil {
		return
	}
	opts = append(opts, audit.WithComponent("control"))
	if err := s.audit.Log(ctx, eventType, sev, desc, data, opts...); err != nil {
		s.logger.Warn("audit event failed", zap.String("event", eventType), zap.Error(err))
	}
}
