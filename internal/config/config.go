// Package config provides configuration management for the casino
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/session"
)

// Config holds all configuration for the casino
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Game       GameConfig
	Simulation SimulationConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionIdle  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	OperatorKey string
}

// GameConfig holds the table rules every session is created with
type GameConfig struct {
	Currency        string
	PlayerName      string
	StartingBalance domain.Money
	WagerLevels     []domain.Money
	Goal            domain.Money
	Milestones      []session.Milestone
	LargeWin        domain.Money
	HoldemEval      string
}

// SimulationConfig holds defaults for the simulator CLI
type SimulationConfig struct {
	MaxRounds      int
	ReportInterval int
	OutputDir      string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment with defaults
func Load() (*Config, error) {
	levels, err := ParseWagerLevels(getEnv("CASINO_WAGER_LEVELS", "0.2,1,2,5"))
	if err != nil {
		return nil, err
	}
	milestones, err := ParseMilestones(getEnv("CASINO_MILESTONES", "500:20,1000:40,1500:40"))
	if err != nil {
		return nil, err
	}
	start, err := getEnvMoney("CASINO_STARTING_BALANCE", "200")
	if err != nil {
		return nil, err
	}
	goal, err := getEnvMoney("CASINO_GOAL", "2000")
	if err != nil {
		return nil, err
	}
	largeWin, err := getEnvMoney("CASINO_LARGE_WIN", "100")
	if err != nil {
		return nil, err
	}

	holdem := getEnv("CASINO_HOLDEM_EVAL", "simple")
	if holdem != "simple" && holdem != "strict" {
		return nil, fmt.Errorf("CASINO_HOLDEM_EVAL must be simple or strict, got %q", holdem)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("CASINO_PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			SessionIdle:  getEnvDuration("CASINO_SESSION_IDLE", 2*time.Hour),
		},
		Database: DatabaseConfig{
			Driver: getEnv("CASINO_DB_DRIVER", "sqlite"),
			DSN:    getEnv("CASINO_DB_DSN", "file:casino.db"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("CASINO_JWT_SECRET", "casino-dev-secret-change-in-production"),
			TokenExpiry: getEnvDuration("CASINO_TOKEN_EXPIRY", 24*time.Hour),
			OperatorKey: getEnv("CASINO_OPERATOR_KEY", ""),
		},
		Game: GameConfig{
			Currency:        getEnv("CASINO_CURRENCY", "EUR"),
			PlayerName:      getEnv("CASINO_PLAYER_NAME", "Player"),
			StartingBalance: start,
			WagerLevels:     levels,
			Goal:            goal,
			Milestones:      milestones,
			LargeWin:        largeWin,
			HoldemEval:      holdem,
		},
		Simulation: SimulationConfig{
			MaxRounds:      getEnvInt("CASINO_SIM_MAX_ROUNDS", 10000),
			ReportInterval: getEnvInt("CASINO_SIM_REPORT_INTERVAL", 100),
			OutputDir:      getEnv("CASINO_SIM_OUTPUT_DIR", "."),
		},
		Log: LogConfig{
			Level:  getEnv("CASINO_LOG_LEVEL", "info"),
			Format: getEnv("CASINO_LOG_FORMAT", "json"),
		},
	}, nil
}

// SessionConfig is the shape every new session gets.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		PlayerName:      c.Game.PlayerName,
		StartingBalance: c.Game.StartingBalance,
		WagerLevels:     c.Game.WagerLevels,
		Milestones:      c.Game.Milestones,
		Goal:            c.Game.Goal,
	}
}

// ParseWagerLevels reads a comma separated list of distinct stakes, returned
// lowest first.
func ParseWagerLevels(s string) ([]domain.Money, error) {
	var levels []domain.Money
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := domain.ParseMoney(part)
		if err != nil {
			return nil, fmt.Errorf("wager level %q: %w", part, err)
		}
		if !m.IsPositive() {
			return nil, fmt.Errorf("wager level %q must be positive", part)
		}
		levels = append(levels, m)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("at least one wager level is required")
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].LessThan(levels[j]) })
	for i := 1; i < len(levels); i++ {
		if levels[i].Equal(levels[i-1]) {
			return nil, fmt.Errorf("wager level %s is listed twice", levels[i])
		}
	}
	return levels, nil
}

// ParseMilestones reads "threshold:bonus" pairs separated by commas.
func ParseMilestones(s string) ([]session.Milestone, error) {
	var out []session.Milestone
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		th, bonus, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("milestone %q: want threshold:bonus", part)
		}
		threshold, err := domain.ParseMoney(th)
		if err != nil {
			return nil, fmt.Errorf("milestone %q: %w", part, err)
		}
		amount, err := domain.ParseMoney(bonus)
		if err != nil {
			return nil, fmt.Errorf("milestone %q: %w", part, err)
		}
		out = append(out, session.Milestone{Threshold: threshold, Bonus: amount})
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getEnvMoney(key, defaultValue string) (domain.Money, error) {
	m, err := domain.ParseMoney(getEnv(key, defaultValue))
	if err != nil {
		return domain.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}
