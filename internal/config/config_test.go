package config

import (
	"testing"
	"time"

	"github.com/alexbotov/casino/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if !cfg.Game.StartingBalance.Equal(domain.NewMoney(200)) {
		t.Errorf("Expected starting balance 200.00, got %s", cfg.Game.StartingBalance)
	}
	if len(cfg.Game.WagerLevels) != 4 || !cfg.Game.WagerLevels[0].Equal(domain.NewMoney(0.2)) {
		t.Errorf("Unexpected wager levels %v", cfg.Game.WagerLevels)
	}
	if len(cfg.Game.Milestones) != 3 {
		t.Errorf("Expected 3 milestones, got %d", len(cfg.Game.Milestones))
	}
	if !cfg.Game.Goal.Equal(domain.NewMoney(2000)) {
		t.Errorf("Expected goal 2000.00, got %s", cfg.Game.Goal)
	}
	if cfg.Game.HoldemEval != "simple" {
		t.Errorf("Expected simple hold'em evaluation, got %s", cfg.Game.HoldemEval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CASINO_PORT", "9090")
	t.Setenv("CASINO_WAGER_LEVELS", "5, 1")
	t.Setenv("CASINO_MILESTONES", "300:10")
	t.Setenv("CASINO_HOLDEM_EVAL", "strict")
	t.Setenv("CASINO_TOKEN_EXPIRY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.Game.WagerLevels[0].Equal(domain.NewMoney(1)) {
		t.Errorf("Expected levels sorted, got %v", cfg.Game.WagerLevels)
	}
	if cfg.Auth.TokenExpiry != time.Hour {
		t.Errorf("Expected 1h expiry, got %s", cfg.Auth.TokenExpiry)
	}
	sc := cfg.SessionConfig()
	if len(sc.Milestones) != 1 || !sc.Milestones[0].Bonus.Equal(domain.NewMoney(10)) {
		t.Errorf("Unexpected milestones %v", sc.Milestones)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CASINO_WAGER_LEVELS", "1,abc"},
		{"CASINO_WAGER_LEVELS", "0,1"},
		{"CASINO_WAGER_LEVELS", "1,1,2"},
		{"CASINO_WAGER_LEVELS", "2,1.00,1"},
		{"CASINO_MILESTONES", "500"},
		{"CASINO_HOLDEM_EVAL", "fuzzy"},
		{"CASINO_GOAL", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestParseWagerLevels(t *testing.T) {
	levels, err := ParseWagerLevels("5, 0.2,2,1")
	if err != nil {
		t.Fatalf("ParseWagerLevels failed: %v", err)
	}
	want := []string{"0.20", "1.00", "2.00", "5.00"}
	if len(levels) != len(want) {
		t.Fatalf("Expected %d levels, got %d", len(want), len(levels))
	}
	for i, w := range want {
		if levels[i].String() != w {
			t.Errorf("Level %d: expected %s, got %s", i, w, levels[i])
		}
	}

	t.Run("Duplicates", func(t *testing.T) {
		if _, err := ParseWagerLevels("1,1,2"); err == nil {
			t.Error("Expected error for duplicate levels")
		}
	})
}
