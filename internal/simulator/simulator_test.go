package simulator

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/alexbotov/casino/internal/database"
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/history"
	"github.com/alexbotov/casino/internal/rng"
)

func money(f float64) domain.Money { return domain.NewMoney(f) }

func testConfig(rounds int) Config {
	cfg := DefaultConfig()
	cfg.MaxRounds = rounds
	cfg.Seed = "simulator-test"
	return cfg
}

func runSim(t *testing.T, cfg Config, opts ...Option) *Report {
	t.Helper()
	sim, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	report, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return report
}

func TestWagerFor(t *testing.T) {
	levels := DefaultConfig().WagerLevels
	tests := []struct {
		balance float64
		want    float64
	}{
		{1500, 5},
		{1000, 5},
		{999.99, 2},
		{500, 2},
		{200, 1},
		{199.99, 0.2},
		{0.2, 0.2},
	}
	for _, tt := range tests {
		if got := WagerFor(money(tt.balance), levels); !got.Equal(money(tt.want)) {
			t.Errorf("WagerFor(%v): expected %v, got %s", tt.balance, tt.want, got)
		}
	}

	t.Run("CappedByLevels", func(t *testing.T) {
		got := WagerFor(money(5000), []domain.Money{money(1), money(2)})
		if !got.Equal(money(2)) {
			t.Errorf("Expected 2.00, got %s", got)
		}
	})
}

func TestRunInvariants(t *testing.T) {
	cfg := testConfig(500)
	cfg.StartingBalance = money(200)
	report := runSim(t, cfg)

	s := report.Summary
	if len(report.BalanceHistory) != s.TotalRounds+1 {
		t.Fatalf("Expected %d balances, got %d", s.TotalRounds+1, len(report.BalanceHistory))
	}
	if !report.BalanceHistory[0].Equal(money(200)) {
		t.Errorf("Expected history to start at 200.00, got %s", report.BalanceHistory[0])
	}
	for i, b := range report.BalanceHistory {
		if b.Cmp(s.PeakBalance) > 0 || b.LessThan(s.LowestBalance) {
			t.Fatalf("Balance %s at %d outside [%s, %s]", b, i, s.LowestBalance, s.PeakBalance)
		}
	}
	if !s.NetChange.Equal(s.FinalBalance.Sub(s.StartingBalance)) {
		t.Errorf("Net change %s does not match final %s", s.NetChange, s.FinalBalance)
	}

	played := 0
	for id, gs := range report.GameStats {
		played += gs.Played
		if gs.Won+gs.Lost > gs.Played {
			t.Errorf("%s: won %d + lost %d exceeds played %d", id, gs.Won, gs.Lost, gs.Played)
		}
	}
	if played != s.TotalRounds {
		t.Errorf("Expected %d rounds across games, got %d", s.TotalRounds, played)
	}

	switch report.Outcome {
	case OutcomeMaxRounds:
		if s.TotalRounds != 500 {
			t.Errorf("Expected 500 rounds, got %d", s.TotalRounds)
		}
	case OutcomeBusted:
		if !s.FinalBalance.LessThan(money(0.2)) {
			t.Errorf("Busted with %s", s.FinalBalance)
		}
	case OutcomeGoal:
		if !s.GoalReached {
			t.Error("Expected goal reached")
		}
	}
}

func TestRunReproducible(t *testing.T) {
	a := runSim(t, testConfig(300))
	b := runSim(t, testConfig(300))

	if a.Summary.TotalRounds != b.Summary.TotalRounds {
		t.Fatalf("Expected equal round counts, got %d and %d", a.Summary.TotalRounds, b.Summary.TotalRounds)
	}
	for i := range a.BalanceHistory {
		if !a.BalanceHistory[i].Equal(b.BalanceHistory[i]) {
			t.Fatalf("Runs diverge at %d: %s vs %s", i, a.BalanceHistory[i], b.BalanceHistory[i])
		}
	}
}

func TestRunStops(t *testing.T) {
	t.Run("Busted", func(t *testing.T) {
		cfg := testConfig(100)
		cfg.StartingBalance = money(0.1)
		report := runSim(t, cfg)
		if report.Outcome != OutcomeBusted {
			t.Errorf("Expected busted, got %s", report.Outcome)
		}
		if report.Summary.TotalRounds != 0 || len(report.BalanceHistory) != 1 {
			t.Errorf("Expected no rounds, got %d", report.Summary.TotalRounds)
		}
	})

	t.Run("Goal", func(t *testing.T) {
		cfg := testConfig(100)
		cfg.Goal = money(250)
		// 0.75 picks Lucky 7, then three sevens pay 100x the 1.00 stake
		src := rng.NewSequence(0.75, rng.Pick(6, 7), rng.Pick(6, 7), rng.Pick(6, 7))
		report := runSim(t, cfg, WithSource(src))

		if report.Outcome != OutcomeGoal {
			t.Fatalf("Expected goal, got %s", report.Outcome)
		}
		if report.Summary.TotalRounds != 1 {
			t.Errorf("Expected 1 round, got %d", report.Summary.TotalRounds)
		}
		if !report.Summary.FinalBalance.Equal(money(299)) {
			t.Errorf("Expected 299.00, got %s", report.Summary.FinalBalance)
		}
		if !report.Summary.BiggestWin.Equal(money(99)) {
			t.Errorf("Expected biggest win 99.00, got %s", report.Summary.BiggestWin)
		}
		gs := report.GameStats[domain.GameLucky7]
		if gs.Played != 1 || gs.Won != 1 {
			t.Errorf("Expected 1 Lucky 7 win, got %+v", gs)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		sim, err := New(testConfig(100))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		report, err := sim.Run(ctx)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if report.Outcome != OutcomeStopped {
			t.Errorf("Expected stopped, got %s", report.Outcome)
		}
	})

	t.Run("BadConfig", func(t *testing.T) {
		cfg := testConfig(0)
		if _, err := New(cfg); err == nil {
			t.Error("Expected error for zero rounds")
		}
		cfg = testConfig(10)
		cfg.WagerLevels = nil
		if _, err := New(cfg); err == nil {
			t.Error("Expected error for no wager levels")
		}
	})
}

func TestMilestoneRounds(t *testing.T) {
	cfg := testConfig(100)
	cfg.StartingBalance = money(450)
	src := rng.NewSequence(0.75, rng.Pick(6, 7), rng.Pick(6, 7), rng.Pick(6, 7))
	cfg.MaxRounds = 1
	report := runSim(t, cfg, WithSource(src))

	if r := report.Milestones["500"]; r == nil || *r != 1 {
		t.Errorf("Expected 500 reached on round 1, got %v", r)
	}
	if r := report.Milestones["1000"]; r != nil {
		t.Errorf("Expected 1000 not reached, got %d", *r)
	}

	data, err := report.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"timestamp", "config", "summary", "milestones", "gameStats", "balanceHistory"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected %q in report", key)
		}
	}
	milestones := decoded["milestones"].(map[string]interface{})
	if milestones["1500"] != nil {
		t.Errorf("Expected null for 1500, got %v", milestones["1500"])
	}
}

func TestWriteFile(t *testing.T) {
	report := runSim(t, testConfig(20))
	dir := t.TempDir()

	path, err := report.WriteFile(dir)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Summary.TotalRounds != report.Summary.TotalRounds {
		t.Errorf("Expected %d rounds, got %d", report.Summary.TotalRounds, decoded.Summary.TotalRounds)
	}
}

func TestRunHistory(t *testing.T) {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	hist := history.New(db.DB)

	sim, err := New(testConfig(50), WithHistory(hist))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	report, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ctx := context.Background()
	rounds, err := hist.Recent(ctx, sim.Session().ID, 1000)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rounds) != report.Summary.TotalRounds {
		t.Errorf("Expected %d stored rounds, got %d", report.Summary.TotalRounds, len(rounds))
	}

	runs, err := hist.Runs(ctx, 5)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].TotalRounds != report.Summary.TotalRounds {
		t.Errorf("Expected %d rounds, got %d", report.Summary.TotalRounds, runs[0].TotalRounds)
	}
}

func TestMeasureRTP(t *testing.T) {
	results, err := MeasureRTP(context.Background(), rng.NewStream("rtp"), 200)
	if err != nil {
		t.Fatalf("MeasureRTP failed: %v", err)
	}
	if len(results) != len(domain.AllGames) {
		t.Fatalf("Expected %d results, got %d", len(domain.AllGames), len(results))
	}
	for _, r := range results {
		if r.Rounds != 200 {
			t.Errorf("%s: expected 200 rounds, got %d", r.Game, r.Rounds)
		}
		if r.Wagered.LessThan(money(200)) {
			t.Errorf("%s: expected at least 200.00 wagered, got %s", r.Game, r.Wagered)
		}
	}

	if _, err := MeasureRTP(context.Background(), rng.NewStream("rtp"), 0); err == nil {
		t.Error("Expected error for zero rounds")
	}
}
